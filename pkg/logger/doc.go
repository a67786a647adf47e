// Package logger builds *slog.Logger instances with functional options.
//
// New picks a JSON or text handler, optionally fans warn/error records out to
// Sentry (WithSentry), and wraps the result in a ContextHandler that pulls
// request-scoped attributes (request id, owner id) from the context on every
// call.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "letterdesk"),
//		logger.WithSentry(cfg.Sentry),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//
// attr.go holds constructors for the attribute keys used across the
// service (owner_id, intern_id, letter_kind, channel, message_id) so that log
// queries stay consistent.
package logger
