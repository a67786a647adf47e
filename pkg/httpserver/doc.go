// Package httpserver runs an http.Handler with configurable timeouts and
// graceful shutdown, and provides liveness and readiness probe handlers.
//
// Run blocks until the context is cancelled, SIGINT or SIGTERM arrives, or the
// listener fails:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// ReadinessHandler runs named checks in parallel and answers 503 when any
// of them fails:
//
//	r.Get("/readyz", httpserver.ReadinessHandler(log, 3*time.Second, httpserver.Checks{
//		"postgres": pg.Healthcheck(pool),
//	}))
package httpserver
