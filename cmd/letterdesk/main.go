// Command letterdesk serves the intern letters API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/letterdesk/modules/letters"
	"github.com/dmitrymomot/letterdesk/pkg/config"
	"github.com/dmitrymomot/letterdesk/pkg/file"
	"github.com/dmitrymomot/letterdesk/pkg/httpserver"
	"github.com/dmitrymomot/letterdesk/pkg/jwt"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
	"github.com/dmitrymomot/letterdesk/pkg/qrcode"
	"github.com/dmitrymomot/letterdesk/pkg/requestid"
	"github.com/dmitrymomot/letterdesk/svc/dispatch"
	"github.com/dmitrymomot/letterdesk/svc/export"
	"github.com/dmitrymomot/letterdesk/svc/letter"
	"github.com/dmitrymomot/letterdesk/svc/workflow"
)

func main() {
	var cfg Config
	if err := config.Load(&cfg, config.WithEnvFiles(".env")); err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), jwt.LoggerExtractor()),
		logger.WithSentry(cfg.Sentry),
	)
	logger.SetAsDefault(log)

	err := run(context.Background(), cfg, log)
	sentry.Flush(2 * time.Second)
	if err != nil {
		log.Error("letterdesk stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	guard, err := openGuard(ctx, cfg, st)
	if err != nil {
		return err
	}
	archive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}

	handler, err := newHandler(cfg, st, guard, archive, log)
	if err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, handler)
}

func newHandler(cfg Config, st *stores, guard workflow.Guard, archive file.Storage, log *slog.Logger) (http.Handler, error) {
	renderer, err := letter.NewRenderer(cfg.Company,
		letter.WithVerifyBaseURL(cfg.HTTP.PublicBaseURL),
		letter.WithQREncoder(qrcode.New()),
	)
	if err != nil {
		return nil, err
	}
	exporter := export.New(export.WithMaxPages(cfg.ExportMaxPages))

	client := dispatch.New(dispatch.NewOpener(cfg.Email), renderer, cfg.Dispatch,
		dispatch.WithConfigCheck(cfg.Email.Validate),
		dispatch.WithExporter(exporter),
		dispatch.WithLogger(log),
	)

	opts := []workflow.Option{
		workflow.WithExporter(exporter),
		workflow.WithGuard(guard, cfg.GuardTTL),
		workflow.WithLogger(log),
	}
	if archive != nil {
		opts = append(opts, workflow.WithArchive(archive))
	}
	flow := workflow.New(st.interns, st.history, client, renderer, opts...)

	auth, err := authMiddleware(cfg, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer, requestid.Middleware)
	r.Get("/livez", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, 5*time.Second, st.checks))
	api := letters.RouterOptions{
		Interns:    st.interns,
		Workflow:   flow,
		Channel:    client,
		Auth:       auth,
		SystemName: cfg.Company.SystemName,
		Issuer:     cfg.Company.Name,
		Logger:     log,
	}
	r.Get("/verify/{id}", letters.Verify(api))
	r.Mount("/api", letters.Router(api))
	return r, nil
}

func authMiddleware(cfg Config, log *slog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.JWT.Secret != "" {
		s, err := jwt.New(cfg.JWT)
		if err != nil {
			return nil, err
		}
		return letters.AuthMiddleware(s, log), nil
	}
	if cfg.DevOwner != "" {
		log.Warn("AUTH_JWT_SECRET is not set; every request is attributed to AUTH_DEV_OWNER",
			logger.OwnerID(cfg.DevOwner))
		return letters.StaticOwner(cfg.DevOwner), nil
	}
	return nil, errors.New("either AUTH_JWT_SECRET or AUTH_DEV_OWNER must be set")
}
