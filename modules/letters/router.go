package letters

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/letterdesk/handler"
	"github.com/dmitrymomot/letterdesk/pkg/jwt"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
	"github.com/dmitrymomot/letterdesk/svc/dispatch"
	"github.com/dmitrymomot/letterdesk/svc/intern"
	"github.com/dmitrymomot/letterdesk/svc/workflow"
)

// ChannelProbe reports on and exercises the email channel.
// *dispatch.Client implements it.
type ChannelProbe interface {
	Channel() string
	Configured(ctx context.Context) bool
	CheckChannelHealth(ctx context.Context) dispatch.HealthResult
	TestChannel(ctx context.Context) dispatch.Result
}

// RouterOptions configures the letters API.
type RouterOptions struct {
	Interns  intern.Store
	Workflow *workflow.Service
	Channel  ChannelProbe

	// Auth sets the owner on the request context, usually AuthMiddleware.
	// Requests without an owner get 401.
	Auth func(http.Handler) http.Handler

	// SystemName appears in the health message.
	SystemName string
	// Issuer names the organisation on certificate verifications.
	Issuer string
	Logger *slog.Logger
	Now    func() time.Time
}

type api struct {
	interns    intern.Store
	issuer     string
	flow       *workflow.Service
	channel    ChannelProbe
	systemName string
	log        *slog.Logger
	now        func() time.Time
	onError    handler.ErrorHandler[handler.Context]
}

// Router creates the letters API. Mount it under /api.
//
//	r := chi.NewRouter()
//	r.Mount("/api", letters.Router(letters.RouterOptions{
//		Interns:  internStore,
//		Workflow: flow,
//		Channel:  dispatchClient,
//		Auth:     letters.AuthMiddleware(jwtService, log),
//	}))
func Router(opts RouterOptions) chi.Router {
	a := newAPI(opts)

	r := chi.NewRouter()
	r.Get("/health", a.health())

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}

		r.Get("/email/status", a.emailStatus())
		r.Post("/email/test", a.emailTest())

		r.Route("/interns", func(r chi.Router) {
			r.Get("/", a.listInterns())
			r.Post("/", a.createIntern())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getIntern())
				r.Put("/", a.updateIntern())
				r.Delete("/", a.deleteIntern())
				r.Get("/history", a.internHistory())
				r.Get("/letters/{kind}/preview", a.previewLetter())
				r.Post("/letters/{kind}/send", a.sendLetter())
				r.Get("/letters/{kind}/download", a.downloadLetter())
			})
		})

		r.Get("/history", a.history())
		r.Get("/stats", a.stats())
	})

	return r
}

// Verify answers the verification link printed on completion certificates.
// It is public; register it at the path the renderer's verify base URL
// points to.
//
//	r.Get("/verify/{id}", letters.Verify(opts))
func Verify(opts RouterOptions) http.HandlerFunc {
	return newAPI(opts).verify()
}

func newAPI(opts RouterOptions) *api {
	a := &api{
		interns:    opts.Interns,
		issuer:     opts.Issuer,
		flow:       opts.Workflow,
		channel:    opts.Channel,
		systemName: opts.SystemName,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if a.log == nil {
		a.log = logger.Discard()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.systemName == "" {
		a.systemName = "Letterdesk"
	}
	a.onError = handler.NewJSONErrorHandler(a.log)
	return a
}

// AuthMiddleware verifies bearer tokens and answers rejections with a JSON
// 401.
func AuthMiddleware(s *jwt.Service, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return jwt.Middleware(s, func(w http.ResponseWriter, r *http.Request, err error) {
		log.WarnContext(r.Context(), "request rejected", logger.Error(err), logger.Component("auth"))
		_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
	})
}

// StaticOwner attributes every request to owner. It is meant for single-user
// local runs without an identity provider.
func StaticOwner(owner string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(jwt.WithSubject(r.Context(), owner)))
		})
	}
}

// wrap adapts h with the module's binders, JSON error handler and owner
// check.
func wrap[R any](a *api, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](a.onError),
		handler.WithDecorators[handler.Context, R](requireOwner[R]),
	)
}

func requireOwner[R any](next handler.HandlerFunc[handler.Context, R]) handler.HandlerFunc[handler.Context, R] {
	return func(ctx handler.Context, req R) handler.Response {
		if jwt.Subject(ctx) == "" {
			return handler.JSONError(handler.ErrUnauthorized)
		}
		return next(ctx, req)
	}
}

func owner(ctx context.Context) string {
	return jwt.Subject(ctx)
}
