package letters

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/letterdesk/handler"
)

type healthResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	Timestamp       string `json:"timestamp"`
	EmailConfigured bool   `json:"emailConfigured"`
}

// health is public and answers in the flat shape existing dashboards poll.
func (a *api) health() http.HandlerFunc {
	return handler.Wrap[handler.Context, struct{}](func(ctx handler.Context, _ struct{}) handler.Response {
		configured := a.channel != nil && a.channel.Configured(ctx)
		return handler.RawJSON(healthResponse{
			Status:          "OK",
			Message:         a.systemName + " API is running",
			Timestamp:       a.now().UTC().Format(time.RFC3339),
			EmailConfigured: configured,
		})
	}, handler.WithErrorHandler[handler.Context, struct{}](a.onError))
}

func (a *api) emailStatus() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		if a.channel == nil {
			return handler.JSONError(handler.ErrServiceUnavailable)
		}
		return handler.JSON(a.channel.CheckChannelHealth(ctx))
	})
}

// emailTest sends the diagnostic message to the configured test recipient.
func (a *api) emailTest() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		if a.channel == nil {
			return handler.JSONError(handler.ErrServiceUnavailable)
		}
		res := a.channel.TestChannel(ctx)
		if !res.Success {
			return resultError(res)
		}
		return handler.JSON(res)
	})
}
