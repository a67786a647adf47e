package letters

import (
	"net/http"

	"github.com/dmitrymomot/letterdesk/handler"
	"github.com/dmitrymomot/letterdesk/svc/intern"
)

// verification is the public view of a certificate. Contact details,
// stipend and owner stay private.
type verification struct {
	Valid     bool          `json:"valid"`
	Name      string        `json:"name"`
	Position  string        `json:"position"`
	StartDate string        `json:"start_date"`
	Duration  string        `json:"duration"`
	Status    intern.Status `json:"status"`
	Issuer    string        `json:"issuer,omitempty"`
}

// verify reports whether a completion certificate stands: the intern exists
// and the internship is completed.
func (a *api) verify() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, p internPath) handler.Response {
		rec, err := a.interns.Lookup(ctx, p.ID)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(verification{
			Valid:     rec.Status == intern.StatusCompleted,
			Name:      rec.Name,
			Position:  rec.Position,
			StartDate: rec.StartDate,
			Duration:  rec.Duration,
			Status:    rec.Status,
			Issuer:    a.issuer,
		})
	},
		handler.WithBinders[handler.Context, internPath](pathParam()),
		handler.WithErrorHandler[handler.Context, internPath](a.onError),
	)
}
