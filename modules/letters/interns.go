package letters

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/letterdesk/handler"
	"github.com/dmitrymomot/letterdesk/pkg/binder"
	"github.com/dmitrymomot/letterdesk/svc/intern"
)

type internPath struct {
	ID string `path:"id"`
}

type internInput struct {
	ID        string        `json:"-" path:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Position  string        `json:"position"`
	StartDate string        `json:"start_date"`
	Duration  string        `json:"duration"`
	Location  string        `json:"location"`
	Stipend   string        `json:"stipend"`
	OfferDate string        `json:"offer_date"`
	Status    intern.Status `json:"status"`
}

func (in internInput) record(ownerID string) intern.Record {
	return intern.Record{
		ID:        in.ID,
		OwnerID:   ownerID,
		Name:      in.Name,
		Email:     in.Email,
		Position:  in.Position,
		StartDate: in.StartDate,
		Duration:  in.Duration,
		Location:  in.Location,
		Stipend:   in.Stipend,
		OfferDate: in.OfferDate,
		Status:    in.Status,
	}
}

func pathParam() handler.Bind {
	return binder.Path(chi.URLParam)
}

func (a *api) listInterns() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		list, err := a.interns.List(ctx, owner(ctx))
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(list, handler.WithJSONMeta(map[string]any{"total": len(list)}))
	})
}

func (a *api) createIntern() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, in internInput) handler.Response {
		in.ID = ""
		rec, err := a.interns.Create(ctx, in.record(owner(ctx)))
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(rec, handler.WithJSONStatus(http.StatusCreated))
	}, binder.JSON())
}

func (a *api) getIntern() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, p internPath) handler.Response {
		rec, err := a.interns.Get(ctx, owner(ctx), p.ID)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(rec)
	}, pathParam())
}

func (a *api) updateIntern() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, in internInput) handler.Response {
		rec, err := a.interns.Update(ctx, in.record(owner(ctx)))
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(rec)
	}, binder.JSON(), pathParam())
}

// deleteIntern removes the intern. Its audit rows stay.
func (a *api) deleteIntern() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, p internPath) handler.Response {
		if err := a.interns.Delete(ctx, owner(ctx), p.ID); err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.Empty()
	}, pathParam())
}
