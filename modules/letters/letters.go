package letters

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/letterdesk/handler"
	"github.com/dmitrymomot/letterdesk/pkg/binder"
	"github.com/dmitrymomot/letterdesk/svc/export"
	"github.com/dmitrymomot/letterdesk/svc/letter"
)

type letterRequest struct {
	ID     string `path:"id"`
	Kind   string `path:"kind"`
	Format string `query:"format"`
}

func (a *api) previewLetter() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req letterRequest) handler.Response {
		kind, err := letter.ParseKind(req.Kind)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		l, err := a.flow.Preview(ctx, owner(ctx), req.ID, kind)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.Templ(export.Page(l))
	}, pathParam())
}

func (a *api) sendLetter() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req letterRequest) handler.Response {
		kind, err := letter.ParseKind(req.Kind)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		res, err := a.flow.Send(ctx, owner(ctx), req.ID, kind)
		switch {
		case err == nil:
			return handler.JSON(res)
		case res.ErrorKind != "":
			return resultError(res)
		}
		return handler.JSONError(httpError(err))
	}, pathParam())
}

func (a *api) downloadLetter() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req letterRequest) handler.Response {
		kind, err := letter.ParseKind(req.Kind)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		format, err := export.ParseFormat(req.Format)
		if err != nil {
			return handler.JSONError(httpError(err))
		}

		dl, err := a.flow.Download(ctx, owner(ctx), req.ID, kind, format)
		if err != nil {
			return handler.JSONError(httpError(err))
		}

		opts := []handler.FileOption{
			handler.WithFileHeader("X-Document-Pages", strconv.Itoa(dl.Pages)),
			handler.WithFileHeader("X-Document-Truncated", strconv.FormatBool(dl.Truncated)),
		}
		if dl.ArchiveURL != "" {
			opts = append(opts, handler.WithFileHeader("X-Archive-URL", dl.ArchiveURL))
		}
		return handler.File(dl.Filename, dl.ContentType, dl.Data, opts...)
	}, pathParam(), binder.Query())
}

func (a *api) internHistory() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, p internPath) handler.Response {
		rows, err := a.flow.InternHistory(ctx, owner(ctx), p.ID)
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(rows, handler.WithJSONMeta(map[string]any{"total": len(rows)}))
	}, pathParam())
}

func (a *api) history() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		rows, err := a.flow.History(ctx, owner(ctx))
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(rows, handler.WithJSONMeta(map[string]any{"total": len(rows)}))
	})
}

func (a *api) stats() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		st, err := a.flow.Stats(ctx, owner(ctx))
		if err != nil {
			return handler.JSONError(httpError(err))
		}
		return handler.JSON(st)
	})
}
