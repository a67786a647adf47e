package letters

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/letterdesk/handler"
	"github.com/dmitrymomot/letterdesk/pkg/email"
	"github.com/dmitrymomot/letterdesk/svc/dispatch"
	"github.com/dmitrymomot/letterdesk/svc/export"
	"github.com/dmitrymomot/letterdesk/svc/intern"
	"github.com/dmitrymomot/letterdesk/svc/letter"
	"github.com/dmitrymomot/letterdesk/svc/workflow"
)

// httpError translates a domain error into the handler error vocabulary.
func httpError(err error) error {
	var lv *letter.ValidationError
	if errors.As(err, &lv) {
		ve := handler.NewValidationError()
		for _, p := range lv.Problems {
			ve.Add(p.Field, p.Message)
		}
		return ve
	}

	switch {
	case errors.Is(err, intern.ErrNotFound):
		return fmt.Errorf("%w: intern not found", handler.ErrNotFound)
	case errors.Is(err, intern.ErrConflict):
		return fmt.Errorf("%w: an intern with this email already exists", handler.ErrConflict)
	case errors.Is(err, workflow.ErrInProgress):
		return fmt.Errorf("%w: this letter is already being sent", handler.ErrConflict)
	case errors.Is(err, intern.ErrInvalidRecord):
		return fieldError("intern", err)
	case errors.Is(err, letter.ErrUnknownKind):
		return fieldError("kind", err)
	case errors.Is(err, export.ErrUnknownFormat):
		return fieldError("format", err)
	case errors.Is(err, dispatch.ErrMissingRecipient):
		return fieldError("email", err)
	case errors.Is(err, letter.ErrValidation),
		errors.Is(err, email.ErrInvalidMessage),
		errors.Is(err, export.ErrExport):
		return fieldError("letter", err)
	}
	return err
}

func fieldError(field string, err error) handler.ValidationError {
	ve := handler.NewValidationError()
	ve.Add(field, err.Error())
	return ve
}

// resultError renders a failed dispatch. The Result stays in the data slot.
func resultError(res dispatch.Result) handler.Response {
	var err error
	switch res.ErrorKind {
	case dispatch.KindValidation:
		err = httpError(res.Err())
	case dispatch.KindConfiguration:
		if errors.Is(res.Err(), letter.ErrRender) {
			err = fmt.Errorf("%w: letter templates or company settings are invalid", handler.NewHTTPError(http.StatusServiceUnavailable, "letter_misconfigured"))
			break
		}
		err = fmt.Errorf("%w: email channel is not configured", handler.NewHTTPError(http.StatusServiceUnavailable, "channel_not_configured"))
	default:
		err = fmt.Errorf("%w: email channel failed", handler.NewHTTPError(http.StatusBadGateway, "channel_failed"))
	}
	return handler.JSONError(err, handler.WithJSONData(res))
}
