package binder

import "errors"

var (
	// ErrBinderNotApplicable tells the handler wrapper to skip a binder for
	// this request, e.g. the JSON binder on a bodyless GET.
	ErrBinderNotApplicable = errors.New("binder: not applicable")

	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrFailedToParseJSON    = errors.New("binder: failed to parse JSON request body")
	ErrInvalidQuery         = errors.New("binder: invalid query parameter")
	ErrInvalidPath          = errors.New("binder: invalid path parameter")
)
