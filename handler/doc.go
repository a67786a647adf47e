// Package handler turns typed functions into http.HandlerFuncs.
//
// A HandlerFunc receives a Context and a request struct filled by binders and
// returns a Response (JSON envelope, empty, HTML page or file download).
// Errors from binding or rendering go through an ErrorHandler;
// NewJSONErrorHandler logs them and writes the JSON error envelope:
//
//	{"error": {"code": "not_found", "message": "Not Found"}}
//
// HTTPError sets the status code and key of an error response, and
// ValidationError reports per-field messages with status 422.
package handler
