package email

import "errors"

// Channels classify every failure into one of these so callers can tell
// misconfiguration, provider rejection and network trouble apart.
var (
	// ErrInvalidConfig means the channel is missing credentials or an endpoint.
	ErrInvalidConfig = errors.New("email: invalid channel configuration")
	// ErrInvalidMessage means the message itself is incomplete.
	ErrInvalidMessage = errors.New("email: invalid message")
	// ErrRejected means the provider was reached and refused the request.
	ErrRejected = errors.New("email: rejected by provider")
	// ErrTransport means the provider could not be reached or timed out.
	ErrTransport = errors.New("email: transport failure")
)
