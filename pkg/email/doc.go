// Package email defines the channel abstraction used to deliver letters.
//
// A channel is anything implementing Sender: it takes a Message, makes one
// delivery attempt and returns a Receipt carrying the provider message id.
// Concrete channels live in subpackages (resend, postmark, relay); FileSender
// in this package writes messages to disk for local runs.
//
// Every channel reports failures wrapped in one of four sentinels:
//
//   - ErrInvalidConfig  missing credentials or endpoint, detected before any I/O
//   - ErrInvalidMessage the message is incomplete
//   - ErrRejected       the provider answered with an error; its text is kept
//   - ErrTransport      the provider could not be reached
//
// Channels never retry. Callers decide whether a failure is worth another
// attempt.
package email
