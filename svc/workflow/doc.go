// Package workflow composes the intern store, renderer, exporter, dispatch
// client and audit log into the actions a user triggers: preview, send,
// download and the dashboard stats.
//
// Send attempts that reach the channel append one audit row each, sent or
// failed. Validation failures append nothing. A Guard keyed by owner, intern
// and letter kind rejects a duplicate send while the first is in flight.
package workflow
