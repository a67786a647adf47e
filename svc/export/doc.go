// Package export turns rendered letters into downloadable PDF or printable
// HTML documents named "<kind>-letter-<slug>.<ext>".
//
// PDF output is multi-page by default. WithMaxPages(1) keeps the single-page
// layout; content past the limit is dropped and Document.Truncated is set.
package export
