// Package letter renders offer letters, completion certificates and the
// channel diagnostic message from embedded markdown templates.
//
// Each template carries YAML frontmatter with a title and a subject line.
// The body is executed twice with text/template: once with raw values for the
// plain-text part, and once with escaped values that goldmark converts to
// HTML. The HTML is sanitized with bluemonday and wrapped in the letterhead
// layout.
//
//	r, err := letter.NewRenderer(letter.DefaultCompany())
//	l, err := r.Render(letter.KindOffer, rec, time.Now())
//
// Rendering never reads the wall clock; the reference time is an argument.
package letter
