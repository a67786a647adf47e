package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/letterdesk/pkg/slug"
	"github.com/dmitrymomot/letterdesk/svc/letter"
)

var (
	ErrUnknownFormat = errors.New("export: unknown document format")
	ErrNilLetter     = errors.New("export: letter is nil")
	ErrExport        = errors.New("export: failed to build document")
	// ErrUnsupportedText means the PDF font has no glyph for some characters.
	// HTML export is not affected.
	ErrUnsupportedText = errors.New("export: text contains characters the document font cannot draw")

	errEmptyPage = errors.New("export: letter has no HTML page")
)

// Format is an output document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat accepts "pdf" and "html"; empty means pdf.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "application/pdf"
}

// Document is an exported letter.
type Document struct {
	Filename    string
	ContentType string
	Format      Format
	Data        []byte
	Pages       int
	// Truncated is set when content did not fit into the page limit.
	Truncated bool
}

// Exporter converts letters into downloadable documents.
type Exporter struct {
	maxPages int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMaxPages caps PDF output at n pages; overflowing content is dropped and
// the document is marked truncated. Zero means unlimited.
func WithMaxPages(n int) Option {
	return func(e *Exporter) {
		if n >= 0 {
			e.maxPages = n
		}
	}
}

// New returns an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders l for the intern named displayName.
func (e *Exporter) Export(l *letter.Letter, displayName string, f Format) (*Document, error) {
	if l == nil {
		return nil, ErrNilLetter
	}

	doc := &Document{
		Filename:    Filename(l.Kind, displayName, f),
		ContentType: f.ContentType(),
		Format:      f,
	}

	var err error
	switch f {
	case FormatPDF:
		doc.Data, doc.Pages, doc.Truncated, err = e.pdf(l)
	case FormatHTML:
		doc.Data, err = renderHTML(l)
		doc.Pages = 1
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, errors.Join(ErrExport, err)
	}
	return doc, nil
}

// Filename builds "<kind>-letter-<slug>.<ext>".
//
//	export.Filename(letter.KindOffer, "Anu Priya", export.FormatPDF) // "offer-letter-anu-priya.pdf"
func Filename(kind letter.Kind, displayName string, f Format) string {
	name := slug.Make(displayName)
	if name == "" {
		name = "intern"
	}
	return fmt.Sprintf("%s-letter-%s.%s", kind, name, f)
}
