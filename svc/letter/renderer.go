package letter

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/dmitrymomot/letterdesk/pkg/qrcode"
	"github.com/dmitrymomot/letterdesk/svc/intern"
)

//go:embed templates
var embedded embed.FS

const (
	layoutFile = "layout.html"
	dateLayout = "January 2, 2006"
	notSet     = "To be confirmed"
)

// Renderer turns intern records into letters. It is safe for concurrent use.
type Renderer struct {
	company       Company
	templates     map[Kind]*letterTemplate
	layout        *template.Template
	md            goldmark.Markdown
	policy        *bluemonday.Policy
	qr            *qrcode.Encoder
	verifyBaseURL string
}

type letterTemplate struct {
	title   string
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// RendererOption configures a Renderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	fsys          fs.FS
	qr            *qrcode.Encoder
	verifyBaseURL string
}

// WithTemplates replaces the embedded templates. fsys must hold offer.md,
// completion.md, diagnostic.md and layout.html at its root.
func WithTemplates(fsys fs.FS) RendererOption {
	return func(c *rendererConfig) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// WithVerifyBaseURL enables the verification QR code on completion
// certificates, pointing to <baseURL>/verify/<intern id>.
func WithVerifyBaseURL(baseURL string) RendererOption {
	return func(c *rendererConfig) {
		c.verifyBaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithQREncoder overrides the QR encoder.
func WithQREncoder(e *qrcode.Encoder) RendererOption {
	return func(c *rendererConfig) {
		if e != nil {
			c.qr = e
		}
	}
}

// NewRenderer parses every template up front; a broken template fails here.
func NewRenderer(company Company, opts ...RendererOption) (*Renderer, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	cfg := rendererConfig{fsys: sub, qr: qrcode.New(qrcode.WithSize(160))}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Renderer{
		company:       company.withDefaults(),
		templates:     make(map[Kind]*letterTemplate, 3),
		md:            goldmark.New(),
		policy:        bluemonday.UGCPolicy(),
		qr:            cfg.qr,
		verifyBaseURL: cfg.verifyBaseURL,
	}

	for _, kind := range []Kind{KindOffer, KindCompletion, KindDiagnostic} {
		tpl, err := parseLetterTemplate(cfg.fsys, string(kind)+".md")
		if err != nil {
			return nil, err
		}
		r.templates[kind] = tpl
	}

	layout, err := fs.ReadFile(cfg.fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, layoutFile, err)
	}
	if r.layout, err = template.New(layoutFile).Parse(string(layout)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, layoutFile, err)
	}
	return r, nil
}

func parseLetterTemplate(fsys fs.FS, name string) (*letterTemplate, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if meta.Subject == "" {
		return nil, fmt.Errorf("%w: %s: subject is missing", ErrRender, name)
	}

	subject, err := texttemplate.New(name + ":subject").Option("missingkey=error").Parse(meta.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	return &letterTemplate{title: meta.Title, subject: subject, body: tmpl}, nil
}

// Company returns the identity block the renderer prints.
func (r *Renderer) Company() Company {
	return r.company
}

// Render produces the letter of kind for rec. at is the reference time: the
// offer date when the record has none, and the completion "Issued on" date.
func (r *Renderer) Render(kind Kind, rec intern.Record, at time.Time) (*Letter, error) {
	if kind != KindOffer && kind != KindCompletion {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	data, start, err := r.letterData(rec, at)
	if err != nil {
		return nil, err
	}

	l := &Letter{Kind: kind, IssuedAt: at, Company: r.company}
	if kind == KindCompletion {
		d := ParseDuration(rec.Duration)
		l.DurationRecognized = d.Recognized()
		l.CompletionDate = d.AddTo(start)
		data.CompletionDate = l.CompletionDate.Format(dateLayout)

		if r.verifyBaseURL != "" && rec.ID != "" {
			l.VerifyURL = r.verifyBaseURL + "/verify/" + url.PathEscape(rec.ID)
			if l.QRCode, err = r.qr.PNG(l.VerifyURL); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
		}
	} else {
		l.DurationRecognized = ParseDuration(rec.Duration).Recognized()
	}

	if err := r.execute(r.templates[kind], data, l); err != nil {
		return nil, err
	}
	return l, nil
}

// RenderDiagnostic produces the fixed channel test message.
func (r *Renderer) RenderDiagnostic(at time.Time) (*Letter, error) {
	data := letterData{
		Company:  r.companyData(),
		IssuedOn: at.Format("January 2, 2006 15:04 MST"),
	}
	l := &Letter{Kind: KindDiagnostic, IssuedAt: at, Company: r.company}
	if err := r.execute(r.templates[KindDiagnostic], data, l); err != nil {
		return nil, err
	}
	return l, nil
}

type letterData struct {
	Name           string
	Position       string
	StartDate      string
	Duration       string
	Location       string
	Stipend        string
	Date           string
	CompletionDate string
	IssuedOn       string
	Company        companyData
}

type companyData struct {
	Name           string
	Phone          string
	Email          string
	HREmail        string
	Website        string
	SystemName     string
	AcceptanceDays string
}

func (r *Renderer) companyData() companyData {
	c := r.company
	return companyData{
		Name:           oneLine(c.Name),
		Phone:          oneLine(c.Phone),
		Email:          oneLine(c.Email),
		HREmail:        oneLine(c.HREmail),
		Website:        oneLine(c.Website),
		SystemName:     oneLine(c.SystemName),
		AcceptanceDays: strconv.Itoa(c.AcceptanceDays),
	}
}

// letterData validates rec and collects every problem before failing.
func (r *Renderer) letterData(rec intern.Record, at time.Time) (letterData, time.Time, error) {
	verr := &ValidationError{}

	required := []struct {
		field, value string
	}{
		{"name", rec.Name},
		{"position", rec.Position},
		{"start_date", rec.StartDate},
		{"duration", rec.Duration},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.add(f.field, "is required")
		}
	}

	free := append(required[:len(required):len(required)], []struct {
		field, value string
	}{
		{"location", rec.Location},
		{"stipend", rec.Stipend},
	}...)
	for _, f := range free {
		if strings.Contains(f.value, "{{") || strings.Contains(f.value, "}}") {
			verr.add(f.field, "must not contain template delimiters")
		}
	}

	var start time.Time
	if s := strings.TrimSpace(rec.StartDate); s != "" {
		var err error
		if start, err = parseDate(s); err != nil {
			verr.add("start_date", "must be a YYYY-MM-DD date")
		}
	}

	offer := at
	if s := strings.TrimSpace(rec.OfferDate); s != "" {
		var err error
		if offer, err = parseDate(s); err != nil {
			verr.add("offer_date", "must be a YYYY-MM-DD date")
		}
	}

	if err := verr.orNil(); err != nil {
		return letterData{}, time.Time{}, err
	}

	return letterData{
		Name:      oneLine(rec.Name),
		Position:  oneLine(rec.Position),
		StartDate: start.Format(dateLayout),
		Duration:  oneLine(rec.Duration),
		Location:  orNotSet(rec.Location),
		Stipend:   orNotSet(rec.Stipend),
		Date:      offer.Format(dateLayout),
		IssuedOn:  at.Format(dateLayout),
		Company:   r.companyData(),
	}, start, nil
}

func (r *Renderer) execute(tpl *letterTemplate, data letterData, l *Letter) error {
	var subject, text, md, body, doc bytes.Buffer

	if err := tpl.subject.Execute(&subject, data); err != nil {
		return fmt.Errorf("%w: subject: %v", ErrRender, err)
	}
	if err := tpl.body.Execute(&text, data); err != nil {
		return fmt.Errorf("%w: body: %v", ErrRender, err)
	}
	if err := tpl.body.Execute(&md, data.escaped()); err != nil {
		return fmt.Errorf("%w: body: %v", ErrRender, err)
	}
	if err := r.md.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("%w: markdown: %v", ErrRender, err)
	}

	l.Title = tpl.title
	l.Subject = strings.TrimSpace(subject.String())
	l.Body = r.policy.Sanitize(body.String())
	l.Text = plainText(text.String())

	layout := struct {
		Title     string
		Content   template.HTML
		Company   Company
		QRCode    template.URL
		VerifyURL string
	}{
		Title:     l.Title,
		Content:   template.HTML(l.Body),
		Company:   r.company,
		VerifyURL: l.VerifyURL,
	}
	if len(l.QRCode) > 0 {
		layout.QRCode = template.URL(qrcode.EncodeDataURI(l.QRCode))
	}
	if err := r.layout.Execute(&doc, layout); err != nil {
		return fmt.Errorf("%w: layout: %v", ErrRender, err)
	}
	l.HTML = doc.String()

	for _, out := range []string{l.Subject, l.Text, l.HTML} {
		if strings.Contains(out, "{{") || strings.Contains(out, "}}") {
			return fmt.Errorf("%w: unresolved placeholder in output", ErrRender)
		}
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`#`, `\#`, `+`, `\+`, `-`, `\-`, `!`, `\!`, `|`, `\|`, `~`, `\~`,
)

// escapeValue makes an intern-supplied value inert for goldmark: markdown
// punctuation is backslash-escaped, then HTML metacharacters become entities.
func escapeValue(s string) string {
	return html.EscapeString(markdownEscaper.Replace(s))
}

func (d letterData) escaped() letterData {
	e := d
	for _, f := range []*string{
		&e.Name, &e.Position, &e.StartDate, &e.Duration, &e.Location, &e.Stipend,
		&e.Date, &e.CompletionDate, &e.IssuedOn,
		&e.Company.Name, &e.Company.Phone, &e.Company.Email, &e.Company.HREmail,
		&e.Company.Website, &e.Company.SystemName,
	} {
		*f = escapeValue(*f)
	}
	return e
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orNotSet(s string) string {
	if s = oneLine(s); s == "" {
		return notSet
	}
	return s
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// plainText strips the markdown markers the letter templates use.
func plainText(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(strings.TrimRight(line, " "), `\`)
		if h := strings.TrimLeft(line, "#"); h != line {
			line = strings.TrimSpace(h)
		}
		lines[i] = strings.ReplaceAll(line, "**", "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
