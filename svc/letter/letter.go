package letter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation  = errors.New("letter: validation failed")
	ErrUnknownKind = errors.New("letter: unknown letter kind")
	ErrRender      = errors.New("letter: render failed")
)

// Kind selects a letter template.
type Kind string

const (
	KindOffer      Kind = "offer"
	KindCompletion Kind = "completion"
	// KindDiagnostic is the channel test message. It is not an intern letter.
	KindDiagnostic Kind = "diagnostic"
)

// ParseKind accepts the two intern letter kinds.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindOffer, KindCompletion:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Letter is a rendered document. It is never stored; the same record, kind
// and reference time always produce the same Letter.
type Letter struct {
	Kind    Kind
	Title   string
	Subject string
	// Body is the sanitized HTML fragment without letterhead.
	Body string
	// HTML is the printable page: email body, preview and HTML download.
	HTML string
	// Text is the plain-text rendition of Body.
	Text     string
	IssuedAt time.Time
	// CompletionDate is set for completion letters only.
	CompletionDate     time.Time
	DurationRecognized bool
	// QRCode is a PNG linking to VerifyURL, completion letters only.
	QRCode    []byte
	VerifyURL string
	Company   Company
}

// Company is the fixed identity block printed on every letter.
type Company struct {
	Name           string `env:"LETTER_COMPANY_NAME" envDefault:"Roriri Software Solutions Pvt. Ltd"`
	ShortName      string `env:"LETTER_COMPANY_SHORT_NAME" envDefault:"RORIRI"`
	Tagline        string `env:"LETTER_COMPANY_TAGLINE" envDefault:"SOFTWARE SOLUTIONS PVT. LTD."`
	Park           string `env:"LETTER_COMPANY_PARK" envDefault:"RORIRI IT PARK"`
	Address        string `env:"LETTER_COMPANY_ADDRESS" envDefault:"Nallanathapuram, Kalakad- 627 501"`
	Phone          string `env:"LETTER_COMPANY_PHONE" envDefault:"+91 96770 18421"`
	Email          string `env:"LETTER_COMPANY_EMAIL" envDefault:"services@roririsoft.com"`
	HREmail        string `env:"LETTER_COMPANY_HR_EMAIL" envDefault:"hr@roririsoft.com"`
	Website        string `env:"LETTER_COMPANY_WEBSITE" envDefault:"www.roririsoft.com"`
	SystemName     string `env:"LETTER_SYSTEM_NAME" envDefault:"Roriri Internship System"`
	AcceptanceDays int    `env:"LETTER_ACCEPTANCE_DAYS" envDefault:"7"`
}

// DefaultCompany returns the identity used when no configuration is given.
func DefaultCompany() Company {
	return Company{
		Name:           "Roriri Software Solutions Pvt. Ltd",
		ShortName:      "RORIRI",
		Tagline:        "SOFTWARE SOLUTIONS PVT. LTD.",
		Park:           "RORIRI IT PARK",
		Address:        "Nallanathapuram, Kalakad- 627 501",
		Phone:          "+91 96770 18421",
		Email:          "services@roririsoft.com",
		HREmail:        "hr@roririsoft.com",
		Website:        "www.roririsoft.com",
		SystemName:     "Roriri Internship System",
		AcceptanceDays: 7,
	}
}

func (c Company) withDefaults() Company {
	d := DefaultCompany()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&c.Name, d.Name)
	fill(&c.ShortName, d.ShortName)
	fill(&c.Tagline, d.Tagline)
	fill(&c.Park, d.Park)
	fill(&c.Address, d.Address)
	fill(&c.Phone, d.Phone)
	fill(&c.Email, d.Email)
	fill(&c.HREmail, d.HREmail)
	fill(&c.Website, d.Website)
	fill(&c.SystemName, d.SystemName)
	if c.AcceptanceDays <= 0 {
		c.AcceptanceDays = d.AcceptanceDays
	}
	return c
}

// FieldProblem is one invalid input field.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that prevented rendering.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+" "+p.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, message string) {
	e.Problems = append(e.Problems, FieldProblem{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
