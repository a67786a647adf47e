// Package qrcode encodes short strings (verification links) as PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent     = errors.New("qrcode: content cannot be empty")
	ErrFailedToGenerate = errors.New("qrcode: failed to generate")
)

const defaultSize = 256

// Level is the error-correction level.
type Level = skipqrcode.RecoveryLevel

const (
	Low     Level = skipqrcode.Low
	Medium  Level = skipqrcode.Medium
	High    Level = skipqrcode.High
	Highest Level = skipqrcode.Highest
)

// Encoder produces PNG QR codes with a fixed size and recovery level.
type Encoder struct {
	size  int
	level Level
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithSize sets the image side in pixels. Non-positive values keep the default.
func WithSize(px int) Option {
	return func(e *Encoder) {
		if px > 0 {
			e.size = px
		}
	}
}

func WithLevel(l Level) Option {
	return func(e *Encoder) { e.level = l }
}

func New(opts ...Option) *Encoder {
	e := &Encoder{size: defaultSize, level: Medium}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PNG encodes content as a PNG image.
func (e *Encoder) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	png, err := skipqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return png, nil
}

// DataURI encodes content as a `data:image/png;base64,...` string suitable
// for an <img src>.
func (e *Encoder) DataURI(content string) (string, error) {
	png, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(png), nil
}

// EncodeDataURI wraps already encoded PNG bytes in a data URI.
func EncodeDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
