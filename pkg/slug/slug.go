// Package slug turns display names into filesystem- and URL-safe tokens.
//
//	slug.Make("Anu Priya")        // "anu-priya"
//	slug.Make("José Núñez")       // "jose-nunez"
//	slug.Make("R&D / Ops", slug.Separator("_")) // "r_d_ops"
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	lowercase bool
}

// MaxLength truncates the slug to n runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator replaces the default "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// Lowercase toggles lowercasing. Enabled by default.
func Lowercase(enabled bool) Option {
	return func(c *config) { c.lowercase = enabled }
}

// letters that do not decompose under NFD
var folds = strings.NewReplacer(
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
)

// Make creates a slug from s. Diacritics are stripped, every run of
// characters other than ASCII letters and digits collapses into one
// separator, and leading or trailing separators are trimmed.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(cfg)
	}

	s = fold(s)

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	count := 0
	sepLen := len([]rune(cfg.separator))

	for _, r := range s {
		if !isASCIIAlnum(r) {
			pendingSep = count > 0
			continue
		}
		if pendingSep {
			if cfg.maxLength > 0 && count+sepLen+1 > cfg.maxLength {
				break
			}
			b.WriteString(cfg.separator)
			count += sepLen
			pendingSep = false
		}
		if cfg.maxLength > 0 && count >= cfg.maxLength {
			break
		}
		if cfg.lowercase {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
		count++
	}

	return b.String()
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return folds.Replace(out)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
