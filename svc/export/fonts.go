package export

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-pdf/fpdf"
)

// DejaVu Sans Condensed, as shipped with go-pdf/fpdf. See fonts/LICENSE.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

const fontFamily = "DejaVu"

var errBadFont = errors.New("export: malformed font cmap")

// drawable holds the runes both embedded faces have glyphs for.
var drawable = sync.OnceValues(func() (map[rune]struct{}, error) {
	regular, err := fontRunes(fontRegular)
	if err != nil {
		return nil, err
	}
	bold, err := fontRunes(fontBold)
	if err != nil {
		return nil, err
	}
	for r := range regular {
		if _, ok := bold[r]; !ok {
			delete(regular, r)
		}
	}
	return regular, nil
})

func registerFonts(p *fpdf.Fpdf) {
	p.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	p.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
}

// checkDrawable fails with ErrUnsupportedText listing the runes of values the
// embedded font has no glyph for.
func checkDrawable(values ...string) error {
	glyphs, err := drawable()
	if err != nil {
		return err
	}
	var (
		missing []rune
		seen    = map[rune]bool{}
	)
	for _, v := range values {
		for _, r := range v {
			if unicode.IsControl(r) || seen[r] {
				continue
			}
			if _, ok := glyphs[r]; !ok {
				seen[r] = true
				missing = append(missing, r)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	var sb strings.Builder
	for i, r := range missing {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q (%U)", r, r)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedText, sb.String())
}

// fontRunes reads the Windows Unicode BMP (3,1) format 4 cmap subtable and
// returns every code point mapped to a real glyph.
func fontRunes(font []byte) (map[rune]struct{}, error) {
	be := binary.BigEndian
	if len(font) < 12 {
		return nil, errBadFont
	}

	var cmap []byte
	for i := range int(be.Uint16(font[4:])) {
		rec := 12 + 16*i
		if rec+16 > len(font) {
			return nil, errBadFont
		}
		if string(font[rec:rec+4]) == "cmap" {
			off := int(be.Uint32(font[rec+8:]))
			if off+4 > len(font) {
				return nil, errBadFont
			}
			cmap = font[off:]
		}
	}
	if cmap == nil {
		return nil, errBadFont
	}

	var table []byte
	for i := range int(be.Uint16(cmap[2:])) {
		rec := 4 + 8*i
		if rec+8 > len(cmap) {
			return nil, errBadFont
		}
		if be.Uint16(cmap[rec:]) == 3 && be.Uint16(cmap[rec+2:]) == 1 {
			off := int(be.Uint32(cmap[rec+4:]))
			if off+14 > len(cmap) {
				return nil, errBadFont
			}
			table = cmap[off:]
		}
	}
	if table == nil || be.Uint16(table) != 4 {
		return nil, errBadFont
	}

	segX2 := int(be.Uint16(table[6:]))
	if len(table) < 16+4*segX2 {
		return nil, errBadFont
	}
	ends := table[14:]
	starts := table[16+segX2:]
	deltas := table[16+2*segX2:]
	offsets := table[16+3*segX2:]

	out := make(map[rune]struct{}, 4096)
	for s := 0; s < segX2; s += 2 {
		start, end := uint32(be.Uint16(starts[s:])), uint32(be.Uint16(ends[s:]))
		delta := be.Uint16(deltas[s:])
		ro := int(be.Uint16(offsets[s:]))
		for c := start; c <= end && c != 0xFFFF; c++ {
			glyph := uint16(c) + delta
			if ro != 0 {
				// idRangeOffset is relative to its own slot in the offsets array.
				i := s + ro + 2*int(c-start)
				if i+2 > len(offsets) {
					return nil, errBadFont
				}
				if glyph = be.Uint16(offsets[i:]); glyph != 0 {
					glyph += delta
				}
			}
			if glyph != 0 {
				out[rune(c)] = struct{}{}
			}
		}
	}
	return out, nil
}
