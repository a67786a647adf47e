package export

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/dmitrymomot/letterdesk/svc/letter"
)

const (
	pageMargin   = 20.0
	footerHeight = 14.0
	lineHeight   = 5.5
	qrSide       = 32.0
)

// pdf lays out the letter text on A4 pages and reports the page count and
// whether the page limit cut it short.
func (e *Exporter) pdf(l *letter.Letter) ([]byte, int, bool, error) {
	footer := strings.Join(nonEmpty(l.Company.Park, l.Company.Phone, l.Company.Email, l.Company.Address, l.Company.Website), "  |  ")
	if err := checkDrawable(l.Title, l.Text, l.VerifyURL, l.Company.ShortName, l.Company.Tagline, footer); err != nil {
		return nil, 0, false, err
	}

	p := fpdf.New("P", "mm", "A4", "")
	registerFonts(p)
	p.SetMargins(pageMargin, pageMargin, pageMargin)
	p.SetAutoPageBreak(false, pageMargin)
	p.SetCatalogSort(true)
	p.SetCreationDate(l.IssuedAt)
	p.SetModificationDate(l.IssuedAt)
	p.SetTitle(l.Title, true)
	p.SetSubject(l.Subject, true)
	p.SetAuthor(l.Company.Name, true)

	_, pageHeight := p.GetPageSize()
	bottom := pageHeight - pageMargin - footerHeight
	width, _ := p.GetPageSize()
	width -= 2 * pageMargin

	p.SetFooterFunc(func() {
		p.SetY(-pageMargin - 4)
		p.SetFont(fontFamily, "", 8)
		p.SetTextColor(90, 90, 90)
		p.CellFormat(0, 4, footer, "T", 0, "C", false, 0, "")
		p.SetTextColor(0, 0, 0)
	})

	p.AddPage()
	writeHeader(p, l)

	truncated := false
	newPage := func() bool {
		if e.maxPages > 0 && p.PageCount() >= e.maxPages {
			truncated = true
			return false
		}
		p.AddPage()
		return true
	}

	p.SetFont(fontFamily, "", 11)
lines:
	for _, para := range strings.Split(l.Text, "\n") {
		para = strings.TrimRight(para, " ")
		if para == "" {
			p.Ln(lineHeight / 2)
			continue
		}
		if rest, ok := strings.CutPrefix(para, "- "); ok {
			para = "• " + rest
		}
		for _, line := range wrap(p, para, width) {
			if p.GetY()+lineHeight > bottom {
				if !newPage() {
					break lines
				}
				p.SetFont(fontFamily, "", 11)
			}
			p.CellFormat(width, lineHeight, line, "", 1, "L", false, 0, "")
		}
	}

	if len(l.QRCode) > 0 && !truncated {
		if p.GetY()+qrSide+lineHeight > bottom && !newPage() {
			truncated = true
		} else {
			p.RegisterImageOptionsReader("verify-qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(l.QRCode))
			y := p.GetY() + lineHeight
			p.ImageOptions("verify-qr", pageMargin+width-qrSide, y, qrSide, qrSide, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			p.SetY(y + qrSide)
			p.SetFont(fontFamily, "", 7)
			p.CellFormat(width, 4, l.VerifyURL, "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, 0, false, err
	}
	return buf.Bytes(), p.PageCount(), truncated, nil
}

func writeHeader(p *fpdf.Fpdf, l *letter.Letter) {
	p.SetFont(fontFamily, "B", 18)
	p.SetTextColor(11, 79, 156)
	p.CellFormat(0, 9, l.Company.ShortName, "", 1, "L", false, 0, "")
	p.SetFont(fontFamily, "", 8)
	p.CellFormat(0, 4, l.Company.Tagline, "B", 1, "L", false, 0, "")
	p.Ln(8)

	p.SetFont(fontFamily, "B", 16)
	p.CellFormat(0, 8, l.Title, "", 1, "C", false, 0, "")
	p.SetTextColor(0, 0, 0)
	p.Ln(4)
}

// wrap breaks text into lines no wider than width, splitting on spaces and
// hard-breaking words that are wider than a line.
func wrap(p *fpdf.Fpdf, text string, width float64) []string {
	var (
		lines []string
		cur   string
	)
	for _, word := range strings.Fields(text) {
		for p.GetStringWidth(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			runes := []rune(word)
			n := len(runes) - 1
			for n > 1 && p.GetStringWidth(string(runes[:n])) > width {
				n--
			}
			lines = append(lines, string(runes[:n]))
			word = string(runes[n:])
		}
		switch {
		case cur == "":
			cur = word
		case p.GetStringWidth(cur+" "+word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
