package export

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/letterdesk/svc/letter"
)

// Page returns the printable HTML page of l as a templ component. It is the
// letter's own layout, so previews, mail bodies and HTML downloads match.
func Page(l *letter.Letter) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, l.HTML)
		return err
	})
}

func renderHTML(l *letter.Letter) ([]byte, error) {
	if l.HTML == "" {
		return nil, errEmptyPage
	}
	return []byte(l.HTML), nil
}
