package handler

import (
	"net/http"

	"github.com/a-h/templ"
)

type htmlResponse struct {
	status    int
	component templ.Component
}

func (h htmlResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(h.status)
	return h.component.Render(r.Context(), w)
}

// Templ renders component as an HTML page.
func Templ(component templ.Component) Response {
	return htmlResponse{status: http.StatusOK, component: component}
}

// HTML writes a pre-rendered, trusted HTML document.
func HTML(doc string) Response {
	return htmlResponse{status: http.StatusOK, component: templ.Raw(doc)}
}
