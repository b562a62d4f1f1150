package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/bookmarks/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

// layout is embedded by every page and feeds the shared header.
type layout struct {
	User    *domain.User
	Flashes []flash
}

type indexPage struct {
	layout
	Bookmarks   []domain.Bookmark
	Tags        []domain.Tag
	SelectedTag string
	Search      string
	Sort        string
}

type editPage struct {
	layout
	Bookmark domain.Bookmark
	Tags     string
}

type formPage struct {
	layout
}

type errorPage struct {
	layout
	Status  int
	Title   string
	Message string
}

// page is implemented by the page structs through their embedded layout.
type page interface {
	setLayout(layout)
}

func (l *layout) setLayout(v layout) { *l = v }

// render executes the named template into a buffer first, so a template error
// becomes a clean 500 rather than a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if p, ok := data.(page); ok {
		p.setLayout(layout{User: userFrom(r.Context()), Flashes: s.popFlashes(w, r)})
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
