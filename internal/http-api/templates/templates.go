// Package templates holds the HTML pages of the site and the gin renderer
// that serves them.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"yatube/internal/http-api/dto"

	"github.com/gin-gonic/gin/render"
)

//go:embed base.html includes/*.html posts/*.html users/*.html about/*.html core/*.html
var files embed.FS

const layout = "base.html"

// Renderer implements gin's render.HTMLRender. Every page is parsed together
// with the layout and the includes, so pages can share block names.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// New parses every page template.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	err := fs.WalkDir(files, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || name == layout || strings.HasPrefix(name, "includes/") || path.Ext(name) != ".html" {
			return nil
		}
		tmpl, err := template.New(layout).Funcs(Funcs()).ParseFS(files, layout, "includes/*.html", name)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Instance returns the page name rendered through the layout.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		panic(fmt.Sprintf("templates: unknown page %q", name))
	}
	return render.HTML{Template: tmpl, Name: layout, Data: data}
}

// Has reports whether name is a known page.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Funcs are the helpers available in every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"linebreaksbr":  linebreaksbr,
		"truncatechars": truncatechars,
		"date":          formatDate,
		"datetime":      formatDateTime,
		"fieldErrors":   fieldErrors,
		"nonFieldErrors": func(errs dto.FormErrors) []string {
			return errs.NonField()
		},
		"year": func() int { return time.Now().Year() },
		"pageURL": func(number int) string {
			return fmt.Sprintf("?page=%d", number)
		},
		"eqID": func(a *int64, b int64) bool {
			return a != nil && *a == b
		},
		"dict": dict,
	}
}

// dict builds a map from key/value pairs so includes can take several arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func linebreaksbr(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func truncatechars(n int, text string) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	if n < 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

func formatDateTime(t time.Time) string {
	return t.Format("2 January 2006 15:04")
}

func fieldErrors(errs dto.FormErrors, field string) []string {
	return errs.Get(field)
}
