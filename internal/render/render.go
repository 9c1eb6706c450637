// Package render is the template-rendering collaborator: plain data in,
// markup (or a render error) out. Handlers never touch html/template
// directly, and nothing in here knows about sessions, repositories, or
// HTTP.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/sakif/snippetbox/internal/model"
)

// Data is everything a page template can reference. Handlers populate only
// the fields their page uses.
type Data struct {
	CurrentYear     int
	Flash           string
	IsAuthenticated bool
	Snippet         *model.Snippet
	Snippets        []model.Snippet
	Form            any
}

// Renderer holds one pre-parsed template set per page.
//
// WHY PARSE UP-FRONT?
// Parsing at startup turns a template syntax error into a startup failure
// instead of a runtime 500, and rendering from a cache costs nothing per
// request.
type Renderer struct {
	cache map[string]*template.Template
}

// funcs are the helpers available inside templates.
var funcs = template.FuncMap{
	"humanDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("02 Jan 2006 at 15:04")
	},
}

// New parses every page under templates/pages in fsys, each together with
// the base layout and partials.
func New(fsys fs.FS) (*Renderer, error) {
	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: globbing pages: %w", err)
	}

	cache := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := filepath.Base(page)

		ts, err := template.New(name).Funcs(funcs).ParseFS(fsys,
			"templates/base.html",
			"templates/partials/*.html",
			page,
		)
		if err != nil {
			return nil, fmt.Errorf("render: parsing %s: %w", name, err)
		}
		cache[name] = ts
	}

	return &Renderer{cache: cache}, nil
}

// Render executes the named page into a buffer and returns the bytes.
// Rendering to a buffer first means a template that blows up halfway never
// leaks a half-written page to the client — the caller still has the chance
// to send a clean 500.
func (rn *Renderer) Render(page string, data Data) ([]byte, error) {
	ts, ok := rn.cache[page]
	if !ok {
		return nil, fmt.Errorf("render: template %q does not exist", page)
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("render: executing %s: %w", page, err)
	}
	return buf.Bytes(), nil
}
