package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// View names.
const (
	viewIndex = "index"
	viewNew   = "new"
	viewShow  = "show"
	viewEdit  = "edit"
	viewError = "error"
)

var viewNames = []string{viewIndex, viewNew, viewShow, viewEdit, viewError}

// page is the data every view receives. Fruit is nil when the requested
// record is absent.
type page struct {
	Title  string
	Fruits []*types.Fruit
	Fruit  *types.Fruit
	Status int
}

// Renderer renders a named view. The controller treats it as opaque.
type Renderer interface {
	Render(w io.Writer, view string, data any) error
}

// Views renders the embedded templates, each wrapped in the shared layout.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses the embedded layout and page templates.
func NewViews() (*Views, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(viewNames))
	for _, name := range viewNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parsing view %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Views{pages: pages}, nil
}

// Render executes the layout with the named page's content block.
func (v *Views) Render(w io.Writer, view string, data any) error {
	t, ok := v.pages[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
