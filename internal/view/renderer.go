package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HTMLRenderer renders directives with html templates, implements echo.Renderer
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer parses embedded templates
func NewHTMLRenderer() (*HTMLRenderer, error) {
	t, err := template.New("views").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates - %w", err)
	}
	return &HTMLRenderer{templates: t}, nil
}

// Render executes template with provided name
func (r *HTMLRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
