package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"wbtxdash/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the common data of every full page
type PageData struct {
	Title         string
	Active        string
	Username      string
	Authenticated bool
	Notice        *Notice
	Data          interface{}
}

// newPage fills the fields every page shares from the request and takes
// the pending flash notice
func newPage(c echo.Context, title, active string, data interface{}) PageData {
	return PageData{
		Title:         title,
		Active:        active,
		Username:      middleware.GetUsername(c),
		Authenticated: middleware.GetAuth(c).IsAuthenticated(),
		Notice:        popFlash(c),
		Data:          data,
	}
}

// Renderer renders the embedded templates for echo
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every embedded template
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render implements echo.Renderer
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
