package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer handles HTML template rendering.
type Renderer struct {
	dashboardTmpl *template.Template
	errorTmpl     *template.Template
}

// NewRenderer creates a new template renderer.
func NewRenderer() (*Renderer, error) {
	dashboardTmpl, err := template.New("dashboard.html").
		ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	errorTmpl, err := template.New("error.html").
		ParseFS(templateFS, "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error template: %w", err)
	}

	return &Renderer{
		dashboardTmpl: dashboardTmpl,
		errorTmpl:     errorTmpl,
	}, nil
}

// DashboardPageData seeds the dashboard shell; the page itself fetches
// /api/dashboard for data.
type DashboardPageData struct {
	Title          string
	MinScore       float64
	RefreshSeconds int
	TopN           int
}

// ErrorPageData renders a user-visible load failure.
type ErrorPageData struct {
	Title   string
	Message string
}

func (r *Renderer) RenderDashboard(w io.Writer, data DashboardPageData) error {
	if err := r.dashboardTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	return nil
}

func (r *Renderer) RenderError(w io.Writer, data ErrorPageData) error {
	if err := r.errorTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render error page: %w", err)
	}

	return nil
}
