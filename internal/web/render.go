package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "week", "summary"
}

// SlotView is one cell of the week grid.
type SlotView struct {
	MealType meal.MealType
	Meal     *meal.Meal
}

// DayView is one column of the week grid.
type DayView struct {
	Date    string
	Weekday string
	Today   bool
	Slots   []SlotView
}

// WeekPageData is the template data for the week grid.
type WeekPageData struct {
	PageData
	Start     string
	End       string
	PrevStart string
	NextStart string
	Days      []DayView
	MealTypes []meal.MealType
	Count     int
}

// SummaryPageData is the template data for the week summary page.
type SummaryPageData struct {
	PageData
	Start        string
	End          string
	PrevStart    string
	NextStart    string
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"join":       strings.Join,
	}

	layoutTmpl, err := template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := map[string]string{
		"week":    "week.html",
		"summary": "summary.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t, err := layoutTmpl.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}, nil
}

// page fills the common page fields.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP status code.
// Output is buffered so a template error never produces a half-written page.
func (r *Renderer) renderPage(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}

// wantsJSON reports whether the client asked for JSON.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// errorBody is the JSON error envelope. Detail repeats the message for
// clients that only read a flat string.
type errorBody struct {
	Detail string      `json:"detail"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError writes err as a JSON error envelope. Internal details are never exposed.
func writeError(w http.ResponseWriter, err error) {
	mErr := errors.As(err)
	details := mErr.Details
	if mErr.Code == errors.ErrInternal {
		details = nil
	}
	writeJSON(w, mErr.Status, errorBody{
		Detail: mErr.Message,
		Error: errorDetail{
			Code:    string(mErr.Code),
			Message: mErr.Message,
			Status:  mErr.Status,
			Details: details,
		},
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
