// Package web holds the page templates, embedded into the binary.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to every template
var Funcs = template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // callers pass editor.Sanitize output
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 Jan 2006")
	},
	"join":  strings.Join,
	"lower": strings.ToLower,
}

// Templates parses every page template
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}
