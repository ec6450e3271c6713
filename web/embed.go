// Package web embeds the server-rendered court and login pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"clock": func(t time.Time) string { return t.Format("01-02 15:04") },
	"stars": func(score float64) string {
		return fmt.Sprintf("%.1f", score)
	},
}

var pages = template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))

// Render executes the named page template into w.
func Render(w io.Writer, name string, data any) error {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
