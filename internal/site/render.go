package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"join": strings.Join,
	"repeat": func(s string, count int64) string {
		if count < 0 {
			count = 0
		}
		return strings.Repeat(s, int(count))
	},
}).ParseFS(templatesFS, "templates/*.html"))

// Render writes the HTML page for the given sections.
func Render(w io.Writer, sections []Section) error {
	data := struct {
		Sections []Section
	}{Sections: sections}
	if err := templates.ExecuteTemplate(w, "reviews.html", data); err != nil {
		return fmt.Errorf("render reviews page: %w", err)
	}
	return nil
}
