// Package web holds the embedded HTML templates for the rendered pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"budgetgrid/internal/months"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses all embedded pages with the shared helper functions.
func Templates() *template.Template {
	return template.Must(
		template.New("").Funcs(funcs()).ParseFS(templateFS, "templates/*.tmpl"),
	)
}

func funcs() template.FuncMap {
	return template.FuncMap{
		// num renders a float without a fixed precision: 600, 7.5, 0.
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		// money renders a float with two decimals.
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"shortMonths": months.Short,
		"shortFor":    months.ShortFor,
		"indent": func(level int) int {
			return level * 24
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}
