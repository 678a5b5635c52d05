package web

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"propertyedge/report"
	"propertyedge/valuation"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"gbp": valuation.FormatPounds,
	"pounds": func(p *int) string {
		if p == nil {
			return report.Placeholder
		}
		return valuation.FormatPounds(*p)
	},
	"num": func(p *int) string {
		if p == nil {
			return report.Placeholder
		}
		return strconv.Itoa(*p)
	},
	"text": func(p *string) string {
		if p == nil || *p == "" {
			return report.Placeholder
		}
		return *p
	},
	"when": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
}).ParseFS(templateFS, "templates/*.html"))
