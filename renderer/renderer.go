// Package renderer turns computed snapshots into markdown reports. Layout
// lives in embedded templates; the Go side only selects partials and feeds
// data in.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// SummaryRenderOptions holds configuration for rendering the summary card.
type SummaryRenderOptions struct {
	SkipBenchmarks bool // Do not render the benchmark comparison section.
}

// RenderSummary renders a metrics snapshot to a markdown summary card.
func RenderSummary(s *Summary, opts SummaryRenderOptions) string {
	partials := map[string]string{
		"summary_title":   "summary_title.md",
		"summary_values":  "summary_values.md",
		"summary_returns": "summary_returns.md",
		"summary_issues":  "summary_issues.md",
	}
	if opts.SkipBenchmarks {
		partials["summary_benchmarks"] = ""
	} else {
		partials["summary_benchmarks"] = "summary_benchmarks.md"
	}
	return renderTemplate("summary", "summary.md", partials, s)
}

// RenderChart renders the weekly comparison series as a markdown table.
func RenderChart(c *Chart) string {
	partials := map[string]string{
		"chart_title": "chart_title.md",
		"chart_rows":  "chart_rows.md",
	}
	return renderTemplate("chart", "chart.md", partials, c)
}

// RenderWeek renders the confirmation report of a freshly recorded week.
func RenderWeek(w *Week) string {
	return renderTemplate("week", "week.md", nil, w)
}

// renderTemplate is a generic utility to render a main template that depends
// on several partials. An empty partial file name yields an empty template.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
