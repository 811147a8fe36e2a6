// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"html/template"
	"os"

	"github.com/pdiddy/medlit/internal/store"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Medical Literature Summary Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; }
.header { text-align: center; margin-bottom: 30px; }
.stats { display: flex; justify-content: space-around; margin: 20px 0; }
.stat-box { text-align: center; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
</style>
</head>
<body>
<div class="header">
<h1>Medical Literature Summary Report</h1>
<p>Generated: {{.Generated}}</p>
</div>
<div class="stats">
<div class="stat-box"><h3>{{.Total}}</h3><p>Papers</p></div>
<div class="stat-box"><h3>{{len .Sources}}</h3><p>Sources</p></div>
<div class="stat-box"><h3>{{len .Categories}}</h3><p>Categories</p></div>
</div>
<h2>Sources</h2>
<table>
<tr><th>Source</th><th>Papers</th><th>Share</th></tr>
{{- range .Sources}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{printf "%.1f" .Percent}}%</td></tr>
{{- end}}
</table>
<h2>Categories</h2>
<table>
<tr><th>Category</th><th>Papers</th><th>Share</th></tr>
{{- range .Categories}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{printf "%.1f" .Percent}}%</td></tr>
{{- end}}
</table>
<h2>Years</h2>
<table>
<tr><th>Year</th><th>Papers</th></tr>
{{- range .Years}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

// Report writes an HTML summary of source, category and year distributions.
func (e *Exporter) Report(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "summary_report", "html")
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	data := struct {
		Summary
		Generated string
	}{
		Summary:   Summarize(papers),
		Generated: e.now().Format("2006-01-02 15:04:05"),
	}
	if err := reportTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report: %w", err)
	}
	e.done(FormatReport, path, len(papers))
	return path, nil
}
