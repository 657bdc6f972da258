package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

const htmlReport = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>qaharness report: {{.Target}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
.meta { color: #666; margin-bottom: 1.5em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2em; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; }
th { background: #f5f5f5; }
.pass { color: #1a7f37; }
.fail { color: #cf222e; }
.summary { font-weight: bold; margin-bottom: 1em; }
.err { font-family: monospace; font-size: 0.9em; color: #cf222e; }
</style>
</head>
<body>
<h1>qaharness report</h1>
<div class="meta">
target: {{.Target}} ({{.BaseURL}})<br>
started: {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}, took {{.Duration}}
</div>
<div class="summary {{if .OK}}pass{{else}}fail{{end}}">
{{.Passed}} passed, {{.Failed}} failed
</div>
{{range .Suites}}
<h2>{{.Name}} <small>({{.Duration}})</small></h2>
<table>
<tr><th>Case</th><th>Result</th><th>Status</th><th>Duration</th><th>Detail</th></tr>
{{range .Results}}
<tr>
<td>{{.Name}}</td>
<td class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}PASS{{else}}FAIL{{end}}</td>
<td>{{if .StatusCode}}{{.StatusCode}}{{end}}</td>
<td>{{.Duration}}</td>
<td class="err">{{if .Err}}{{.Err}}{{end}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlReport))

// WriteHTML renders the run into an HTML file, creating parent directories
// as needed.
func WriteHTML(path string, run Run) error {
	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("report: create dir: %w", err)
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return fmt.Errorf("report: create file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := htmlTmpl.Execute(f, run); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}
