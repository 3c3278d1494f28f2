package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dealdesk/diligence/internal/core/domain"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Due Diligence Report — {{.ProjectID}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #1a1a1a; }
h1, h2 { border-bottom: 1px solid #ccc; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
th, td { border: 1px solid #ddd; padding: .4rem .6rem; text-align: left; vertical-align: top; }
th { background: #f5f5f5; }
.status-validated { color: #1a7f37; }
.status-rejected { color: #b42318; }
.status-pending { color: #9a6700; }
footer { margin-top: 2rem; font-size: .8rem; color: #777; }
</style>
</head>
<body>
<h1>Due Diligence Report</h1>
<p>Project <strong>{{.ProjectID}}</strong>, generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}.</p>

<h2>Findings ({{len .Findings}})</h2>
<table>
<tr><th>Text</th><th>Domain</th><th>Confidence</th><th>Status</th><th>Source</th></tr>
{{range .Findings}}<tr>
<td>{{.Text}}</td>
<td>{{.Domain}}</td>
<td>{{printf "%.2f" .Confidence}}</td>
<td class="status-{{.Status}}">{{.Status}}</td>
<td>{{.Source.DocumentName}}{{if .Source.Page}} p.{{.Source.Page}}{{end}}{{if .Source.Cell}} cell {{.Source.Cell}}{{end}}</td>
</tr>
{{end}}</table>

<h2>Contradictions ({{len .Contradictions}})</h2>
<table>
<tr><th>Description</th><th>Findings</th><th>Status</th><th>Resolution note</th></tr>
{{range .Contradictions}}<tr>
<td>{{.Description}}</td>
<td>{{.FindingAID}} vs {{.FindingBID}}</td>
<td>{{.Status}}</td>
<td>{{.ResolutionNote}}</td>
</tr>
{{end}}</table>

<h2>Information Gaps ({{len .Gaps}})</h2>
<table>
<tr><th>Description</th><th>Category</th><th>Priority</th><th>Status</th></tr>
{{range .Gaps}}<tr>
<td>{{.Description}}</td>
<td>{{.Category}}</td>
<td>{{.Priority}}</td>
<td>{{.Status}}</td>
</tr>
{{end}}</table>

<footer>Generated by dealdesk diligence.</footer>
</body>
</html>
`))

func (r *Renderer) RenderReportHTML(w io.Writer, report domain.Report) error {
	if err := reportTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("execute report template: %w", err)
	}
	return nil
}
