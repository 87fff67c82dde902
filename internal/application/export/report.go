package export

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/datalens/backend/internal/application/session"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; color: #1f2933; margin: 24px; }
  h1 { font-size: 22px; border-bottom: 2px solid #3b82f6; padding-bottom: 8px; }
  h2 { font-size: 16px; margin-top: 24px; }
  table { border-collapse: collapse; width: 100%; margin-top: 8px; font-size: 11px; }
  th, td { border: 1px solid #cbd5e1; padding: 4px 8px; text-align: left; }
  th { background: #eff6ff; }
  .meta { color: #64748b; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Source: {{.Source}} &middot; Generated: {{.GeneratedAt}}</p>

<h2>Overview</h2>
<table>
  <tr><th>Rows</th><td>{{.RowCount}}</td></tr>
  <tr><th>Columns</th><td>{{.ColumnCount}}</td></tr>
  <tr><th>Duplicate rows</th><td>{{.DuplicateRows}}</td></tr>
  <tr><th>Quality score</th><td>{{printf "%.2f" .QualityScore}}</td></tr>
</table>

{{if .Stats}}
<h2>Numeric Statistics</h2>
<table>
  <tr><th>Column</th><th>Count</th><th>Mean</th><th>Std</th><th>Min</th><th>Median</th><th>Max</th></tr>
  {{range .Stats}}
  <tr>
    <td>{{.Name}}</td><td>{{.Count}}</td><td>{{.Mean}}</td><td>{{.Std}}</td>
    <td>{{.Min}}</td><td>{{.Median}}</td><td>{{.Max}}</td>
  </tr>
  {{end}}
</table>
{{end}}

{{range .Sections}}
<h2>{{.Name}}</h2>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}
{{end}}

<h2>Data Preview</h2>
<table>
  <tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
  {{range .Rows}}
  <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
  {{end}}
</table>
{{if .Truncated}}<p class="meta">Preview limited to the first {{len .Rows}} rows.</p>{{end}}
</body>
</html>`

type reportStatRow struct {
	Name   string
	Count  int
	Mean   string
	Std    string
	Min    string
	Median string
	Max    string
}

type reportSection struct {
	Name       string
	Paragraphs []string
}

type reportData struct {
	Title         string
	Source        string
	GeneratedAt   string
	RowCount      int
	ColumnCount   int
	DuplicateRows int
	QualityScore  float64
	Stats         []reportStatRow
	Sections      []reportSection
	Headers       []string
	Rows          [][]string
	Truncated     bool
}

const reportPreviewRows = 50

func formatStat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4g", *v)
}

func (s *Service) reportHTML(snap *session.Snapshot, title string) (string, error) {
	quality, err := s.eda.Quality()
	if err != nil {
		return "", err
	}
	stats, err := s.eda.Statistics(nil)
	if err != nil {
		return "", err
	}

	data := reportData{
		Title:         title,
		Source:        snap.Meta.Source,
		GeneratedAt:   snap.Meta.LoadedAt.Format("2006-01-02 15:04:05"),
		RowCount:      snap.Table.RowCount(),
		ColumnCount:   snap.Table.ColumnCount(),
		DuplicateRows: quality.DuplicateRows,
		QualityScore:  quality.QualityScore,
		Headers:       snap.Table.ColumnNames(),
	}
	for _, col := range stats.Columns {
		if col.Numeric == nil {
			continue
		}
		n := col.Numeric
		data.Stats = append(data.Stats, reportStatRow{
			Name:   col.Name,
			Count:  n.Count,
			Mean:   formatStat(n.Mean),
			Std:    formatStat(n.Std),
			Min:    formatStat(n.Min),
			Median: formatStat(n.Median),
			Max:    formatStat(n.Max),
		})
	}

	for _, section := range s.Sections() {
		rs := reportSection{Name: section.Name}
		for _, para := range strings.Split(section.Content, "\n\n") {
			if strings.TrimSpace(para) != "" {
				rs.Paragraphs = append(rs.Paragraphs, para)
			}
		}
		data.Sections = append(data.Sections, rs)
	}

	limit := snap.Table.RowCount()
	if limit > reportPreviewRows {
		limit = reportPreviewRows
		data.Truncated = true
	}
	for r := 0; r < limit; r++ {
		row := make([]string, 0, snap.Table.ColumnCount())
		for _, cell := range snap.Table.Row(r) {
			if cell.Null {
				row = append(row, "")
			} else {
				row = append(row, cell.Value)
			}
		}
		data.Rows = append(data.Rows, row)
	}

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
