package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"sdg-dashboard/models"
)

// Section is one chart view of the report. A section with NoData set shows
// Message instead of a chart.
type Section struct {
	Title   string
	Chart   *models.ChartSpec
	Summary *models.SeriesReport
	NoData  bool
	Message string
}

// Report is the whole dashboard page.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Words       []models.WordWeight
	Sections    []Section
}

type sectionView struct {
	Section
	SVG    template.HTML
	Ranges []string
	Target string
}

type reportView struct {
	Title       string
	GeneratedAt string
	Words       []wordView
	Sections    []sectionView
}

type wordView struct {
	Word  string
	Count int
	Size  string
}

// ReportWriter renders Reports as a self-contained HTML page. Charts are
// inlined as SVG so the page works offline and prints cleanly to PDF.
type ReportWriter struct {
	charts *ChartRenderer
	tmpl   *template.Template
}

func NewReportWriter(charts *ChartRenderer) *ReportWriter {
	return &ReportWriter{
		charts: charts,
		tmpl:   template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// Write renders the report to w.
func (rw *ReportWriter) Write(w io.Writer, r Report) error {
	view := reportView{
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt.Format("2006-01-02 15:04"),
		Words:       wordSizes(r.Words),
	}

	for _, s := range r.Sections {
		sv := sectionView{Section: s}
		if !s.NoData && s.Chart != nil {
			svg, err := rw.charts.SVG(s.Chart)
			if err != nil {
				return fmt.Errorf("render: section %q: %w", s.Title, err)
			}
			sv.SVG = template.HTML(svg)
			for _, b := range s.Chart.RangeSelector {
				sv.Ranges = append(sv.Ranges, b.Label)
			}
			if s.Chart.TargetOverlay != nil {
				sv.Target = s.Chart.TargetOverlay.Label
			}
		}
		view.Sections = append(view.Sections, sv)
	}

	if err := rw.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("render: report template: %w", err)
	}
	return nil
}

// WriteFile renders the report to path, creating parent directories.
func (rw *ReportWriter) WriteFile(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("render: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %q: %w", path, err)
	}
	if err := rw.Write(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// wordSizes scales font sizes linearly between 0.8em and 2.4em by count.
func wordSizes(words []models.WordWeight) []wordView {
	if len(words) == 0 {
		return nil
	}
	lo, hi := words[0].Count, words[0].Count
	for _, w := range words {
		lo = min(lo, w.Count)
		hi = max(hi, w.Count)
	}

	out := make([]wordView, len(words))
	for i, w := range words {
		scale := 1.0
		if hi > lo {
			scale = float64(w.Count-lo) / float64(hi-lo)
		}
		out[i] = wordView{Word: w.Word, Count: w.Count, Size: fmt.Sprintf("%.2fem", 0.8+1.6*scale)}
	}
	return out
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #1a1a2e; max-width: 1100px; margin: 0 auto; padding: 1rem; }
header p, .muted { color: #6c757d; font-size: .875rem; }
section { border: 1px solid #dee2e6; border-radius: 8px; padding: 1rem; margin-bottom: 1.5rem; page-break-inside: avoid; }
.words span { display: inline-block; margin: .2rem .4rem; color: #4F46E5; }
.nodata { color: #b45309; font-style: italic; }
.chart svg { width: 100%; height: auto; }
table { width: 100%; border-collapse: collapse; font-size: .8125rem; margin-top: .75rem; }
th, td { padding: .35rem .5rem; text-align: right; border-bottom: 1px solid #dee2e6; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p>Generated {{.GeneratedAt}}</p>
</header>

<section id="wordcloud">
  <h2>Word Cloud of Indicator Descriptions</h2>
  {{if .Words}}<div class="words">{{range .Words}}<span style="font-size: {{.Size}}" title="{{.Count}}">{{.Word}}</span>{{end}}</div>
  {{else}}<p class="nodata">No indicator labels available.</p>{{end}}
</section>
{{range .Sections}}
<section>
  <h2>{{.Title}}</h2>
  {{if .NoData}}<p class="nodata">{{.Message}}</p>
  {{else}}
  <div class="chart">{{.SVG}}</div>
  <p class="muted">{{if .Target}}Reference line: {{.Target}}. {{end}}Ranges: {{range $i, $r := .Ranges}}{{if $i}} | {{end}}{{$r}}{{end}}</p>
  {{with .Summary}}{{if .Countries}}
  <table>
    <thead><tr><th>Country</th><th>Points</th><th>First</th><th>Latest</th><th>Change</th></tr></thead>
    <tbody>
    {{range .Countries}}<tr><td>{{.CountryCode}}</td><td>{{.Points}}</td><td>{{.FirstValue}} ({{.FirstYear}})</td><td>{{.LatestValue}} ({{.LatestYear}})</td><td>{{printf "%+.2f" .Change}}</td></tr>
    {{end}}</tbody>
  </table>
  {{end}}{{end}}
  {{end}}
</section>
{{end}}
</body>
</html>
`
