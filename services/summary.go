package services

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"sdg-dashboard/models"
	"sdg-dashboard/utils"
)

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate condenses a prepared series into per-country first/latest
// observations. Points missing a year or value are counted, not summarized.
func (s *SummaryService) Generate(series models.NumericSeries) *models.SeriesReport {
	report := &models.SeriesReport{IndicatorID: series.IndicatorID}
	if len(series.Points) == 0 {
		return report
	}

	report.TotalPoints = len(series.Points)
	index := make(map[string]int)

	// Points arrive sorted by country then year, so the first valid point
	// per country is its earliest and the last is its latest.
	for _, p := range series.Points {
		if p.Year == nil {
			report.MissingYear++
			continue
		}
		if p.Value == nil {
			report.MissingVal++
			continue
		}
		y, v := *p.Year, *p.Value

		i, ok := index[p.CountryCode]
		if !ok {
			index[p.CountryCode] = len(report.Countries)
			report.Countries = append(report.Countries, models.CountrySummary{
				CountryCode: p.CountryCode,
				FirstYear:   y,
				FirstValue:  v,
				MinValue:    v,
				MaxValue:    v,
			})
			i = len(report.Countries) - 1
		}
		cs := &report.Countries[i]
		cs.Points++
		cs.LatestYear = y
		cs.LatestValue = v
		cs.MinValue = math.Min(cs.MinValue, v)
		cs.MaxValue = math.Max(cs.MaxValue, v)
	}

	for i := range report.Countries {
		cs := &report.Countries[i]
		cs.Change = round2(cs.LatestValue - cs.FirstValue)
	}

	if report.MissingYear > 0 || report.MissingVal > 0 {
		s.logger.Debug("[summary] %s: %d points without year, %d without value",
			series.IndicatorID, report.MissingYear, report.MissingVal)
	}
	return report
}

// Print renders the report as a console table.
func (s *SummaryService) Print(w io.Writer, title string, r *models.SeriesReport) {
	heading := color.New(color.FgYellow, color.Bold)
	heading.Fprintf(w, "\n  %s\n", title)

	if len(r.Countries) == 0 {
		fmt.Fprintln(w, "  No chartable points")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Country", "Points", "First", "Latest", "Min", "Max", "Change"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, cs := range r.Countries {
		table.Append([]string{
			cs.CountryCode,
			fmt.Sprintf("%d", cs.Points),
			fmt.Sprintf("%s (%s)", fmtNum(cs.FirstValue), fmtNum(cs.FirstYear)),
			fmt.Sprintf("%s (%s)", fmtNum(cs.LatestValue), fmtNum(cs.LatestYear)),
			fmtNum(cs.MinValue),
			fmtNum(cs.MaxValue),
			fmt.Sprintf("%+.2f", cs.Change),
		})
	}
	table.Render()

	if r.MissingYear > 0 || r.MissingVal > 0 {
		fmt.Fprintf(w, "  %d of %d points skipped (missing year: %d, missing value: %d)\n",
			r.MissingYear+r.MissingVal, r.TotalPoints, r.MissingYear, r.MissingVal)
	}
}

// PrintWords renders word frequencies as a console table.
func (s *SummaryService) PrintWords(w io.Writer, words []models.WordWeight) {
	color.New(color.FgYellow, color.Bold).Fprintf(w, "\n  Word Cloud of Indicator Descriptions\n")
	if len(words) == 0 {
		fmt.Fprintln(w, "  No indicator labels available")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Word", "Count"})
	for i, ww := range words {
		table.Append([]string{fmt.Sprintf("%d", i+1), ww.Word, fmt.Sprintf("%d", ww.Count)})
	}
	table.Render()
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// fmtNum prints whole numbers without decimals and others with two.
func fmtNum(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
