package services

import (
	"strconv"

	"sdg-dashboard/models"
)

// Field names the chart reads from a prepared series.
const (
	FieldYear    = "year"
	FieldValue   = "value"
	FieldCountry = "country_code"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// rangeButtons returns the time-range shortcuts attached to every trend chart.
func rangeButtons() []models.RangeButton {
	return []models.RangeButton{
		{Count: 5, Label: "Last 5y", Step: "year", StepMode: "backward"},
		{Count: 10, Label: "Last 10y", Step: "year", StepMode: "backward"},
		{Step: "all", Label: "All"},
	}
}

// BuildTrend produces a line chart with one colored, marked series per country.
func BuildTrend(series models.NumericSeries, title string) *models.ChartSpec {
	spec := &models.ChartSpec{
		XField:        FieldYear,
		YField:        FieldValue,
		GroupField:    FieldCountry,
		Title:         title,
		XLabel:        "Year",
		YLabel:        "Value",
		GroupLabel:    "Country",
		Markers:       true,
		RangeSelector: rangeButtons(),
		RangeSlider:   models.RangeSlider{Visible: true},
	}
	spec.Series = buildCountrySeries(series)
	return spec
}

// BuildTrendWithTarget is BuildTrend plus a horizontal target line at
// y = target spanning the series' year extent, labelled "<target>% target".
// The overlay is omitted when the series has no valid year.
func BuildTrendWithTarget(series models.NumericSeries, title string, target float64) *models.ChartSpec {
	spec := BuildTrend(series, title)
	if !series.HasYearRange {
		return spec
	}
	spec.TargetOverlay = &models.TargetOverlay{
		YValue: target,
		XMin:   series.MinYear,
		XMax:   series.MaxYear,
		Label:  TargetLabel(target),
		Color:  "red",
		Dash:   "dash",
	}
	return spec
}

// TargetLabel formats the overlay annotation, e.g. 90 → "90% target".
func TargetLabel(target float64) string {
	return strconv.FormatFloat(target, 'f', -1, 64) + "% target"
}

// buildCountrySeries groups points by country in order of first appearance.
// Points missing a year or a value cannot be plotted and are skipped.
func buildCountrySeries(series models.NumericSeries) []models.ChartSeries {
	index := make(map[string]int)
	var out []models.ChartSeries

	for _, p := range series.Points {
		i, ok := index[p.CountryCode]
		if !ok {
			i = len(out)
			index[p.CountryCode] = i
			out = append(out, models.ChartSeries{
				Name:   p.CountryCode,
				Color:  defaultColors[i%len(defaultColors)],
				Points: []models.ChartPoint{},
			})
		}
		if p.Year == nil || p.Value == nil {
			continue
		}
		out[i].Points = append(out[i].Points, models.ChartPoint{X: *p.Year, Y: *p.Value})
	}
	return out
}
