package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"sdg-dashboard/models"
)

// ParseNumber is the permissive numeric coercion used for years and values:
// anything that is not a finite number is reported as missing, never as an error.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Prepare coerces years to numbers, orders points by country then year
// (missing years last) and computes the year extent over valid years.
func Prepare(series models.FilteredSeries) models.NumericSeries {
	out := models.NumericSeries{
		IndicatorID: series.IndicatorID,
		Points:      make([]models.SeriesPoint, 0, len(series.Records)),
	}

	for _, r := range series.Records {
		p := models.SeriesPoint{
			CountryCode: r.CountryCode,
			Value:       r.Value,
			Label:       r.IndicatorLabel,
		}
		if y, ok := ParseNumber(r.Year); ok {
			p.Year = &y
			if !out.HasYearRange {
				out.MinYear, out.MaxYear = y, y
				out.HasYearRange = true
			} else {
				out.MinYear = math.Min(out.MinYear, y)
				out.MaxYear = math.Max(out.MaxYear, y)
			}
		}
		out.Points = append(out.Points, p)
	}

	sort.SliceStable(out.Points, func(i, j int) bool {
		a, b := out.Points[i], out.Points[j]
		if a.CountryCode != b.CountryCode {
			return a.CountryCode < b.CountryCode
		}
		switch {
		case a.Year == nil:
			return false
		case b.Year == nil:
			return true
		}
		return *a.Year < *b.Year
	})

	return out
}
