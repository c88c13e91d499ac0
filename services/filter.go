package services

import (
	"sdg-dashboard/models"
)

// Filter keeps the rows whose country is in countries and whose indicator is
// indicatorID, preserving table order. An empty result is a valid "no data"
// state, not an error.
func Filter(table *models.MergedTable, countries models.CountrySet, indicatorID string) models.FilteredSeries {
	out := models.FilteredSeries{
		IndicatorID: indicatorID,
		Countries:   countries.Codes(),
	}
	if table == nil {
		return out
	}

	for _, r := range table.Records {
		if r.IndicatorID == indicatorID && countries.Contains(r.CountryCode) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}
