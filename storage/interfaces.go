package storage

import (
	"context"

	"sdg-dashboard/models"
)

// TableSource is the interface any input backend must satisfy. It yields the
// national values table and the indicator labels table.
type TableSource interface {
	ReadValues(ctx context.Context) (*models.RawTable, error)
	ReadLabels(ctx context.Context) (*models.RawTable, error)
	Close() error
}

// SeriesWriter is the interface for exporting a filtered series.
type SeriesWriter interface {
	Write(series models.FilteredSeries) error
	Close() error
}

// seriesHeader is the column layout shared by the exporters.
var seriesHeader = []string{
	models.ColCountryID, models.ColIndicatorID, models.ColYear, models.ColValue, models.ColIndicatorLabel,
}
