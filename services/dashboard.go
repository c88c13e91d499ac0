package services

import (
	"context"
	"fmt"

	"sdg-dashboard/models"
	"sdg-dashboard/utils"
)

const (
	LiteracyTitle   = "Trend: Adult Literacy Rate (15+)"
	msgNoSelection  = "No data for that selection."
	msgNoLiteracy   = "No data for these countries in the chosen indicator."
	literacyYAxis   = "Literacy Rate (%)"
	comparisonTitle = "%s Over Time"
)

// DefaultLiteracyCountries is the preselection of the literacy view.
var DefaultLiteracyCountries = []string{"ETH", "KEN", "NGA"}

// ViewResult is everything a renderer needs for one chart view. When
// NoData is set, Chart is nil and Message explains the empty selection.
type ViewResult struct {
	Title   string
	Series  models.FilteredSeries
	Numeric models.NumericSeries
	Chart   *models.ChartSpec
	Summary *models.SeriesReport
	NoData  bool
	Message string
}

// Dashboard wires the pipeline behind each view:
// catalog lookup → cached load → filter → prepare → chart spec.
type Dashboard struct {
	loader  *Loader
	catalog *Catalog
	summary *SummaryService
	logger  *utils.Logger
}

func NewDashboard(loader *Loader, catalog *Catalog, logger *utils.Logger) *Dashboard {
	return &Dashboard{
		loader:  loader,
		catalog: catalog,
		summary: NewSummaryService(logger),
		logger:  logger,
	}
}

func (d *Dashboard) Catalog() *Catalog { return d.catalog }

func (d *Dashboard) Summaries() *SummaryService { return d.summary }

// Table returns the cached merged table.
func (d *Dashboard) Table(ctx context.Context) (*models.MergedTable, error) {
	return d.loader.Load(ctx)
}

// WordCloud returns the topN words of all indicator labels in the table.
func (d *Dashboard) WordCloud(ctx context.Context, topN int) ([]models.WordWeight, error) {
	table, err := d.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	words := WordFrequencies(LabelText(table), topN)
	d.logger.Debug("[dashboard] word cloud: %d distinct words", len(words))
	return words, nil
}

// RegionalComparison charts one catalog indicator for countries chosen
// within a region.
func (d *Dashboard) RegionalComparison(ctx context.Context, region, indicatorLabel string, countries []string) (*ViewResult, error) {
	code, err := d.catalog.IndicatorCode(indicatorLabel)
	if err != nil {
		return nil, err
	}
	set, err := d.catalog.SelectCountries(region, countries)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf(comparisonTitle, indicatorLabel)
	view, err := d.run(ctx, set, code, title, msgNoSelection)
	if err != nil || view.NoData {
		return view, err
	}
	view.Chart = BuildTrend(view.Numeric, title)
	return view, nil
}

// LiteracyTrend charts adult literacy for Sub-Saharan countries with a
// horizontal target line.
func (d *Dashboard) LiteracyTrend(ctx context.Context, countries []string, target float64) (*ViewResult, error) {
	set, err := d.catalog.SelectCountries(RegionSubSaharan, countries)
	if err != nil {
		return nil, err
	}

	view, err := d.run(ctx, set, AdultLiteracyCode, LiteracyTitle, msgNoLiteracy)
	if err != nil || view.NoData {
		return view, err
	}
	view.Chart = BuildTrendWithTarget(view.Numeric, LiteracyTitle, target)
	view.Chart.YLabel = literacyYAxis
	if view.Chart.TargetOverlay == nil {
		d.logger.Warn("[dashboard] no valid years for %v, target line skipped", set.Codes())
	}
	return view, nil
}

func (d *Dashboard) run(ctx context.Context, set models.CountrySet, code, title, emptyMsg string) (*ViewResult, error) {
	table, err := d.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	view := &ViewResult{Title: title}
	view.Series = Filter(table, set, code)
	if view.Series.Empty() {
		view.NoData = true
		view.Message = emptyMsg
		d.logger.Info("[dashboard] %s: 0 rows for %v", code, set.Codes())
		return view, nil
	}

	view.Numeric = Prepare(view.Series)
	view.Summary = d.summary.Generate(view.Numeric)
	d.logger.Info("[dashboard] %s: %d rows for %d countries", code, len(view.Series.Records), set.Len())
	return view, nil
}
