package models

// ChartSpec is a declarative trend chart consumed by a renderer.
// Field names of the range controls follow plotly's layout vocabulary.
type ChartSpec struct {
	XField        string         `json:"xField"`
	YField        string         `json:"yField"`
	GroupField    string         `json:"groupField"`
	Title         string         `json:"title"`
	XLabel        string         `json:"xLabel"`
	YLabel        string         `json:"yLabel"`
	GroupLabel    string         `json:"groupLabel"`
	Markers       bool           `json:"markers"`
	Series        []ChartSeries  `json:"series"`
	RangeSelector []RangeButton  `json:"rangeSelector"`
	RangeSlider   RangeSlider    `json:"rangeSlider"`
	TargetOverlay *TargetOverlay `json:"targetOverlay,omitempty"`
}

// ChartSeries is one colored line, one per group (country).
type ChartSeries struct {
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is an (x, y) pair on a trend line.
type ChartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RangeButton is a time-range shortcut. Count is the window in Step units,
// counted backward from the most recent x value; Step "all" shows everything.
type RangeButton struct {
	Count    int    `json:"count,omitempty"`
	Label    string `json:"label"`
	Step     string `json:"step"`
	StepMode string `json:"stepmode,omitempty"`
}

// RangeSlider toggles the draggable range control under the x axis.
type RangeSlider struct {
	Visible bool `json:"visible"`
}

// TargetOverlay is a horizontal dashed reference line with a text annotation
// anchored at (XMax, YValue).
type TargetOverlay struct {
	YValue float64 `json:"yValue"`
	XMin   float64 `json:"xMin"`
	XMax   float64 `json:"xMax"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Dash   string  `json:"dash"`
}

// WordWeight is one entry of a word cloud: a token and its occurrence count.
type WordWeight struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CountrySummary condenses one country's line of a NumericSeries.
type CountrySummary struct {
	CountryCode string  `json:"country_code"`
	Points      int     `json:"points"`
	FirstYear   float64 `json:"first_year"`
	LatestYear  float64 `json:"latest_year"`
	FirstValue  float64 `json:"first_value"`
	LatestValue float64 `json:"latest_value"`
	Change      float64 `json:"change"`
	MinValue    float64 `json:"min_value"`
	MaxValue    float64 `json:"max_value"`
}

// SeriesReport holds the computed summary over a prepared series.
type SeriesReport struct {
	IndicatorID string           `json:"indicator_id"`
	TotalPoints int              `json:"total_points"`
	Countries   []CountrySummary `json:"countries"`
	MissingYear int              `json:"missing_year"`
	MissingVal  int              `json:"missing_value"`
}
