package models

// Canonical (uppercased) column names of the two input tables.
const (
	ColCountryID      = "COUNTRY_ID"
	ColCountryCode    = "COUNTRY_CODE"
	ColIndicatorID    = "INDICATOR_ID"
	ColYear           = "YEAR"
	ColValue          = "VALUE"
	ColIndicatorLabel = "INDICATOR_LABEL_EN"
)

// RawTable is a tabular source as read from disk or a database, before any
// header normalization or type coercion.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Index returns the position of column name in the header, or -1.
func (t *RawTable) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// IndicatorRecord is one (country, indicator, year) observation joined with
// its English label. Year is kept as read; coercion happens when a series
// is prepared for charting.
type IndicatorRecord struct {
	CountryCode    string            `json:"country_code"`
	IndicatorID    string            `json:"indicator_id"`
	Year           string            `json:"year"`
	Value          *float64          `json:"value"`
	IndicatorLabel *string           `json:"indicator_label"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// MergedTable is the left join of the values table with the labels table.
// It must not be mutated once built: every view shares the same instance.
type MergedTable struct {
	Columns []string
	Records []IndicatorRecord
}

// Len returns the number of rows in the table.
func (t *MergedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// CountrySet is a named, ordered, immutable set of ISO3 country codes.
type CountrySet struct {
	name  string
	codes []string
	index map[string]struct{}
}

// NewCountrySet copies codes into a new set. Duplicates keep their first position.
func NewCountrySet(name string, codes []string) CountrySet {
	s := CountrySet{
		name:  name,
		codes: make([]string, 0, len(codes)),
		index: make(map[string]struct{}, len(codes)),
	}
	for _, c := range codes {
		if _, dup := s.index[c]; dup {
			continue
		}
		s.index[c] = struct{}{}
		s.codes = append(s.codes, c)
	}
	return s
}

func (s CountrySet) Name() string { return s.name }
func (s CountrySet) Len() int     { return len(s.codes) }

// Contains reports whether code is a member of the set.
func (s CountrySet) Contains(code string) bool {
	_, ok := s.index[code]
	return ok
}

// Codes returns a copy of the members in their defined order.
func (s CountrySet) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// IndicatorCatalogEntry maps a human-readable label to an indicator code.
type IndicatorCatalogEntry struct {
	DisplayLabel string `json:"display_label" yaml:"label"`
	IndicatorID  string `json:"indicator_id" yaml:"code"`
}

// FilteredSeries is the narrowed view of a MergedTable for one indicator and
// a set of countries. It is recomputed on every selection change.
type FilteredSeries struct {
	IndicatorID string
	Countries   []string
	Records     []IndicatorRecord
}

// Empty reports the "no data for this selection" state.
func (s FilteredSeries) Empty() bool { return len(s.Records) == 0 }

// SeriesPoint is a single chartable observation. Nil fields are missing.
type SeriesPoint struct {
	CountryCode string   `json:"country_code"`
	Year        *float64 `json:"year"`
	Value       *float64 `json:"value"`
	Label       *string  `json:"label,omitempty"`
}

// NumericSeries is a FilteredSeries with years coerced to numbers and its
// year extent computed. MinYear/MaxYear are meaningful only if HasYearRange.
type NumericSeries struct {
	IndicatorID  string        `json:"indicator_id"`
	Points       []SeriesPoint `json:"points"`
	MinYear      float64       `json:"min_year"`
	MaxYear      float64       `json:"max_year"`
	HasYearRange bool          `json:"has_year_range"`
}
