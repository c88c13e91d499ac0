package services

import (
	"encoding/json"
	"reflect"
	"testing"

	"sdg-dashboard/models"
)

func TestFilterMatchesPredicate(t *testing.T) {
	table := literacyTable()
	countries := models.NewCountrySet("test", []string{"ETH", "KEN"})

	got := Filter(table, countries, "LR.AG15T99")
	if len(got.Records) != 3 {
		t.Fatalf("rows: got %d, want 3", len(got.Records))
	}
	if len(got.Records) > table.Len() {
		t.Error("filtered rows cannot exceed input rows")
	}
	for _, r := range got.Records {
		if !countries.Contains(r.CountryCode) || r.IndicatorID != "LR.AG15T99" {
			t.Errorf("row violates predicate: %+v", r)
		}
	}
	if got.Empty() {
		t.Error("Empty() should be false")
	}
}

func TestFilterUnknownIndicatorIsEmpty(t *testing.T) {
	got := Filter(literacyTable(), models.NewCountrySet("test", []string{"ETH", "KEN"}), "ZZ.999")
	if !got.Empty() {
		t.Errorf("expected no rows, got %d", len(got.Records))
	}
	if got.IndicatorID != "ZZ.999" {
		t.Errorf("IndicatorID: got %q", got.IndicatorID)
	}
}

func TestFilterNilTable(t *testing.T) {
	got := Filter(nil, models.NewCountrySet("x", []string{"ETH"}), "CR.1")
	if !got.Empty() {
		t.Error("nil table should filter to empty")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"2015", 2015, true},
		{" 2020 ", 2020, true},
		{"2019.0", 2019, true},
		{"45.5", 45.5, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"20l5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseNumber(%q) = (%v, %v); want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPrepareSortsAndComputesExtent(t *testing.T) {
	series := models.FilteredSeries{
		IndicatorID: "LR.AG15T99",
		Records: []models.IndicatorRecord{
			{CountryCode: "KEN", Year: "2020", Value: fptr(78)},
			{CountryCode: "ETH", Year: "bad", Value: fptr(1)},
			{CountryCode: "ETH", Year: "2020", Value: fptr(52)},
			{CountryCode: "ETH", Year: "2015", Value: fptr(45)},
		},
	}

	got := Prepare(series)
	if !got.HasYearRange || got.MinYear != 2015 || got.MaxYear != 2020 {
		t.Errorf("extent: got [%v, %v] has=%v, want [2015, 2020]", got.MinYear, got.MaxYear, got.HasYearRange)
	}

	var order []string
	for _, p := range got.Points {
		y := "missing"
		if p.Year != nil {
			y = fmtNum(*p.Year)
		}
		order = append(order, p.CountryCode+":"+y)
	}
	want := []string{"ETH:2015", "ETH:2020", "ETH:missing", "KEN:2020"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestPrepareAllYearsInvalid(t *testing.T) {
	series := models.FilteredSeries{
		Records: []models.IndicatorRecord{
			{CountryCode: "ETH", Year: "unknown", Value: fptr(1)},
			{CountryCode: "KEN", Year: "", Value: fptr(2)},
		},
	}

	got := Prepare(series)
	if got.HasYearRange {
		t.Error("HasYearRange should be false when no year parses")
	}
	if len(got.Points) != 2 {
		t.Errorf("points: got %d, want 2 (invalid years are kept as missing)", len(got.Points))
	}

	spec := BuildTrendWithTarget(got, LiteracyTitle, 90)
	if spec.TargetOverlay != nil {
		t.Errorf("overlay should be omitted, got %+v", spec.TargetOverlay)
	}
}

func TestBuildTrendWithTargetScenario(t *testing.T) {
	series := Filter(literacyTable(), models.NewCountrySet("t", []string{"ETH", "KEN"}), "LR.AG15T99")
	spec := BuildTrendWithTarget(Prepare(series), LiteracyTitle, 90)

	want := &models.TargetOverlay{YValue: 90, XMin: 2015, XMax: 2020, Label: "90% target", Color: "red", Dash: "dash"}
	if !reflect.DeepEqual(spec.TargetOverlay, want) {
		t.Errorf("overlay: got %+v, want %+v", spec.TargetOverlay, want)
	}
	if len(spec.Series) != 2 {
		t.Fatalf("series: got %d, want 2", len(spec.Series))
	}
	if spec.Series[0].Name != "ETH" || len(spec.Series[0].Points) != 2 {
		t.Errorf("ETH series: %+v", spec.Series[0])
	}
	if spec.Series[1].Name != "KEN" || spec.Series[1].Points[0] != (models.ChartPoint{X: 2020, Y: 78}) {
		t.Errorf("KEN series: %+v", spec.Series[1])
	}
	if spec.Series[0].Color == spec.Series[1].Color {
		t.Error("each country should get its own color")
	}
}

func TestBuildTrendConfiguration(t *testing.T) {
	spec := BuildTrend(models.NumericSeries{}, "CR.1 Over Time")

	if spec.XField != "year" || spec.YField != "value" || spec.GroupField != "country_code" {
		t.Errorf("fields: %s/%s/%s", spec.XField, spec.YField, spec.GroupField)
	}
	if !spec.Markers || !spec.RangeSlider.Visible {
		t.Error("markers and range slider should be enabled")
	}
	if spec.TargetOverlay != nil {
		t.Error("BuildTrend must not add an overlay")
	}

	got, err := json.Marshal(spec.RangeSelector)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"count":5,"label":"Last 5y","step":"year","stepmode":"backward"},` +
		`{"count":10,"label":"Last 10y","step":"year","stepmode":"backward"},` +
		`{"label":"All","step":"all"}]`
	if string(got) != want {
		t.Errorf("range selector:\n got %s\nwant %s", got, want)
	}
}

func TestBuildTrendSkipsUnplottablePoints(t *testing.T) {
	series := Prepare(models.FilteredSeries{
		Records: []models.IndicatorRecord{
			{CountryCode: "ETH", Year: "2015", Value: nil},
			{CountryCode: "ETH", Year: "x", Value: fptr(3)},
			{CountryCode: "ETH", Year: "2016", Value: fptr(4)},
		},
	})
	spec := BuildTrend(series, "t")
	if len(spec.Series) != 1 || len(spec.Series[0].Points) != 1 {
		t.Fatalf("expected one plottable point, got %+v", spec.Series)
	}
}

func TestTargetLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{90, "90% target"},
		{92.5, "92.5% target"},
		{100, "100% target"},
	}
	for _, tt := range tests {
		if got := TargetLabel(tt.in); got != tt.want {
			t.Errorf("TargetLabel(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
