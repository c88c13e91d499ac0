package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"sdg-dashboard/models"
)

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	loader := NewLoader(writeFixtures(t, valuesCSV, labelsCSV), newTestLogger(), 2)
	return NewDashboard(loader, DefaultCatalog(), newTestLogger())
}

func TestDashboardLiteracyTrend(t *testing.T) {
	d := newTestDashboard(t)

	view, err := d.LiteracyTrend(context.Background(), []string{"ETH", "KEN"}, 90)
	if err != nil {
		t.Fatalf("LiteracyTrend: %v", err)
	}
	if view.NoData {
		t.Fatal("expected data")
	}
	if len(view.Series.Records) != 3 {
		t.Errorf("rows: got %d, want 3", len(view.Series.Records))
	}
	if view.Chart.Title != LiteracyTitle || view.Chart.YLabel != "Literacy Rate (%)" {
		t.Errorf("chart labels: %q / %q", view.Chart.Title, view.Chart.YLabel)
	}
	o := view.Chart.TargetOverlay
	if o == nil || o.XMin != 2015 || o.XMax != 2020 || o.Label != "90% target" {
		t.Errorf("overlay: %+v", o)
	}
	if view.Summary == nil || len(view.Summary.Countries) != 2 {
		t.Errorf("summary: %+v", view.Summary)
	}
}

func TestDashboardLiteracyNoData(t *testing.T) {
	d := newTestDashboard(t)

	view, err := d.LiteracyTrend(context.Background(), []string{"MLI"}, 90)
	if err != nil {
		t.Fatalf("LiteracyTrend: %v", err)
	}
	if !view.NoData || view.Chart != nil {
		t.Errorf("expected no-data state, got %+v", view)
	}
	if view.Message != "No data for these countries in the chosen indicator." {
		t.Errorf("message: got %q", view.Message)
	}
}

func TestDashboardRegionalComparison(t *testing.T) {
	d := newTestDashboard(t)

	view, err := d.RegionalComparison(context.Background(), RegionSouthAmerica, PrimaryComplLabel, []string{"BRA", "ARG"})
	if err != nil {
		t.Fatalf("RegionalComparison: %v", err)
	}
	if view.NoData {
		t.Fatal("expected BRA CR.1 data")
	}
	if view.Chart.Title != "Primary Completion (CR.1) Over Time" {
		t.Errorf("title: %q", view.Chart.Title)
	}
	if view.Chart.TargetOverlay != nil {
		t.Error("comparison chart has no target line")
	}
	if len(view.Chart.Series) != 1 || view.Chart.Series[0].Name != "BRA" {
		t.Errorf("series: %+v", view.Chart.Series)
	}
}

func TestDashboardRegionalComparisonErrors(t *testing.T) {
	d := newTestDashboard(t)
	ctx := context.Background()

	var uk *UnknownKeyError
	if _, err := d.RegionalComparison(ctx, "Atlantis", PrimaryComplLabel, []string{"BRA"}); !errors.As(err, &uk) {
		t.Errorf("unknown region: got %v", err)
	}
	if _, err := d.RegionalComparison(ctx, RegionSouthAmerica, "Nope", []string{"BRA"}); !errors.As(err, &uk) {
		t.Errorf("unknown indicator: got %v", err)
	}
	if _, err := d.RegionalComparison(ctx, RegionSouthAmerica, PrimaryComplLabel, nil); !errors.Is(err, ErrNoCountries) {
		t.Errorf("empty selection: got %v", err)
	}
}

func TestDashboardWordCloud(t *testing.T) {
	d := newTestDashboard(t)

	words, err := d.WordCloud(context.Background(), 3)
	if err != nil {
		t.Fatalf("WordCloud: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("words: got %d, want 3", len(words))
	}
	// "both", "rate" and "sexes" occur in every labelled row; ties sort alphabetically.
	if words[0] != (models.WordWeight{Word: "both", Count: 5}) {
		t.Errorf("top word: %+v", words[0])
	}
}

func TestWordFrequencies(t *testing.T) {
	got := WordFrequencies("The rate of the Rate, rate 2015 a years years", 0)
	want := []models.WordWeight{{Word: "rate", Count: 3}, {Word: "years", Count: 2}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLabelTextSkipsMissing(t *testing.T) {
	text := LabelText(literacyTable())
	if strings.Count(text, "Adult literacy rate") != 4 {
		t.Errorf("label text: %q", text)
	}
	if LabelText(nil) != "" {
		t.Error("nil table should give empty text")
	}
}

func TestSummaryGenerate(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	series := Prepare(Filter(literacyTable(), models.NewCountrySet("t", []string{"ETH", "KEN"}), "LR.AG15T99"))

	r := svc.Generate(series)
	if r.TotalPoints != 3 || len(r.Countries) != 2 {
		t.Fatalf("report: %+v", r)
	}
	eth := r.Countries[0]
	if eth.CountryCode != "ETH" || eth.FirstYear != 2015 || eth.LatestYear != 2020 || eth.Change != 7 {
		t.Errorf("ETH summary: %+v", eth)
	}
	if eth.MinValue != 45 || eth.MaxValue != 52 || eth.Points != 2 {
		t.Errorf("ETH min/max: %+v", eth)
	}
}

func TestSummaryCountsMissing(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	series := Prepare(models.FilteredSeries{
		Records: []models.IndicatorRecord{
			{CountryCode: "ETH", Year: "x", Value: fptr(1)},
			{CountryCode: "ETH", Year: "2015", Value: nil},
		},
	})

	r := svc.Generate(series)
	if r.MissingYear != 1 || r.MissingVal != 1 || len(r.Countries) != 0 {
		t.Errorf("report: %+v", r)
	}

	var buf bytes.Buffer
	svc.Print(&buf, "Test", r)
	if !strings.Contains(buf.String(), "No chartable points") {
		t.Errorf("print output: %q", buf.String())
	}
}

func TestSummaryPrintTable(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	series := Prepare(Filter(literacyTable(), models.NewCountrySet("t", []string{"ETH"}), "LR.AG15T99"))

	var buf bytes.Buffer
	svc.Print(&buf, "Literacy", svc.Generate(series))
	out := buf.String()
	for _, want := range []string{"ETH", "45 (2015)", "52 (2020)", "+7.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryEmptyInput(t *testing.T) {
	r := NewSummaryService(newTestLogger()).Generate(models.NumericSeries{})
	if r.TotalPoints != 0 || len(r.Countries) != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
}
