package services

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"sdg-dashboard/models"
	"sdg-dashboard/storage"
	"sdg-dashboard/utils"
)

const valuesCSV = `country_id,indicator_id,year,value,magnitude
ETH,LR.AG15T99,2015,45.0,
ETH,LR.AG15T99,2020,52.0,
KEN,LR.AG15T99,2020,78.0,
KEN,CR.1,2018,60.5,
BRA,CR.1,2019,90.1,
NGA,CR.2,n/a,33,
`

const labelsCSV = `indicator_id,indicator_label_en
LR.AG15T99,Adult literacy rate population 15+ years both sexes
CR.1,Completion rate primary education both sexes
`

func newTestLogger() *utils.Logger { return utils.Discard() }

// writeFixtures writes the two CSV files into a temp dir and returns a
// CSVSource over them.
func writeFixtures(t *testing.T, values, labels string) *storage.CSVSource {
	t.Helper()
	dir := t.TempDir()
	vp := filepath.Join(dir, "SDG_DATA_NATIONAL.csv")
	lp := filepath.Join(dir, "SDG_LABEL.csv")
	if err := os.WriteFile(vp, []byte(values), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lp, []byte(labels), 0644); err != nil {
		t.Fatal(err)
	}
	return storage.NewCSVSource(vp, lp)
}

// fakeSource serves fresh copies of in-memory tables and counts reads.
type fakeSource struct {
	values    *models.RawTable
	labels    *models.RawTable
	valuesErr error
	reads     int64
}

func (f *fakeSource) ReadValues(ctx context.Context) (*models.RawTable, error) {
	atomic.AddInt64(&f.reads, 1)
	if f.valuesErr != nil {
		return nil, f.valuesErr
	}
	return cloneTable(f.values), nil
}

func (f *fakeSource) ReadLabels(ctx context.Context) (*models.RawTable, error) {
	atomic.AddInt64(&f.reads, 1)
	return cloneTable(f.labels), nil
}

func (f *fakeSource) Close() error { return nil }

func cloneTable(t *models.RawTable) *models.RawTable {
	c := &models.RawTable{Name: t.Name, Header: append([]string(nil), t.Header...)}
	for _, r := range t.Rows {
		c.Rows = append(c.Rows, append([]string(nil), r...))
	}
	return c
}

func literacyTable() *models.MergedTable {
	label := "Adult literacy rate"
	return &models.MergedTable{
		Records: []models.IndicatorRecord{
			{CountryCode: "ETH", IndicatorID: "LR.AG15T99", Year: "2015", Value: fptr(45.0), IndicatorLabel: &label},
			{CountryCode: "ETH", IndicatorID: "LR.AG15T99", Year: "2020", Value: fptr(52.0), IndicatorLabel: &label},
			{CountryCode: "KEN", IndicatorID: "LR.AG15T99", Year: "2020", Value: fptr(78.0), IndicatorLabel: &label},
			{CountryCode: "KEN", IndicatorID: "CR.1", Year: "2018", Value: fptr(60.5)},
			{CountryCode: "NGA", IndicatorID: "LR.AG15T99", Year: "2019", Value: fptr(62.0), IndicatorLabel: &label},
		},
	}
}

func fptr(f float64) *float64 { return &f }
