package services

import (
	"context"
	"strings"
	"sync"

	"sdg-dashboard/models"
	"sdg-dashboard/storage"
	"sdg-dashboard/utils"
)

// labelSuffix disambiguates label-table columns that clash with value columns.
const labelSuffix = "_LABEL"

// Loader reads the values and labels tables once and serves the merged
// table to every view. The first successful Load is cached on the Loader;
// later calls return the same *MergedTable without touching the source.
// A failed load is not cached.
type Loader struct {
	source  storage.TableSource
	logger  *utils.Logger
	workers int

	mu    sync.Mutex
	table *models.MergedTable
}

// NewLoader creates a Loader over source. workers bounds the number of
// tables read concurrently.
func NewLoader(source storage.TableSource, logger *utils.Logger, workers int) *Loader {
	return &Loader{source: source, logger: logger, workers: workers}
}

// Load returns the merged table, reading the source on first use only.
func (l *Loader) Load(ctx context.Context) (*models.MergedTable, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.table != nil {
		return l.table, nil
	}

	table, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.table = table
	return table, nil
}

// Reset drops the cached table so the next Load re-reads the source.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.table = nil
	l.mu.Unlock()
}

func (l *Loader) load(ctx context.Context) (*models.MergedTable, error) {
	var (
		values, labels       *models.RawTable
		valuesErr, labelsErr error
	)

	pool := utils.NewWorkerPool(l.workers)
	pool.Submit(func() { values, valuesErr = l.source.ReadValues(ctx) })
	pool.Submit(func() { labels, labelsErr = l.source.ReadLabels(ctx) })
	pool.Wait()

	if valuesErr != nil {
		return nil, &DataSourceError{Source: "values", Reason: "unreadable", Err: valuesErr}
	}
	if labelsErr != nil {
		return nil, &DataSourceError{Source: "labels", Reason: "unreadable", Err: labelsErr}
	}

	normalizeHeader(values)
	normalizeHeader(labels)

	table, err := l.merge(values, labels)
	if err != nil {
		return nil, err
	}

	l.logger.Info("[loader] Merged %d value rows with %d label rows → %d records",
		len(values.Rows), len(labels.Rows), table.Len())
	return table, nil
}

// merge left-joins values with labels on INDICATOR_ID. Every values row
// yields exactly one record; the first label row per indicator wins.
func (l *Loader) merge(values, labels *models.RawTable) (*models.MergedTable, error) {
	countryCol := values.Index(models.ColCountryID)
	if countryCol < 0 {
		countryCol = values.Index(models.ColCountryCode)
	}
	if countryCol < 0 {
		return nil, &DataSourceError{Source: "values", Reason: "missing column " + models.ColCountryID}
	}
	indicatorCol, err := requireColumn("values", values, models.ColIndicatorID)
	if err != nil {
		return nil, err
	}
	yearCol, err := requireColumn("values", values, models.ColYear)
	if err != nil {
		return nil, err
	}
	valueCol, err := requireColumn("values", values, models.ColValue)
	if err != nil {
		return nil, err
	}
	labelKeyCol, err := requireColumn("labels", labels, models.ColIndicatorID)
	if err != nil {
		return nil, err
	}
	labelTextCol, err := requireColumn("labels", labels, models.ColIndicatorLabel)
	if err != nil {
		return nil, err
	}

	core := map[int]bool{countryCol: true, indicatorCol: true, yearCol: true, valueCol: true}
	valueCols := make(map[string]bool, len(values.Header))
	for _, h := range values.Header {
		valueCols[h] = true
	}

	// Extra label columns, renamed when they clash with a value column.
	type extraCol struct {
		index int
		name  string
	}
	var labelExtras []extraCol
	columns := append([]string(nil), values.Header...)
	for i, h := range labels.Header {
		if i == labelKeyCol {
			continue
		}
		name := h
		if valueCols[name] {
			name += labelSuffix
		}
		columns = append(columns, name)
		if i != labelTextCol {
			labelExtras = append(labelExtras, extraCol{index: i, name: name})
		}
	}

	type labelRow struct {
		text  *string
		extra map[string]string
	}
	byIndicator := make(map[string]labelRow, len(labels.Rows))
	duplicates := 0
	for _, row := range labels.Rows {
		key := strings.TrimSpace(cell(row, labelKeyCol))
		if _, dup := byIndicator[key]; dup {
			duplicates++
			continue
		}
		lr := labelRow{}
		if text := cell(row, labelTextCol); strings.TrimSpace(text) != "" {
			lr.text = &text
		}
		if len(labelExtras) > 0 {
			lr.extra = make(map[string]string, len(labelExtras))
			for _, ec := range labelExtras {
				lr.extra[ec.name] = cell(row, ec.index)
			}
		}
		byIndicator[key] = lr
	}
	if duplicates > 0 {
		l.logger.Warn("[loader] %d duplicate label rows ignored (first label per indicator wins)", duplicates)
	}

	records := make([]models.IndicatorRecord, 0, len(values.Rows))
	unlabeled := 0
	for _, row := range values.Rows {
		rec := models.IndicatorRecord{
			CountryCode: strings.TrimSpace(cell(row, countryCol)),
			IndicatorID: strings.TrimSpace(cell(row, indicatorCol)),
			Year:        strings.TrimSpace(cell(row, yearCol)),
		}
		if v, ok := ParseNumber(cell(row, valueCol)); ok {
			rec.Value = &v
		}

		for i, h := range values.Header {
			if core[i] {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = cell(row, i)
		}

		if lr, ok := byIndicator[rec.IndicatorID]; ok {
			rec.IndicatorLabel = lr.text
			for k, v := range lr.extra {
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[k] = v
			}
		} else {
			unlabeled++
		}
		records = append(records, rec)
	}
	if unlabeled > 0 {
		l.logger.Debug("[loader] %d value rows have no matching label", unlabeled)
	}

	return &models.MergedTable{Columns: columns, Records: records}, nil
}

func requireColumn(source string, t *models.RawTable, name string) (int, error) {
	idx := t.Index(name)
	if idx < 0 {
		return -1, &DataSourceError{Source: source, Reason: "missing column " + name}
	}
	return idx, nil
}

// normalizeHeader uppercases column names so lookups use a single casing.
func normalizeHeader(t *models.RawTable) {
	for i, h := range t.Header {
		h = strings.TrimPrefix(h, "\ufeff")
		t.Header[i] = strings.ToUpper(strings.TrimSpace(h))
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
