package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"sdg-dashboard/models"
)

const excelSheet = "Series"

// ExcelWriter exports filtered series rows to an .xlsx workbook. The file
// is written to disk on Close.
type ExcelWriter struct {
	mu   sync.Mutex
	path string
	file *excelize.File
	row  int
}

// NewExcelWriter prepares a workbook with a single "Series" sheet and a
// header row.
func NewExcelWriter(path string) (*ExcelWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(seriesHeader))
	for i, h := range seriesHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}

	return &ExcelWriter{path: path, file: f, row: 1}, nil
}

// Write appends every record of the series. Values are stored as numbers;
// missing values and labels are left blank.
func (e *ExcelWriter) Write(series models.FilteredSeries) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range series.Records {
		e.row++
		row := []interface{}{r.CountryCode, r.IndicatorID, r.Year, nil, nil}
		if r.Value != nil {
			row[3] = *r.Value
		}
		if r.IndicatorLabel != nil {
			row[4] = *r.IndicatorLabel
		}

		cell, err := excelize.CoordinatesToCellName(1, e.row)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := e.file.SetSheetRow(excelSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", e.row, err)
		}
	}
	return nil
}

// Close saves the workbook and releases it.
func (e *ExcelWriter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.file.SaveAs(e.path); err != nil {
		_ = e.file.Close()
		return fmt.Errorf("xlsx: save %q: %w", e.path, err)
	}
	return e.file.Close()
}
