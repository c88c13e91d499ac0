package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sdg-dashboard/models"
)

// CSVSource reads the two input tables from CSV files on local storage.
type CSVSource struct {
	valuesPath string
	labelsPath string
}

// NewCSVSource returns a source for the given values and labels files.
// Files are opened lazily on each read.
func NewCSVSource(valuesPath, labelsPath string) *CSVSource {
	return &CSVSource{valuesPath: valuesPath, labelsPath: labelsPath}
}

func (s *CSVSource) ReadValues(ctx context.Context) (*models.RawTable, error) {
	return readCSVFile(ctx, s.valuesPath)
}

func (s *CSVSource) ReadLabels(ctx context.Context) (*models.RawTable, error) {
	return readCSVFile(ctx, s.labelsPath)
}

func (s *CSVSource) Close() error { return nil }

func readCSVFile(ctx context.Context, path string) (*models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	t.Name = path
	return t, nil
}

// errOpenQuote reports a quoted field that swallowed a line break. None of
// the input columns are multi-line, so this only happens when a stray quote
// opens a field that the reader then runs across the following rows.
var errOpenQuote = errors.New("quoted field runs across lines (unbalanced quote)")

// ReadCSV decodes a header row followed by data rows. Bare quotes inside
// unquoted fields are kept as text; any row the reader cannot decode fails
// the whole read so no row is ever dropped silently.
func ReadCSV(ctx context.Context, r io.Reader) (*models.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	t := &models.RawTable{Header: header}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, field := range row {
			if strings.ContainsRune(field, '\n') {
				line, col := reader.FieldPos(i)
				return nil, &csv.ParseError{StartLine: line, Line: line, Column: col, Err: errOpenQuote}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
