package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"sdg-dashboard/models"
	"sdg-dashboard/utils"
)

// PostgresWriter copies raw tables into PostgreSQL so a PostgresSource can
// serve them later. Every column is stored as TEXT; coercion happens on read.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL and waits for it to
// answer a ping.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &PostgresWriter{db: db}, nil
}

// ReplaceTable drops and recreates table with the raw table's header as
// columns, then batch-inserts all rows. Short rows are padded with NULL.
func (pw *PostgresWriter) ReplaceTable(ctx context.Context, table string, raw *models.RawTable) error {
	if len(raw.Header) == 0 {
		return fmt.Errorf("postgres: %s: no columns", table)
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, dropTableSQL(table)); err != nil {
		return fmt.Errorf("postgres: drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, raw.Header)); err != nil {
		return fmt.Errorf("postgres: create %s: %w", table, err)
	}

	batch := batchSize(len(raw.Header))
	for i := 0; i < len(raw.Rows); i += batch {
		end := i + batch
		if end > len(raw.Rows) {
			end = len(raw.Rows)
		}
		query, args := insertBatchSQL(table, raw.Header, raw.Rows[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit %s: %w", table, err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// Postgres allows at most 65535 bind parameters per statement.
const maxParams = 65535

func batchSize(cols int) int {
	n := maxParams / cols
	if n > 500 {
		n = 500
	}
	return n
}

func dropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + pq.QuoteIdentifier(table)
}

func createTableSQL(table string, header []string) string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = pq.QuoteIdentifier(h) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(table), strings.Join(cols, ", "))
}

func insertBatchSQL(table string, header []string, rows [][]string) (string, []interface{}) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = pq.QuoteIdentifier(h)
	}

	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*len(header))
	for idx, row := range rows {
		base := idx * len(header)
		ph := make([]string, len(header))
		for j := range header {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
			if j < len(row) {
				valueArgs = append(valueArgs, row[j])
			} else {
				valueArgs = append(valueArgs, nil)
			}
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table), strings.Join(cols, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}
