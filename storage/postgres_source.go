package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"sdg-dashboard/models"
	"sdg-dashboard/utils"
)

// PostgresSource reads the two input tables from PostgreSQL.
type PostgresSource struct {
	db          *sql.DB
	valuesTable string
	labelsTable string
}

// NewPostgresSource opens a connection to PostgreSQL, waits for it to answer
// a ping and returns a ready-to-use PostgresSource.
func NewPostgresSource(ctx context.Context, dsn, valuesTable, labelsTable string, retry *utils.RetryConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(2)

	if err := retry.Do(ctx, "postgres-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresSource{db: db, valuesTable: valuesTable, labelsTable: labelsTable}, nil
}

func (ps *PostgresSource) ReadValues(ctx context.Context) (*models.RawTable, error) {
	return ps.fetchTable(ctx, ps.valuesTable)
}

func (ps *PostgresSource) ReadLabels(ctx context.Context) (*models.RawTable, error) {
	return ps.fetchTable(ctx, ps.labelsTable)
}

func (ps *PostgresSource) Close() error {
	return ps.db.Close()
}

// fetchTable reads every row of table as text. NULL cells become "".
func (ps *PostgresSource) fetchTable(ctx context.Context, table string) (*models.RawTable, error) {
	rows, err := ps.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("postgres: query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("postgres: columns %s: %w", table, err)
	}

	t := &models.RawTable{Name: table, Header: cols}
	cells := make([]sql.NullString, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", table, err)
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}
