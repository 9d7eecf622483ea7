// Package sqltable loads PostgreSQL tables into frames.
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/dukex/cognipipe/pkg/models"
)

var (
	ErrUnknownTable  = errors.New("table does not exist")
	ErrUnknownColumn = errors.New("column does not exist")
)

// Source reads tables from one PostgreSQL database.
type Source struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the database at databaseURL and verifies the connection.
func Open(ctx context.Context, logger *slog.Logger, databaseURL string) (*Source, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Source{db: database, logger: logger.With("module", "sqltable")}, nil
}

// Close closes the database connection.
func (s *Source) Close() error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Source) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Columns returns the columns of table in ordinal order. table may be
// schema-qualified; it defaults to the public schema.
func (s *Source) Columns(ctx context.Context, table string) ([]models.Column, error) {
	schema, name := splitTable(table)

	rows, err := s.db.QueryContext(ctx,
		`SELECT column_name, data_type FROM information_schema.columns
		 WHERE table_schema = $1 AND table_name = $2
		 ORDER BY ordinal_position`,
		schema, name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []models.Column

	for rows.Next() {
		var column, dataType string
		if err := rows.Scan(&column, &dataType); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}

		columns = append(columns, models.Column{Name: column, Kind: kindFor(dataType)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	return columns, nil
}

// Read loads at most limit rows of the selected columns, all columns when
// names is empty. Identifiers are quoted, never interpolated raw.
func (s *Source) Read(ctx context.Context, table string, names []string, limit int) (*models.Frame, error) {
	available, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	columns, err := pick(available, names)
	if err != nil {
		return nil, err
	}

	stmt := selectStatement(table, columns)

	s.logger.DebugContext(ctx, "Reading table", "table", table, "columns", len(columns), "limit", limit)

	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var data [][]any

	for rows.Next() {
		raw := make([]any, len(columns))
		targets := make([]any, len(columns))

		for i := range raw {
			targets[i] = &raw[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		row := make([]any, len(columns))
		for i, v := range raw {
			row[i] = convert(v, columns[i].Kind)
		}

		data = append(data, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	return models.NewFrame(columns, data)
}

func pick(available []models.Column, names []string) ([]models.Column, error) {
	if len(names) == 0 {
		return available, nil
	}

	byName := make(map[string]models.Column, len(available))
	for _, c := range available {
		byName[c.Name] = c
	}

	out := make([]models.Column, len(names))

	for i, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}

		out[i] = c
	}

	return out, nil
}

func selectStatement(table string, columns []models.Column) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c.Name)
	}

	schema, name := splitTable(table)

	return fmt.Sprintf("SELECT %s FROM %s.%s LIMIT $1",
		strings.Join(quoted, ", "),
		pq.QuoteIdentifier(schema),
		pq.QuoteIdentifier(name),
	)
}

func splitTable(table string) (schema, name string) {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return schema, name
	}

	return "public", table
}

func kindFor(dataType string) models.Kind {
	switch dataType {
	case "smallint", "integer", "bigint":
		return models.KindInt
	case "real", "double precision", "numeric":
		return models.KindFloat
	case "boolean":
		return models.KindBool
	default:
		return models.KindString
	}
}

// convert maps a scanned driver value onto the cell types of kind.
func convert(v any, kind models.Kind) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return convert(string(x), kind)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case string:
		switch kind {
		case models.KindFloat:
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return f
			}
		case models.KindInt:
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return n
			}
		}

		return x
	case int64:
		if kind == models.KindFloat {
			return float64(x)
		}

		return x
	case float32:
		return float64(x)
	}

	return v
}
