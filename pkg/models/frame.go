// Package models defines the data shapes shared by nodes, the pipeline executor and the API.
package models

import (
	"errors"
	"fmt"
)

// Kind is the inferred type of a Frame column.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindString Kind = "string"

	// KindMixed columns hold cells of different kinds, such as summary
	// statistics of a string column.
	KindMixed Kind = "mixed"
)

// IsNumeric reports whether values of the kind take part in numeric statistics.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

var (
	ErrRowWidth        = errors.New("row width does not match column count")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Column describes one named column of a Frame.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Record is a single row keyed by column name.
type Record map[string]any

// Frame is a rectangular table of named columns and rows.
//
// Cells hold nil (missing), int64, float64, bool or string. A Frame is not
// modified after construction; every transformation returns a new Frame.
type Frame struct {
	columns []Column
	index   map[string]int
	rows    [][]any
}

// NewFrame builds a Frame, checking column uniqueness and row widths.
func NewFrame(columns []Column, rows [][]any) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, exists := index[c.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}

		index[c.Name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrRowWidth, i, len(row), len(columns))
		}
	}

	return &Frame{
		columns: columns,
		index:   index,
		rows:    rows,
	}, nil
}

// Columns returns a copy of the column descriptors.
func (f *Frame) Columns() []Column {
	out := make([]Column, len(f.columns))
	copy(out, f.columns)

	return out
}

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}

	return names
}

// Column returns the descriptor and position of the named column.
func (f *Frame) Column(name string) (Column, int, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, -1, false
	}

	return f.columns[i], i, true
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns the raw cells of row i. Callers must not modify the slice.
func (f *Frame) Row(i int) []any {
	return f.rows[i]
}

// Value returns the cell at row i of the named column.
func (f *Frame) Value(i int, name string) (any, bool) {
	c, ok := f.index[name]
	if !ok {
		return nil, false
	}

	return f.rows[i][c], true
}

// Values returns every cell of the named column, in row order.
func (f *Frame) Values(name string) ([]any, bool) {
	c, ok := f.index[name]
	if !ok {
		return nil, false
	}

	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[c]
	}

	return out, true
}

// Where returns a Frame holding the rows for which keep returns true.
func (f *Frame) Where(keep func(i int) (bool, error)) (*Frame, error) {
	rows := make([][]any, 0, len(f.rows))
	for i, row := range f.rows {
		ok, err := keep(i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		if ok {
			rows = append(rows, row)
		}
	}

	return &Frame{columns: f.columns, index: f.index, rows: rows}, nil
}

// Select returns a Frame restricted to the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	positions := make([]int, len(names))
	columns := make([]Column, len(names))

	for i, name := range names {
		c, ok := f.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}

		positions[i] = c
		columns[i] = f.columns[c]
	}

	rows := make([][]any, len(f.rows))
	for i, row := range f.rows {
		projected := make([]any, len(positions))
		for j, p := range positions {
			projected[j] = row[p]
		}

		rows[i] = projected
	}

	return NewFrame(columns, rows)
}

// Record returns row i keyed by column name.
func (f *Frame) Record(i int) Record {
	rec := make(Record, len(f.columns))
	for j, c := range f.columns {
		rec[c.Name] = f.rows[i][j]
	}

	return rec
}

// Head returns at most n leading rows as records.
func (f *Frame) Head(n int) []Record {
	if n > len(f.rows) {
		n = len(f.rows)
	}

	if n < 0 {
		n = 0
	}

	out := make([]Record, n)
	for i := range n {
		out[i] = f.Record(i)
	}

	return out
}

// Records returns every row as a record.
func (f *Frame) Records() []Record {
	return f.Head(len(f.rows))
}
