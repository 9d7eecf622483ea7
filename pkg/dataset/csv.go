// Package dataset reads tabular data into models.Frame values.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dukex/cognipipe/pkg/models"
)

// DefaultMaxBytes bounds how much of a CSV file is read.
const DefaultMaxBytes int64 = 64 << 20

var (
	ErrTooLarge = errors.New("dataset exceeds the read limit")
	ErrEmpty    = errors.New("dataset has no header row")
)

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string, maxBytes int64) (*models.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	frame, err := ReadCSV(file, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	return frame, nil
}

// ReadCSV parses a CSV stream with a header row. Column kinds are inferred
// from the values; empty cells are missing values. At most maxBytes are
// consumed, a non-positive limit means DefaultMaxBytes.
func ReadCSV(r io.Reader, maxBytes int64) (*models.Frame, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	limited := &limitedReader{r: r, remaining: maxBytes}

	reader := csv.NewReader(limited)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}

	if err != nil {
		return nil, err
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	raw := make([][]string, 0, 64)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		raw = append(raw, record)
	}

	return fromStrings(names, raw)
}

// fromStrings infers a kind per column and converts every cell.
func fromStrings(names []string, raw [][]string) (*models.Frame, error) {
	columns := make([]models.Column, len(names))

	for c, name := range names {
		var kind models.Kind
		for _, record := range raw {
			kind = widen(kind, record[c])
		}

		if kind == "" {
			// A column with no values at all is numeric with every cell missing.
			kind = models.KindFloat
		}

		columns[c] = models.Column{Name: name, Kind: kind}
	}

	rows := make([][]any, len(raw))
	for i, record := range raw {
		row := make([]any, len(names))
		for c := range names {
			row[c] = parseCell(record[c], columns[c].Kind)
		}

		rows[i] = row
	}

	return models.NewFrame(columns, rows)
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// One extra byte tells a stream that ends exactly at the limit apart from a longer one.
		var probe [1]byte

		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, ErrTooLarge
		}

		return 0, err
	}

	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}

	n, err := l.r.Read(p)
	l.remaining -= int64(n)

	return n, err
}
