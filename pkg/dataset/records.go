package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dukex/cognipipe/pkg/models"
)

var ErrUnsupportedShape = errors.New("table data must be a list of records or a mapping of column to values")

// FromJSON builds a Frame from decoded JSON: either a list of objects
// (one per row) or an object mapping column names to equal-length lists.
// Column order is alphabetical because JSON objects carry no order.
func FromJSON(data any) (*models.Frame, error) {
	switch v := data.(type) {
	case []any:
		records := make([]map[string]any, len(v))
		for i, item := range v {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: row %d is %T", ErrUnsupportedShape, i, item)
			}

			records[i] = rec
		}

		return FromRecords(records)
	case map[string]any:
		return fromColumnMap(v)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedShape, data)
	}
}

// FromRecords builds a Frame from row objects. Keys missing from a row are missing values.
func FromRecords(records []map[string]any) (*models.Frame, error) {
	seen := map[string]struct{}{}

	for _, rec := range records {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}

	sort.Strings(names)

	cells := make([][]any, len(names))
	for c, name := range names {
		col := make([]any, len(records))
		for i, rec := range records {
			col[i] = rec[name]
		}

		cells[c] = col
	}

	return fromColumns(names, cells)
}

func fromColumnMap(data map[string]any) (*models.Frame, error) {
	names := make([]string, 0, len(data))
	for k := range data {
		names = append(names, k)
	}

	sort.Strings(names)

	cells := make([][]any, len(names))
	length := -1

	for c, name := range names {
		list, ok := data[name].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: column %q is %T", ErrUnsupportedShape, name, data[name])
		}

		if length >= 0 && len(list) != length {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d", models.ErrRowWidth, name, len(list), length)
		}

		length = len(list)
		cells[c] = list
	}

	return fromColumns(names, cells)
}

// fromColumns normalizes JSON values column by column and transposes into rows.
func fromColumns(names []string, cells [][]any) (*models.Frame, error) {
	columns := make([]models.Column, len(names))

	for c, name := range names {
		kind, err := jsonKind(cells[c])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}

		columns[c] = models.Column{Name: name, Kind: kind}
	}

	n := 0
	if len(cells) > 0 {
		n = len(cells[0])
	}

	rows := make([][]any, n)
	for i := range n {
		row := make([]any, len(names))
		for c := range names {
			row[c] = normalize(cells[c][i], columns[c].Kind)
		}

		rows[i] = row
	}

	return models.NewFrame(columns, rows)
}

func jsonKind(values []any) (models.Kind, error) {
	var kind models.Kind

	integral := true

	for _, v := range values {
		var next models.Kind

		switch x := v.(type) {
		case nil:
			continue
		case float64:
			next = models.KindFloat
			if x != math.Trunc(x) {
				integral = false
			}
		case int, int64:
			next = models.KindFloat
		case bool:
			next = models.KindBool
		case string:
			next = models.KindString
		default:
			return "", fmt.Errorf("unsupported value of type %T", v)
		}

		switch {
		case kind == "":
			kind = next
		case kind != next:
			kind = models.KindString
		}
	}

	switch {
	case kind == "":
		return models.KindFloat, nil
	case kind == models.KindFloat && integral:
		return models.KindInt, nil
	default:
		return kind, nil
	}
}

func normalize(v any, kind models.Kind) any {
	if v == nil {
		return nil
	}

	switch kind {
	case models.KindInt:
		switch x := v.(type) {
		case float64:
			return int64(x)
		case int:
			return int64(x)
		}
	case models.KindString:
		if s, ok := v.(string); ok {
			return s
		}

		return fmt.Sprint(v)
	}

	return v
}
