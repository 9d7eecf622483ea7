// Package ml holds the small amount of machine learning the LogisticModel node needs.
package ml

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dukex/cognipipe/pkg/models"
)

var (
	ErrNoRows      = errors.New("no complete rows to train on")
	ErrNotBinary   = errors.New("target must have exactly two classes")
	ErrNoFeatures  = errors.New("at least one feature is required")
	ErrUnsupported = errors.New("unsupported feature kind")
)

// Design is a numeric feature matrix with its binary labels.
type Design struct {
	Features []string // encoded feature names, e.g. Sex_male
	X        [][]float64
	Y        []float64
	Classes  [2]any // Classes[1] is encoded as 1
}

// Encode drops rows missing any of the features or the target, one-hot
// encodes string columns (first category in sorted order dropped) and maps
// the target's two classes to 0 and 1.
func Encode(frame *models.Frame, features []string, target string) (*Design, error) {
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}

	selected, err := frame.Select(append(slices.Clone(features), target)...)
	if err != nil {
		return nil, err
	}

	complete, err := selected.Where(func(i int) (bool, error) {
		return !slices.Contains(selected.Row(i), nil), nil
	})
	if err != nil {
		return nil, err
	}

	if complete.Len() == 0 {
		return nil, ErrNoRows
	}

	d := &Design{X: make([][]float64, complete.Len())}

	for _, name := range features {
		col, pos, _ := complete.Column(name)

		encoders, names, err := encoderFor(col, complete, pos)
		if err != nil {
			return nil, err
		}

		d.Features = append(d.Features, names...)

		for i := range complete.Len() {
			for _, enc := range encoders {
				d.X[i] = append(d.X[i], enc(complete.Row(i)[pos]))
			}
		}
	}

	_, tpos, _ := complete.Column(target)

	classes := distinct(complete, tpos)
	if len(classes) != 2 {
		return nil, fmt.Errorf("%w: %q has %d", ErrNotBinary, target, len(classes))
	}

	d.Classes = [2]any{classes[0], classes[1]}
	d.Y = make([]float64, complete.Len())

	for i := range complete.Len() {
		if complete.Row(i)[tpos] == classes[1] {
			d.Y[i] = 1
		}
	}

	return d, nil
}

type encoder func(v any) float64

func encoderFor(col models.Column, frame *models.Frame, pos int) ([]encoder, []string, error) {
	switch col.Kind {
	case models.KindInt, models.KindFloat:
		return []encoder{toFloat}, []string{col.Name}, nil

	case models.KindBool:
		return []encoder{func(v any) float64 {
			if v.(bool) {
				return 1
			}

			return 0
		}}, []string{col.Name}, nil

	case models.KindString:
		categories := distinct(frame, pos)

		var (
			encoders []encoder
			names    []string
		)

		for _, category := range categories[1:] {
			encoders = append(encoders, func(v any) float64 {
				if v == category {
					return 1
				}

				return 0
			})
			names = append(names, fmt.Sprintf("%s_%v", col.Name, category))
		}

		return encoders, names, nil
	}

	return nil, nil, fmt.Errorf("%w %q for column %q", ErrUnsupported, col.Kind, col.Name)
}

// distinct returns the sorted distinct values of a column without missing cells.
func distinct(frame *models.Frame, pos int) []any {
	seen := map[any]bool{}

	var out []any

	for i := range frame.Len() {
		v := frame.Row(i)[pos]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	slices.SortFunc(out, compareCells)

	return out
}

func compareCells(a, b any) int {
	switch x := a.(type) {
	case string:
		y, _ := b.(string)

		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}

		return 0
	case bool:
		y, _ := b.(bool)

		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}

		return 1
	}

	fa, fb := toFloat(a), toFloat(b)

	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}

	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}

	return 0
}
