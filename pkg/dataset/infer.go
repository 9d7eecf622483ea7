package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/dukex/cognipipe/pkg/models"
)

// missingMarkers are the cell spellings read as missing values, besides the empty cell.
var missingMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// isMissing also treats infinities as missing, since they have no JSON encoding.
func isMissing(cell string) bool {
	if cell == "" {
		return true
	}

	if _, ok := missingMarkers[cell]; ok {
		return true
	}

	v, err := strconv.ParseFloat(cell, 64)

	return err == nil && math.IsInf(v, 0)
}

// widen returns the narrowest kind able to hold both the current kind and cell.
// The empty kind means no value has been seen yet. Kinds only widen:
// int -> float -> string and bool -> string.
func widen(current models.Kind, cell string) models.Kind {
	cell = strings.TrimSpace(cell)
	if isMissing(cell) {
		return current
	}

	_, intErr := strconv.ParseInt(cell, 10, 64)
	_, floatErr := strconv.ParseFloat(cell, 64)
	_, isBool := parseBool(cell)

	switch current {
	case "":
		switch {
		case intErr == nil:
			return models.KindInt
		case floatErr == nil:
			return models.KindFloat
		case isBool:
			return models.KindBool
		default:
			return models.KindString
		}
	case models.KindInt:
		switch {
		case intErr == nil:
			return models.KindInt
		case floatErr == nil:
			return models.KindFloat
		default:
			return models.KindString
		}
	case models.KindFloat:
		if floatErr == nil {
			return models.KindFloat
		}

		return models.KindString
	case models.KindBool:
		if isBool {
			return models.KindBool
		}

		return models.KindString
	default:
		return models.KindString
	}
}

func parseCell(cell string, kind models.Kind) any {
	trimmed := strings.TrimSpace(cell)
	if isMissing(trimmed) {
		return nil
	}

	switch kind {
	case models.KindInt:
		v, _ := strconv.ParseInt(trimmed, 10, 64)

		return v
	case models.KindFloat:
		v, _ := strconv.ParseFloat(trimmed, 64)

		return v
	case models.KindBool:
		v, _ := parseBool(trimmed)

		return v
	default:
		return cell
	}
}

// parseBool accepts the spellings pandas recognizes.
func parseBool(cell string) (bool, bool) {
	switch cell {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}

	return false, false
}
