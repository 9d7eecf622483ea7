package describe

import (
	"context"
	"errors"
	"math"

	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
	"github.com/dukex/cognipipe/pkg/stats"
)

// StatisticColumn labels the rows of a summary table.
const StatisticColumn = "statistic"

// Summary row labels, in output order.
const (
	StatCount  = "count"
	StatUnique = "unique"
	StatTop    = "top"
	StatFreq   = "freq"
	StatMean   = "mean"
	StatStd    = "std"
	StatMin    = "min"
	Stat25     = "25%"
	Stat50     = "50%"
	Stat75     = "75%"
	StatMax    = "max"
)

var (
	categoricalStats = []string{StatUnique, StatTop, StatFreq}
	numericStats     = []string{StatMean, StatStd, StatMin, Stat25, Stat50, Stat75, StatMax}
)

// DescribeNode computes per-column summary statistics.
type DescribeNode struct{}

func (n *DescribeNode) Run(ctx context.Context, input *models.Frame) (models.Result, error) {
	if input == nil {
		return models.Result{}, protocol.NewMissingInputError(NodeID)
	}

	summary, err := Summarize(input)
	if err != nil {
		return models.Result{}, protocol.NewExecutionError(NodeID, err)
	}

	return models.TableResult(summary), nil
}

// Summarize returns one row per statistic and one column per input column,
// after a leading statistic label column. Categorical rows are present only
// when some column is a string or bool column, numeric rows only when some
// column is numeric. Cells of statistics that do not apply are nil.
func Summarize(frame *models.Frame) (*models.Frame, error) {
	columns := frame.Columns()
	if len(columns) == 0 {
		return nil, errors.New("cannot describe a table without columns")
	}

	var hasNumeric, hasCategorical bool

	for _, c := range columns {
		if c.Kind.IsNumeric() {
			hasNumeric = true
		} else {
			hasCategorical = true
		}
	}

	labels := []string{StatCount}
	if hasCategorical {
		labels = append(labels, categoricalStats...)
	}

	if hasNumeric {
		labels = append(labels, numericStats...)
	}

	outColumns := make([]models.Column, 0, len(columns)+1)
	outColumns = append(outColumns, models.Column{Name: StatisticColumn, Kind: models.KindString})

	cells := make([]map[string]any, len(columns))

	for j, c := range columns {
		values, _ := frame.Values(c.Name)

		if c.Kind.IsNumeric() {
			outColumns = append(outColumns, models.Column{Name: c.Name, Kind: models.KindFloat})
			cells[j] = numericCells(values)
		} else {
			outColumns = append(outColumns, models.Column{Name: c.Name, Kind: models.KindMixed})
			cells[j] = categoricalCells(values)
		}
	}

	rows := make([][]any, len(labels))
	for i, label := range labels {
		row := make([]any, 0, len(outColumns))
		row = append(row, label)

		for j := range columns {
			row = append(row, cells[j][label])
		}

		rows[i] = row
	}

	return models.NewFrame(outColumns, rows)
}

func numericCells(values []any) map[string]any {
	xs := make([]float64, 0, len(values))

	for _, v := range values {
		switch n := v.(type) {
		case int64:
			xs = append(xs, float64(n))
		case float64:
			if !math.IsNaN(n) {
				xs = append(xs, n)
			}
		}
	}

	s := stats.SummarizeNumeric(xs)

	return map[string]any{
		StatCount: float64(s.Count),
		StatMean:  finite(s.Mean),
		StatStd:   finite(s.Std),
		StatMin:   finite(s.Min),
		Stat25:    finite(s.Q25),
		Stat50:    finite(s.Q50),
		Stat75:    finite(s.Q75),
		StatMax:   finite(s.Max),
	}
}

func categoricalCells(values []any) map[string]any {
	present := make([]any, 0, len(values))

	for _, v := range values {
		if v != nil {
			present = append(present, v)
		}
	}

	s := stats.SummarizeCategorical(present)

	out := map[string]any{
		StatCount:  int64(s.Count),
		StatUnique: int64(s.Unique),
	}

	if s.Count > 0 {
		out[StatTop] = s.Top
		out[StatFreq] = int64(s.Freq)
	}

	return out
}

// finite maps NaN, which cannot be encoded as JSON, to a missing cell.
func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return v
}
