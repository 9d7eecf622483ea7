package stats

import "slices"

// NumericSummary holds the statistics reported for a numeric column.
type NumericSummary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// SummarizeNumeric describes the non-missing values of a numeric column.
func SummarizeNumeric(x []float64) NumericSummary {
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	lo, hi := MinMax(sorted)

	return NumericSummary{
		Count: len(x),
		Mean:  Mean(x),
		Std:   Std(x),
		Min:   lo,
		Q25:   Quantile(sorted, 0.25),
		Q50:   Quantile(sorted, 0.5),
		Q75:   Quantile(sorted, 0.75),
		Max:   hi,
	}
}

// CategoricalSummary holds the statistics reported for a non-numeric column.
type CategoricalSummary struct {
	Count  int
	Unique int
	Top    any
	Freq   int
}

// SummarizeCategorical describes the non-missing values of a string or bool column.
func SummarizeCategorical(values []any) CategoricalSummary {
	freq := NewFrequency[any]()
	for _, v := range values {
		freq.Add(v)
	}

	top, n, _ := freq.Top()

	return CategoricalSummary{
		Count:  len(values),
		Unique: freq.Unique(),
		Top:    top,
		Freq:   n,
	}
}
