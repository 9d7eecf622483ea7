// Package stats implements the descriptive statistics behind the Describe node.
//
// Functions return NaN when a statistic is undefined for the input, such as
// the mean of no values or the sample deviation of a single value.
package stats

import (
	"math"
	"slices"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	return Sum(x) / float64(len(x))
}

// Sum returns the sum of all elements in the slice.
func Sum(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v
	}

	return s
}

// Variance computes the sample variance (n-1 denominator) in two passes.
func Variance(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return math.NaN()
	}

	mean := Mean(x)

	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}

	return ss / float64(n-1)
}

// Std computes the sample standard deviation.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}

	return slices.Min(x), slices.Max(x)
}

// Quantile returns the q-th quantile (0 <= q <= 1) of an ascending slice,
// interpolating linearly between the closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}

	if q <= 0 {
		return sorted[0]
	}

	if q >= 1 {
		return sorted[n-1]
	}

	rank := q * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)

	if upper >= n {
		return sorted[lower]
	}

	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Frequency counts occurrences of comparable values.
type Frequency[T comparable] struct {
	counts map[T]int
	order  []T
}

func NewFrequency[T comparable]() *Frequency[T] {
	return &Frequency[T]{counts: map[T]int{}}
}

// Add records one occurrence of v.
func (f *Frequency[T]) Add(v T) {
	if _, seen := f.counts[v]; !seen {
		f.order = append(f.order, v)
	}

	f.counts[v]++
}

// Unique returns the number of distinct values.
func (f *Frequency[T]) Unique() int {
	return len(f.order)
}

// Top returns the most frequent value and its count. Ties go to the value
// seen first. ok is false when nothing was added.
func (f *Frequency[T]) Top() (top T, freq int, ok bool) {
	for _, v := range f.order {
		if c := f.counts[v]; c > freq {
			top, freq, ok = v, c, true
		}
	}

	return top, freq, ok
}
