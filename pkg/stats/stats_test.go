package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStd(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(x), 1e-12)
	assert.InDelta(t, 32.0/7.0, Variance(x), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), Std(x), 1e-12)
}

func TestUndefinedStatistics(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Std([]float64{3})))

	lo, hi := MinMax(nil)
	assert.True(t, math.IsNaN(lo))
	assert.True(t, math.IsNaN(hi))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantile_Linear(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Quantile(sorted, tt.q), 1e-12, "q=%v", tt.q)
	}

	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.25))
}

func TestSummarizeNumeric(t *testing.T) {
	s := SummarizeNumeric([]float64{22, 38, 26, 35, 35})

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 31.2, s.Mean, 1e-9)
	assert.InDelta(t, 6.8337, s.Std, 1e-4)
	assert.Equal(t, 22.0, s.Min)
	assert.Equal(t, 26.0, s.Q25)
	assert.Equal(t, 35.0, s.Q50)
	assert.Equal(t, 35.0, s.Q75)
	assert.Equal(t, 38.0, s.Max)
}

func TestSummarizeCategorical(t *testing.T) {
	s := SummarizeCategorical([]any{"S", "C", "S", "Q", "C"})

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3, s.Unique)
	assert.Equal(t, "S", s.Top, "ties go to the first value seen")
	assert.Equal(t, 2, s.Freq)

	empty := SummarizeCategorical(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Nil(t, empty.Top)
}
