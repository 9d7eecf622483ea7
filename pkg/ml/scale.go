package ml

import "math"

// StandardScaler centers columns to zero mean and unit variance.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// Fit learns column means and population deviations. Constant columns get a
// deviation of 1 so they transform to 0.
func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}

	r, c := len(X), len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)

	for j := range c {
		for i := range r {
			s.Mean[j] += X[i][j]
		}

		s.Mean[j] /= float64(r)

		v := 0.0
		for i := range r {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}

		s.Std[j] = math.Sqrt(v / float64(r))
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
}

// Transform returns a scaled copy of X. An unfitted scaler returns X.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if s.Mean == nil {
		return X
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}

		out[i] = scaled
	}

	return out
}
