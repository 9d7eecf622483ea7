package ml

import (
	"errors"
	"math"
)

// LogisticRegression is a binary classifier trained by full-batch gradient
// descent on standardized features.
type LogisticRegression struct {
	W            []float64
	B            float64
	LearningRate float64
	Epochs       int

	scaler StandardScaler
}

// NewLogisticRegression returns a model with zero initial weights, which
// keeps training deterministic.
func NewLogisticRegression(learningRate float64, epochs int) *LogisticRegression {
	return &LogisticRegression{
		LearningRate: learningRate,
		Epochs:       epochs,
	}
}

// Fit trains on X and 0/1 labels Y.
func (m *LogisticRegression) Fit(X [][]float64, Y []float64) error {
	if len(X) == 0 {
		return ErrNoRows
	}

	if len(X) != len(Y) {
		return errors.New("feature and label row counts differ")
	}

	m.scaler.Fit(X)
	Xs := m.scaler.Transform(X)

	n := float64(len(Xs))
	m.W = make([]float64, len(Xs[0]))
	m.B = 0

	gW := make([]float64, len(m.W))

	for range m.Epochs {
		clear(gW)

		gb := 0.0

		for i, row := range Xs {
			d := sigmoid(m.linear(row)) - Y[i]
			for j, xij := range row {
				gW[j] += d * xij
			}

			gb += d
		}

		for j := range m.W {
			m.W[j] -= m.LearningRate * gW[j] / n
		}

		m.B -= m.LearningRate * gb / n
	}

	return nil
}

// PredictProba returns the probability of class 1 for each row.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	Xs := m.scaler.Transform(X)

	out := make([]float64, len(Xs))
	for i, row := range Xs {
		out[i] = sigmoid(m.linear(row))
	}

	return out
}

// Predict returns 0/1 labels using a 0.5 threshold.
func (m *LogisticRegression) Predict(X [][]float64) []float64 {
	proba := m.PredictProba(X)

	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}

	return out
}

// linear computes the term w.x + b for a scaled row.
func (m *LogisticRegression) linear(row []float64) float64 {
	sum := m.B
	for j, v := range row {
		sum += m.W[j] * v
	}

	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Accuracy returns the share of predictions equal to the labels.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}

	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}

	return float64(c) / float64(len(yTrue))
}
