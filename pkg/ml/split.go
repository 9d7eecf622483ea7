package ml

import (
	"math"
	"math/rand"
)

// TrainTestSplit shuffles rows with a seeded source and holds out
// ceil(n*testRatio) of them for testing. The same seed always yields the
// same split.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, YTrain, YTest []float64) {
	n := len(X)
	indices := rand.New(rand.NewSource(seed)).Perm(n)

	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest >= n && n > 1 {
		nTest = n - 1
	}

	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			YTest = append(YTest, Y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			YTrain = append(YTrain, Y[idx])
		}
	}

	return XTrain, XTest, YTrain, YTest
}
