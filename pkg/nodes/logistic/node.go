package logistic

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/cognipipe/pkg/ml"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

const (
	testRatio    = 0.2
	splitSeed    = 42
	learningRate = 0.1
	epochs       = 1000
)

// Config holds the LogisticModel parameters.
type Config struct {
	Target   string   `json:"target" validate:"required"`
	Features []string `json:"features" validate:"required,min=1,dive,required"`
}

// LogisticNode trains a classifier and reports its accuracy. Its result is
// structured, so later steps keep the table it was given.
type LogisticNode struct {
	config Config
}

func (n *LogisticNode) Run(ctx context.Context, input *models.Frame) (models.Result, error) {
	if input == nil {
		return models.Result{}, protocol.NewMissingInputError(NodeID)
	}

	if _, _, ok := input.Column(n.config.Target); !ok {
		return models.Result{}, protocol.NewInvalidParameterError(NodeID, "target", fmt.Errorf("unknown column %q", n.config.Target))
	}

	for _, name := range n.config.Features {
		if _, _, ok := input.Column(name); !ok {
			return models.Result{}, protocol.NewInvalidParameterError(NodeID, "features", fmt.Errorf("unknown column %q", name))
		}
	}

	design, err := ml.Encode(input, n.config.Features, n.config.Target)
	if errors.Is(err, ml.ErrUnsupported) {
		return models.Result{}, protocol.NewInvalidParameterError(NodeID, "features", err)
	}

	if err != nil {
		return models.Result{}, protocol.NewExecutionError(NodeID, err)
	}

	xTrain, xTest, yTrain, yTest := ml.TrainTestSplit(design.X, design.Y, testRatio, splitSeed)
	if len(xTest) == 0 {
		return models.Result{}, protocol.NewExecutionError(NodeID, fmt.Errorf("%d complete rows are too few to split", len(design.X)))
	}

	model := ml.NewLogisticRegression(learningRate, epochs)
	if err := model.Fit(xTrain, yTrain); err != nil {
		return models.Result{}, protocol.NewExecutionError(NodeID, err)
	}

	return models.StructuredResult(map[string]any{
		"accuracy": ml.Accuracy(yTest, model.Predict(xTest)),
	}), nil
}
