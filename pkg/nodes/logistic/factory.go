// Package logistic provides the logistic regression node factory for registry integration.
package logistic

import (
	"context"
	"errors"
	"slices"

	"github.com/dukex/cognipipe/pkg/params"
	"github.com/dukex/cognipipe/pkg/protocol"
)

const (
	NodeID        = "LogisticModel"
	DefaultTarget = "Survived"
)

// DefaultFeatures are the Titanic columns used when a step names none.
var DefaultFeatures = []string{"Pclass", "Sex", "Age", "Fare", "Embarked"}

// LogisticNodeFactory creates LogisticNode instances.
type LogisticNodeFactory struct{}

// NewLogisticNodeFactory creates a new factory instance.
func NewLogisticNodeFactory() protocol.NodeFactory {
	return &LogisticNodeFactory{}
}

// Create creates a new LogisticNode instance.
func (f *LogisticNodeFactory) Create(ctx context.Context, raw map[string]any) (protocol.Node, error) {
	config := Config{
		Target:   DefaultTarget,
		Features: slices.Clone(DefaultFeatures),
	}

	if err := params.Decode(NodeID, f.Schema(), raw, &config); err != nil {
		return nil, err
	}

	if slices.Contains(config.Features, config.Target) {
		return nil, protocol.NewInvalidParameterError(NodeID, "target", errors.New("target cannot also be a feature"))
	}

	return &LogisticNode{config: config}, nil
}

// ID returns the factory ID.
func (f *LogisticNodeFactory) ID() string {
	return NodeID
}

// Name returns the factory name.
func (f *LogisticNodeFactory) Name() string {
	return "Logistic Model"
}

// Description returns the factory description.
func (f *LogisticNodeFactory) Description() string {
	return "Trains a binary logistic regression on the input table with a fixed 80/20 split and reports test accuracy"
}

// Schema returns the JSON schema for LogisticModel parameters.
func (f *LogisticNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Binary column to predict",
				"default":     DefaultTarget,
			},
			"features": map[string]any{
				"type":        "array",
				"description": "Columns used as predictors; string columns are one-hot encoded",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"minItems":    1,
				"uniqueItems": true,
				"default":     DefaultFeatures,
			},
		},
		"additionalProperties": false,
		"examples": []map[string]any{
			{"target": "Survived", "features": []string{"Pclass", "Sex", "Age"}},
		},
	}
}
