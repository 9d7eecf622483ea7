// Package describe provides the summary statistics node factory for registry integration.
package describe

import (
	"context"

	"github.com/dukex/cognipipe/pkg/params"
	"github.com/dukex/cognipipe/pkg/protocol"
)

const NodeID = "Describe"

// DescribeNodeFactory creates DescribeNode instances.
type DescribeNodeFactory struct{}

// NewDescribeNodeFactory creates a new factory instance.
func NewDescribeNodeFactory() protocol.NodeFactory {
	return &DescribeNodeFactory{}
}

// Create creates a new DescribeNode instance. Describe takes no parameters.
func (f *DescribeNodeFactory) Create(ctx context.Context, raw map[string]any) (protocol.Node, error) {
	var config struct{}
	if err := params.Decode(NodeID, f.Schema(), raw, &config); err != nil {
		return nil, err
	}

	return &DescribeNode{}, nil
}

// ID returns the factory ID.
func (f *DescribeNodeFactory) ID() string {
	return NodeID
}

// Name returns the factory name.
func (f *DescribeNodeFactory) Name() string {
	return "Describe"
}

// Description returns the factory description.
func (f *DescribeNodeFactory) Description() string {
	return "Summarizes every column of the input table: count, unique, top, freq, mean, std, min, quartiles and max"
}

// Schema returns the JSON schema for Describe parameters.
func (f *DescribeNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}
