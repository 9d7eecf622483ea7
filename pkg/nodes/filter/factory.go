// Package filter provides the row filtering node factory for registry integration.
package filter

import (
	"context"

	"github.com/dukex/cognipipe/pkg/params"
	"github.com/dukex/cognipipe/pkg/protocol"
	"github.com/dukex/cognipipe/pkg/query"
)

const NodeID = "Filter"

// MaxQueryLength caps the query size in characters.
const MaxQueryLength = 4096

// FilterNodeFactory creates FilterNode instances.
type FilterNodeFactory struct{}

// NewFilterNodeFactory creates a new factory instance.
func NewFilterNodeFactory() protocol.NodeFactory {
	return &FilterNodeFactory{}
}

// Create parses the query once; it is bound to the input's columns at run time.
func (f *FilterNodeFactory) Create(ctx context.Context, raw map[string]any) (protocol.Node, error) {
	var config Config
	if err := params.Decode(NodeID, f.Schema(), raw, &config); err != nil {
		return nil, err
	}

	q, err := query.Parse(config.Query)
	if err != nil {
		return nil, protocol.NewInvalidParameterError(NodeID, "query", err)
	}

	return &FilterNode{query: q}, nil
}

// ID returns the factory ID.
func (f *FilterNodeFactory) ID() string {
	return NodeID
}

// Name returns the factory name.
func (f *FilterNodeFactory) Name() string {
	return "Filter"
}

// Description returns the factory description.
func (f *FilterNodeFactory) Description() string {
	return "Keeps the rows of the input table matching a boolean query over its columns"
}

// Schema returns the JSON schema for Filter parameters.
func (f *FilterNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type": "string",
				"description": "Row predicate. Supports comparisons (== != < <= > >=), " +
					"[not] in [...], and/or/not, parentheses and `backquoted` column names.",
				"minLength": 1,
				"maxLength": MaxQueryLength,
				"examples": []string{
					"Age >= 18",
					"Sex == 'female' and Pclass in [1, 2]",
					"not (Embarked == 'S' or Fare > 100)",
				},
			},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}
