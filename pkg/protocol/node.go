// Package protocol defines the interfaces and contracts for pluggable pipeline nodes.
package protocol

import (
	"context"

	"github.com/dukex/cognipipe/pkg/models"
)

// Node is one ephemeral unit of computation. A fresh Node is created for
// every pipeline step and discarded once Run returns.
type Node interface {
	// Run executes the node. input is nil when no earlier step produced a table.
	Run(ctx context.Context, input *models.Frame) (models.Result, error)
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create validates params and returns a new node instance configured with them
	Create(ctx context.Context, params map[string]any) (Node, error)

	// ID returns the unique name pipeline steps use to reference this node type
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for the node parameters
	Schema() map[string]any
}
