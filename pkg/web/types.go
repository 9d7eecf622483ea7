// Package web provides the HTTP handlers of the pipeline API.
package web

import "github.com/dukex/cognipipe/pkg/protocol"

// DefaultPassengerLimit is how many rows GET /passengers returns by default.
const DefaultPassengerLimit = 10

// NodeResponse describes one registered node type.
type NodeResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// TransformNodeResponse exposes a factory's metadata.
func TransformNodeResponse(factory protocol.NodeFactory) NodeResponse {
	return NodeResponse{
		ID:          factory.ID(),
		Name:        factory.Name(),
		Description: factory.Description(),
		Schema:      factory.Schema(),
	}
}

// DescribeRequest carries arbitrary table data: a list of records or a
// mapping of column names to value lists.
type DescribeRequest struct {
	Data any `json:"data" validate:"required"`
}
