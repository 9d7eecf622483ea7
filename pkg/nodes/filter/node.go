package filter

import (
	"context"

	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
	"github.com/dukex/cognipipe/pkg/query"
)

// Config holds the Filter parameters.
type Config struct {
	Query string `json:"query" validate:"required,max=4096"`
}

// FilterNode keeps matching rows in their original order.
type FilterNode struct {
	query *query.Query
}

func (n *FilterNode) Run(ctx context.Context, input *models.Frame) (models.Result, error) {
	if input == nil {
		return models.Result{}, protocol.NewMissingInputError(NodeID)
	}

	match, err := n.query.Bind(input)
	if err != nil {
		return models.Result{}, protocol.NewInvalidParameterError(NodeID, "query", err)
	}

	out, err := input.Where(func(i int) (bool, error) {
		return match(input.Row(i)), nil
	})
	if err != nil {
		return models.Result{}, protocol.NewExecutionError(NodeID, err)
	}

	return models.TableResult(out), nil
}
