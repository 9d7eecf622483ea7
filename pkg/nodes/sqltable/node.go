package sqltable

import (
	"context"
	"errors"

	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

// Config holds the LoadTable parameters.
type Config struct {
	Table   string   `json:"table" validate:"required"`
	Columns []string `json:"columns" validate:"dive,required"`
	Limit   int      `json:"limit" validate:"gt=0"`
}

// TableNode reads one table. It ignores its input.
type TableNode struct {
	config Config
	reader TableReader
}

func (n *TableNode) Run(ctx context.Context, _ *models.Frame) (models.Result, error) {
	frame, err := n.reader.Read(ctx, n.config.Table, n.config.Columns, n.config.Limit)

	switch {
	case errors.Is(err, ErrUnknownTable):
		return models.Result{}, protocol.NewInvalidParameterError(NodeID, "table", err)
	case errors.Is(err, ErrUnknownColumn):
		return models.Result{}, protocol.NewInvalidParameterError(NodeID, "columns", err)
	case err != nil:
		return models.Result{}, protocol.NewExecutionError(NodeID, err)
	}

	return models.TableResult(frame), nil
}
