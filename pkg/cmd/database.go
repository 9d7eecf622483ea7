package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/cognipipe/pkg/nodes/sqltable"
)

// NewTableSource connects to PostgreSQL for the LoadTable node. An empty
// databaseURL disables the node and returns nil.
func NewTableSource(ctx context.Context, logger *slog.Logger, databaseURL string) (*sqltable.Source, error) {
	if databaseURL == "" {
		return nil, nil
	}

	return sqltable.Open(ctx, logger, databaseURL)
}
