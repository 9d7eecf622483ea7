package sqltable

import (
	"context"

	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/params"
	"github.com/dukex/cognipipe/pkg/protocol"
)

const (
	NodeID          = "LoadTable"
	DefaultMaxRows  = 100_000
	identifierRegex = `^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`
)

// TableReader is the part of Source the node needs.
type TableReader interface {
	Read(ctx context.Context, table string, columns []string, limit int) (*models.Frame, error)
}

// TableNodeFactory creates TableNode instances.
type TableNodeFactory struct {
	reader  TableReader
	maxRows int
}

// NewTableNodeFactory creates a factory reading through reader. maxRows caps
// and defaults the limit parameter.
func NewTableNodeFactory(reader TableReader, maxRows int) protocol.NodeFactory {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	return &TableNodeFactory{reader: reader, maxRows: maxRows}
}

// Create creates a new TableNode instance.
func (f *TableNodeFactory) Create(ctx context.Context, raw map[string]any) (protocol.Node, error) {
	config := Config{Limit: f.maxRows}
	if err := params.Decode(NodeID, f.Schema(), raw, &config); err != nil {
		return nil, err
	}

	return &TableNode{config: config, reader: f.reader}, nil
}

// ID returns the factory ID.
func (f *TableNodeFactory) ID() string {
	return NodeID
}

// Name returns the factory name.
func (f *TableNodeFactory) Name() string {
	return "Load Table"
}

// Description returns the factory description.
func (f *TableNodeFactory) Description() string {
	return "Loads rows of a PostgreSQL table, optionally restricted to some columns. Ignores any input."
}

// Schema returns the JSON schema for LoadTable parameters.
func (f *TableNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"table": map[string]any{
				"type":        "string",
				"description": "Table name, optionally schema-qualified",
				"pattern":     identifierRegex,
				"examples":    []string{"passengers", "public.passengers"},
			},
			"columns": map[string]any{
				"type":        "array",
				"description": "Columns to load in this order; all columns when omitted",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"uniqueItems": true,
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of rows to load",
				"minimum":     1,
				"maximum":     f.maxRows,
				"default":     f.maxRows,
			},
		},
		"required":             []string{"table"},
		"additionalProperties": false,
	}
}
