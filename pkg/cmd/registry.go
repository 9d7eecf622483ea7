// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/cognipipe/pkg/nodes/loader"
	"github.com/dukex/cognipipe/pkg/nodes/sqltable"
	"github.com/dukex/cognipipe/pkg/registry"
)

// NewRegistry registers the built-in nodes, then the plugins found in
// pluginsPath. A plugin may not reuse a built-in name.
func NewRegistry(log *slog.Logger, pluginsPath string, loaderOpts loader.Options, tables sqltable.TableReader, maxRows int) (*registry.Registry, error) {
	b := registry.NewBuilder(log)

	if err := registry.RegisterDefaultNodes(b, registry.Options{
		Loader:  loaderOpts,
		Tables:  tables,
		MaxRows: maxRows,
	}); err != nil {
		return nil, err
	}

	if err := b.LoadPlugins(pluginsPath); err != nil {
		return nil, err
	}

	return b.Build(), nil
}
