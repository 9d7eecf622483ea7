// Package loader provides the dataset loading node factory for registry integration.
package loader

import (
	"context"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/params"
	"github.com/dukex/cognipipe/pkg/protocol"
)

const (
	NodeID      = "LoadTitanic"
	DefaultPath = "data/titanic.csv"
)

// Options configures where and how much the loader may read.
type Options struct {
	// DefaultPath is used when the step gives no path.
	DefaultPath string

	// MaxBytes caps each read; zero means dataset.DefaultMaxBytes.
	MaxBytes int64

	// Root, when set, confines every path to this directory.
	Root string

	// Cache serves reads of its own path from memory.
	Cache *dataset.Cache
}

// LoaderNodeFactory creates LoaderNode instances.
type LoaderNodeFactory struct {
	opts Options
}

// NewLoaderNodeFactory creates a new factory instance.
func NewLoaderNodeFactory(opts Options) protocol.NodeFactory {
	if opts.DefaultPath == "" {
		opts.DefaultPath = DefaultPath
	}

	if opts.MaxBytes <= 0 {
		opts.MaxBytes = dataset.DefaultMaxBytes
	}

	return &LoaderNodeFactory{opts: opts}
}

// Create creates a new LoaderNode instance.
func (f *LoaderNodeFactory) Create(ctx context.Context, raw map[string]any) (protocol.Node, error) {
	config := Config{Path: f.opts.DefaultPath}
	if err := params.Decode(NodeID, f.Schema(), raw, &config); err != nil {
		return nil, err
	}

	return &LoaderNode{config: config, opts: f.opts}, nil
}

// ID returns the factory ID.
func (f *LoaderNodeFactory) ID() string {
	return NodeID
}

// Name returns the factory name.
func (f *LoaderNodeFactory) Name() string {
	return "Load Titanic"
}

// Description returns the factory description.
func (f *LoaderNodeFactory) Description() string {
	return "Loads a CSV dataset from a file path, inferring column types. Ignores any input."
}

// Schema returns the JSON schema for LoadTitanic parameters.
func (f *LoaderNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "CSV file to read, relative to the working directory",
				"default":     f.opts.DefaultPath,
				"examples":    []string{DefaultPath},
			},
		},
		"additionalProperties": false,
	}
}
