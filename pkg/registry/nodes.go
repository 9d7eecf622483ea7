package registry

import (
	"github.com/dukex/cognipipe/pkg/nodes/describe"
	"github.com/dukex/cognipipe/pkg/nodes/filter"
	"github.com/dukex/cognipipe/pkg/nodes/loader"
	"github.com/dukex/cognipipe/pkg/nodes/logistic"
	"github.com/dukex/cognipipe/pkg/nodes/sqltable"
	"github.com/dukex/cognipipe/pkg/protocol"
)

// Options configures the built-in nodes.
type Options struct {
	Loader loader.Options

	// Tables enables LoadTable when set.
	Tables  sqltable.TableReader
	MaxRows int
}

// RegisterDefaultNodes registers all built-in node factories with the builder.
func RegisterDefaultNodes(b *Builder, opts Options) error {
	factories := []protocol.NodeFactory{
		loader.NewLoaderNodeFactory(opts.Loader),
		filter.NewFilterNodeFactory(),
		describe.NewDescribeNodeFactory(),
		logistic.NewLogisticNodeFactory(),
	}

	if opts.Tables != nil {
		factories = append(factories, sqltable.NewTableNodeFactory(opts.Tables, opts.MaxRows))
	}

	for _, factory := range factories {
		if err := b.Register(factory); err != nil {
			return err
		}
	}

	return nil
}
