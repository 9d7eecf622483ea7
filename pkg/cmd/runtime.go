package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/eventbus"
	"github.com/dukex/cognipipe/pkg/nodes/loader"
	"github.com/dukex/cognipipe/pkg/nodes/sqltable"
	"github.com/dukex/cognipipe/pkg/otelhelper"
	"github.com/dukex/cognipipe/pkg/pipeline"
	"github.com/dukex/cognipipe/pkg/registry"
)

// Config is the wiring shared by every binary.
type Config struct {
	ServiceName  string
	DatasetPath  string
	DataRoot     string
	MaxReadBytes int64
	PreviewRows  int
	MaxTableRows int
	PluginsPath  string
	DatabaseURL  string
	EventBus     string
	KafkaBrokers string
	Tracing      bool
}

// ConfigFromCommand reads the flags declared by RuntimeFlags.
func ConfigFromCommand(serviceName string, command *cli.Command) Config {
	return Config{
		ServiceName:  serviceName,
		DatasetPath:  command.String("dataset"),
		DataRoot:     command.String("data-root"),
		MaxReadBytes: command.Int64("max-read-bytes"),
		PreviewRows:  command.Int("preview-rows"),
		MaxTableRows: command.Int("max-table-rows"),
		PluginsPath:  command.String("plugins-path"),
		DatabaseURL:  command.String("database-url"),
		EventBus:     command.String("event-bus"),
		KafkaBrokers: command.String("kafka-brokers"),
		Tracing:      command.Bool("tracing"),
	}
}

// Runtime holds the long-lived components built from a Config.
type Runtime struct {
	Registry *registry.Registry
	Executor *pipeline.Executor
	Dataset  *dataset.Cache
	Tables   *sqltable.Source // nil without a database
	EventBus eventbus.EventBus

	logger  *slog.Logger
	closers []func(ctx context.Context) error
}

// NewRuntime connects the configured dependencies and builds the executor.
// On error everything opened so far is closed again.
func NewRuntime(ctx context.Context, logger *slog.Logger, cfg Config) (rt *Runtime, err error) {
	rt = &Runtime{logger: logger}

	defer func() {
		if err != nil {
			err = errors.Join(err, rt.Close(ctx))
			rt = nil
		}
	}()

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithPreviewRows(cfg.PreviewRows),
	}

	if cfg.Tracing {
		var (
			tracer   trace.Tracer
			shutdown otelhelper.ShutdownFunc
		)

		tracer, shutdown, err = otelhelper.NewTracer(ctx, cfg.ServiceName)
		if err != nil {
			return rt, fmt.Errorf("failed to set up tracing: %w", err)
		}

		rt.closers = append(rt.closers, shutdown)
		opts = append(opts, pipeline.WithTracer(tracer))
	}

	rt.Dataset = dataset.NewCache(cfg.DatasetPath, cfg.MaxReadBytes, logger)

	var tables sqltable.TableReader

	rt.Tables, err = NewTableSource(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return rt, err
	}

	if rt.Tables != nil {
		tables = rt.Tables
		rt.closers = append(rt.closers, func(context.Context) error { return rt.Tables.Close() })
	}

	rt.EventBus, err = NewEventBus(cfg.EventBus, cfg.ServiceName, cfg.KafkaBrokers, logger)
	if err != nil {
		return rt, err
	}

	if rt.EventBus != nil {
		rt.closers = append(rt.closers, func(context.Context) error { return rt.EventBus.Close() })
		opts = append(opts, pipeline.WithPublisher(rt.EventBus))
	}

	loaderOpts := loader.Options{
		DefaultPath: cfg.DatasetPath,
		MaxBytes:    cfg.MaxReadBytes,
		Root:        cfg.DataRoot,
		Cache:       rt.Dataset,
	}

	rt.Registry, err = NewRegistry(logger, cfg.PluginsPath, loaderOpts, tables, cfg.MaxTableRows)
	if err != nil {
		return rt, err
	}

	rt.Executor = pipeline.NewExecutor(rt.Registry, opts...)

	logger.InfoContext(ctx, "Runtime ready",
		"nodes", rt.Registry.Len(),
		"dataset", cfg.DatasetPath,
		"event_bus", cfg.EventBus,
		"database", rt.Tables != nil,
		"tracing", cfg.Tracing,
	)

	return rt, nil
}

// Close releases everything in reverse order of acquisition.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error

	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	r.closers = nil

	return errors.Join(errs...)
}
