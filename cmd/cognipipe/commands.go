package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dukex/cognipipe/pkg/cmd"
	"github.com/dukex/cognipipe/pkg/events"
	"github.com/dukex/cognipipe/pkg/hclpipeline"
	"github.com/dukex/cognipipe/pkg/log"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/pipeline"
	"github.com/dukex/cognipipe/pkg/schedule"
	"github.com/dukex/cognipipe/pkg/web"
)

const (
	reloadJob   = "dataset.reload"
	stopTimeout = 30 * time.Second
)

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrNoPipelines     = errors.New("no pipelines to run")
)

// runResult is one line of `cognipipe run` output.
type runResult struct {
	Pipeline string                 `json:"pipeline"`
	RunID    string                 `json:"run_id"`
	Output   *models.PipelineOutput `json:"output"`
}

func withRuntime(ctx context.Context, command *cli.Command, module string, fn func(*cmd.Runtime) error) error {
	logger := log.WithModule(module)

	rt, err := cmd.NewRuntime(ctx, logger, cmd.ConfigFromCommand(serviceName, command))
	if err != nil {
		return err
	}

	defer func() {
		if err := rt.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close runtime", "error", err)
		}
	}()

	if rt.EventBus != nil {
		if err := cmd.LogEvents(ctx, rt.EventBus, logger); err != nil {
			return err
		}
	}

	return fn(rt)
}

func listNodes(ctx context.Context, command *cli.Command) error {
	return withRuntime(ctx, command, "cli", func(rt *cmd.Runtime) error {
		if !command.Bool("json") {
			for _, name := range rt.Registry.Names() {
				if _, err := fmt.Fprintln(command.Root().Writer, name); err != nil {
					return err
				}
			}

			return nil
		}

		nodes := make([]web.NodeResponse, 0, rt.Registry.Len())
		for _, factory := range rt.Registry.Factories() {
			nodes = append(nodes, web.TransformNodeResponse(factory))
		}

		encoder := json.NewEncoder(command.Root().Writer)
		encoder.SetIndent("", "  ")

		return encoder.Encode(nodes)
	})
}

func runFile(ctx context.Context, command *cli.Command) error {
	path := command.Args().First()
	if path == "" {
		return fmt.Errorf("%w: pipeline file", ErrMissingArgument)
	}

	pipelines, err := hclpipeline.ParseFile(path)
	if err != nil {
		return err
	}

	if only := command.String("pipeline"); only != "" {
		pipelines = selectPipeline(pipelines, only)
	}

	if len(pipelines) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPipelines, path)
	}

	return withRuntime(ctx, command, "cli", func(rt *cmd.Runtime) error {
		encoder := json.NewEncoder(command.Root().Writer)

		for _, p := range pipelines {
			outcome, err := rt.Executor.Run(ctx, pipeline.Metadata{Pipeline: p.Name, Source: events.SourceCLI}, p.Request)
			if err != nil {
				return fmt.Errorf("pipeline %q: %w", p.Name, err)
			}

			if err := encoder.Encode(runResult{Pipeline: p.Name, RunID: outcome.RunID, Output: outcome.Output}); err != nil {
				return err
			}
		}

		return nil
	})
}

func selectPipeline(pipelines []*hclpipeline.Pipeline, name string) []*hclpipeline.Pipeline {
	for _, p := range pipelines {
		if p.Name == name {
			return []*hclpipeline.Pipeline{p}
		}
	}

	return nil
}

func runSchedule(ctx context.Context, command *cli.Command) error {
	dir := command.Args().First()
	if dir == "" {
		return fmt.Errorf("%w: pipeline directory", ErrMissingArgument)
	}

	pipelines, err := hclpipeline.LoadDir(dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withRuntime(ctx, command, "scheduler", func(rt *cmd.Runtime) error {
		logger := log.WithModule("scheduler")
		scheduler := schedule.NewScheduler(rt.Executor, logger)

		for _, p := range pipelines {
			if p.Schedule == "" {
				logger.InfoContext(ctx, "Pipeline has no schedule, skipping", "pipeline", p.Name, "file", p.File)

				continue
			}

			if err := scheduler.AddPipeline(p); err != nil {
				return err
			}
		}

		if len(scheduler.Jobs()) == 0 {
			return fmt.Errorf("%w: no scheduled pipelines in %s", ErrNoPipelines, dir)
		}

		if spec := command.String("reload-schedule"); spec != "" {
			if err := scheduler.AddFunc(reloadJob, spec, func(ctx context.Context) error {
				_, err := rt.Dataset.Reload(ctx)

				return err
			}); err != nil {
				return err
			}
		}

		scheduler.Start(ctx)
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()

		return scheduler.Stop(stopCtx)
	})
}
