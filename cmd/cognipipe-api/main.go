// Package main provides the Cognipipe API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dukex/cognipipe/pkg/cmd"
	"github.com/dukex/cognipipe/pkg/log"
	"github.com/dukex/cognipipe/pkg/ratelimit"
	"github.com/dukex/cognipipe/pkg/schedule"
)

const (
	defaultPort = 9091
	serviceName = "cognipipe-api"
	reloadJob   = "dataset.reload"
)

func main() {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to run the API server on",
			Value:   defaultPort,
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Redis URL for shared rate limit counters; in memory when empty",
			Sources: cli.EnvVars("REDIS_URL"),
		},
		&cli.IntFlag{
			Name:    "rate-limit",
			Usage:   "Maximum POST /run requests per client per minute, 0 disables",
			Sources: cli.EnvVars("RATE_LIMIT"),
		},
		&cli.StringFlag{
			Name:    "reload-schedule",
			Usage:   "Cron spec for reloading the default dataset, e.g. @hourly",
			Sources: cli.EnvVars("RELOAD_SCHEDULE"),
		},
	}
	flags = append(flags, cmd.LogFlags()...)
	flags = append(flags, cmd.RuntimeFlags()...)

	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Run data pipelines over HTTP",
		EnableShellCompletion: true,
		Flags:                 flags,
		Action:                run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("api").Error("API server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")
	logger.InfoContext(ctx, "Initializing Cognipipe API")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	limit := ratelimit.Config{Max: command.Int("rate-limit")}

	if url := command.String("redis-url"); url != "" && limit.Max > 0 {
		storage, err := ratelimit.Connect(ctx, logger, url)
		if err != nil {
			return err
		}

		defer func() {
			if err := storage.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close Redis", "error", err)
			}
		}()

		limit.Storage = storage
	}

	if spec := command.String("reload-schedule"); spec != "" {
		scheduler := schedule.NewScheduler(rt.Executor, logger)
		if err := scheduler.AddFunc(reloadJob, spec, func(ctx context.Context) error {
			_, err := rt.Dataset.Reload(ctx)

			return err
		}); err != nil {
			return err
		}

		scheduler.Start(ctx)

		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := scheduler.Stop(stopCtx); err != nil {
				logger.ErrorContext(ctx, "Failed to stop scheduler", "error", err)
			}
		}()
	}

	api := NewAPI(logger, rt.Registry, rt.Executor, rt.Dataset, limit)
	if rt.Tables != nil {
		api.AddHealthCheck("database", rt.Tables.HealthCheck)
	}

	if storage, ok := limit.Storage.(*ratelimit.RedisStorage); ok {
		api.AddHealthCheck("redis", storage.HealthCheck)
	}

	return api.Start(ctx, command.Int("port"))
}
