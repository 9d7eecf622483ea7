// Package main provides the cognipipe command line tool.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dukex/cognipipe/pkg/cmd"
	"github.com/dukex/cognipipe/pkg/log"
)

const serviceName = "cognipipe"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	flags := append(cmd.LogFlags(), cmd.RuntimeFlags()...)

	return &cli.Command{
		Name:                  serviceName,
		Usage:                 "Run data pipelines defined in HCL files",
		EnableShellCompletion: true,
		Flags:                 flags,
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"), command.String("log-format"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "nodes",
				Aliases: []string{"n"},
				Usage:   "List the registered nodes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print node metadata and parameter schemas as JSON",
					},
				},
				Action: listNodes,
			},
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "Run the pipelines of an HCL file once",
				ArgsUsage: "<file.hcl>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "pipeline",
						Usage: "Run only the pipeline with this name",
					},
				},
				Action: runFile,
			},
			{
				Name:      "schedule",
				Aliases:   []string{"s"},
				Usage:     "Run the scheduled pipelines of a directory until interrupted",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "reload-schedule",
						Usage:   "Cron spec for reloading the default dataset",
						Sources: cli.EnvVars("RELOAD_SCHEDULE"),
					},
				},
				Action: runSchedule,
			},
		},
	}
}
