package cmd

import (
	"github.com/urfave/cli/v3"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/nodes/loader"
	"github.com/dukex/cognipipe/pkg/nodes/sqltable"
	"github.com/dukex/cognipipe/pkg/pipeline"
)

// LogFlags configure pkg/log.
func LogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
	}
}

// RuntimeFlags are read by ConfigFromCommand.
func RuntimeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dataset",
			Usage:   "Default CSV dataset loaded by LoadTitanic",
			Value:   loader.DefaultPath,
			Sources: cli.EnvVars("DATASET_PATH"),
		},
		&cli.StringFlag{
			Name:    "data-root",
			Usage:   "Directory every LoadTitanic path must stay inside; empty allows any path",
			Sources: cli.EnvVars("DATA_ROOT"),
		},
		&cli.Int64Flag{
			Name:    "max-read-bytes",
			Usage:   "Maximum bytes read from a CSV file",
			Value:   dataset.DefaultMaxBytes,
			Sources: cli.EnvVars("MAX_READ_BYTES"),
		},
		&cli.IntFlag{
			Name:    "preview-rows",
			Usage:   "Rows included in table previews",
			Value:   pipeline.DefaultPreviewRows,
			Sources: cli.EnvVars("PREVIEW_ROWS"),
		},
		&cli.IntFlag{
			Name:    "max-table-rows",
			Usage:   "Maximum rows LoadTable may read",
			Value:   sqltable.DefaultMaxRows,
			Sources: cli.EnvVars("MAX_TABLE_ROWS"),
		},
		&cli.StringFlag{
			Name:  "plugins-path",
			Usage: "Path to the directory containing node plugins",
			Value: "./plugins",
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "PostgreSQL URL enabling the LoadTable node",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Pipeline event bus (none, gochannel, kafka)",
			Value:   EventBusNone,
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma separated Kafka brokers for --event-bus=kafka",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.BoolFlag{
			Name:    "tracing",
			Usage:   "Export traces over OTLP HTTP",
			Sources: cli.EnvVars("TRACING_ENABLED"),
		},
	}
}
