package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/dukex/cognipipe/pkg/channels/gochannel"
	"github.com/dukex/cognipipe/pkg/channels/kafka"
	"github.com/dukex/cognipipe/pkg/eventbus"
	"github.com/dukex/cognipipe/pkg/events"
)

// Event bus providers accepted by --event-bus.
const (
	EventBusNone      = "none"
	EventBusGoChannel = "gochannel"
	EventBusKafka     = "kafka"
)

// NewEventBus returns the bus for provider, or nil for "none".
func NewEventBus(provider, serviceName, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	adapter := watermill.NewSlogLogger(logger)

	switch provider {
	case "", EventBusNone:
		return nil, nil
	case EventBusGoChannel:
		pub, sub, err := gochannel.CreateChannel(adapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case EventBusKafka:
		pub, sub, err := kafka.CreateChannel(adapter, serviceName, kafka.ParseBrokers(brokers))
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}

// LogEvents subscribes to bus and logs every pipeline lifecycle event.
func LogEvents(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	logger = logger.With("module", "pipeline_events")

	handlers := map[events.EventType]eventbus.EventHandler{
		events.PipelineStartedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.PipelineStarted) error {
			logger.DebugContext(ctx, "Pipeline started", "run_id", e.RunID, "pipeline", e.Pipeline, "source", e.Source, "steps", e.Steps)

			return nil
		}),
		events.StepCompletedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.StepCompleted) error {
			logger.DebugContext(ctx, "Step completed", "run_id", e.RunID, "step", e.Index, "node", e.Node, "rows", e.Rows)

			return nil
		}),
		events.PipelineCompletedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.PipelineCompleted) error {
			logger.InfoContext(ctx, "Pipeline completed", "run_id", e.RunID, "result_kind", e.ResultKind, "duration", e.Duration)

			return nil
		}),
		events.PipelineFailedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.PipelineFailed) error {
			logger.WarnContext(ctx, "Pipeline failed", "run_id", e.RunID, "step", e.Index, "node", e.Node, "kind", e.Kind, "error", e.Error)

			return nil
		}),
	}

	for eventType, handler := range handlers {
		if err := bus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
