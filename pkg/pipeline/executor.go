// Package pipeline runs ordered node steps over a shared tabular context.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/cognipipe/pkg/eventbus"
	"github.com/dukex/cognipipe/pkg/events"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/otelhelper"
	"github.com/dukex/cognipipe/pkg/protocol"
)

// DefaultPreviewRows is how many leading rows a table output carries.
const DefaultPreviewRows = 5

// Registry resolves node names. *registry.Registry implements it.
type Registry interface {
	Get(name string) (protocol.NodeFactory, bool)
}

// Executor runs pipeline requests. It holds no per-run state and is safe for
// concurrent use.
type Executor struct {
	registry    Registry
	logger      *slog.Logger
	tracer      trace.Tracer
	publisher   eventbus.EventPublisher
	previewRows int
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) { e.tracer = tracer }
}

// WithPublisher publishes lifecycle events for every run. Publishing errors
// are logged and do not affect the run.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Executor) { e.publisher = publisher }
}

// WithPreviewRows bounds table previews; non-positive values keep the default.
func WithPreviewRows(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.previewRows = n
		}
	}
}

func NewExecutor(registry Registry, opts ...Option) *Executor {
	e := &Executor{
		registry:    registry,
		logger:      slog.Default(),
		tracer:      otelhelper.Tracer("cognipipe/pipeline"),
		previewRows: DefaultPreviewRows,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With("module", "pipeline")

	return e
}

// Metadata describes a run for logs, spans and events.
type Metadata struct {
	Pipeline string // optional pipeline name, e.g. from an HCL file
	Source   string // events.SourceAPI, SourceCLI or SourceSchedule
}

// Outcome is a finished run.
type Outcome struct {
	RunID  string
	Output *models.PipelineOutput
	Result models.Result // terminal result, unprojected
}

// Execute runs req and returns its projected output.
func (e *Executor) Execute(ctx context.Context, req models.PipelineRequest) (*models.PipelineOutput, error) {
	outcome, err := e.Run(ctx, Metadata{}, req)
	if err != nil {
		return nil, err
	}

	return outcome.Output, nil
}

// Run executes the steps of req in order. Each step gets a fresh node from
// its factory and the last table produced so far, nil before any. Only
// table results replace that context; every result becomes the latest
// result. The first failing step aborts the run with a *StepError.
func (e *Executor) Run(ctx context.Context, meta Metadata, req models.PipelineRequest) (*Outcome, error) {
	runID := uuid.NewString()
	started := time.Now()

	logger := e.logger.With("run_id", runID)
	if meta.Pipeline != "" {
		logger = logger.With("pipeline", meta.Pipeline)
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "pipeline.run",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.String(otelhelper.PipelineNameKey, meta.Pipeline),
		attribute.Int(otelhelper.StepCountKey, len(req.Steps)),
	)
	defer span.End()

	names := make([]string, len(req.Steps))
	for i, step := range req.Steps {
		names[i] = step.Name
	}

	logger.InfoContext(ctx, "Pipeline started", "steps", len(req.Steps), "source", meta.Source)
	e.publish(ctx, logger, runID, func(base events.BaseEvent) eventbus.Event {
		return events.PipelineStarted{BaseEvent: base, Pipeline: meta.Pipeline, Source: meta.Source, Steps: names}
	}, events.PipelineStartedEvent)

	var (
		current *models.Frame
		last    models.Result
	)

	for i, step := range req.Steps {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(ctx, logger, span, runID, started, &StepError{
				Index: i,
				Node:  step.Name,
				Err:   protocol.NewExecutionError(step.Name, fmt.Errorf("run cancelled: %w", err)),
			})
		}

		result, stepErr := e.step(ctx, logger, runID, i, step, current)
		if stepErr != nil {
			return nil, e.fail(ctx, logger, span, runID, started, stepErr)
		}

		last = result
		if result.IsTable() {
			current = result.Table
		}
	}

	output := models.NewPipelineOutput(last, e.previewRows)
	duration := time.Since(started)

	span.SetAttributes(attribute.String(otelhelper.ResultKindKey, string(last.Kind)))
	logger.InfoContext(ctx, "Pipeline completed", "result_kind", last.Kind, "duration", duration)
	e.publish(ctx, logger, runID, func(base events.BaseEvent) eventbus.Event {
		return events.PipelineCompleted{BaseEvent: base, Steps: len(req.Steps), ResultKind: string(last.Kind), Duration: duration}
	}, events.PipelineCompletedEvent)

	return &Outcome{RunID: runID, Output: output, Result: last}, nil
}

func (e *Executor) step(ctx context.Context, logger *slog.Logger, runID string, index int, step models.NodeDescriptor, input *models.Frame) (models.Result, *StepError) {
	started := time.Now()

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "pipeline.step",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.Int(otelhelper.StepIndexKey, index),
		attribute.String(otelhelper.NodeNameKey, step.Name),
	)
	defer span.End()

	factory, ok := e.registry.Get(step.Name)
	if !ok {
		return models.Result{}, e.stepFailed(span, newStepError(index, step.Name, protocol.NewUnknownNodeError(step.Name)))
	}

	node, err := factory.Create(ctx, step.Params)
	if err != nil {
		return models.Result{}, e.stepFailed(span, newStepError(index, step.Name, err))
	}

	result, err := node.Run(ctx, input)
	if err != nil {
		return models.Result{}, e.stepFailed(span, newStepError(index, step.Name, err))
	}

	rows := 0
	if result.IsTable() {
		rows = result.Table.Len()
		span.SetAttributes(attribute.Int(otelhelper.RowCountKey, rows))
	}

	duration := time.Since(started)

	span.SetAttributes(attribute.String(otelhelper.ResultKindKey, string(result.Kind)))
	logger.DebugContext(ctx, "Step completed", "step", index, "node", step.Name, "result_kind", result.Kind, "rows", rows, "duration", duration)
	e.publish(ctx, logger, runID, func(base events.BaseEvent) eventbus.Event {
		return events.StepCompleted{BaseEvent: base, Index: index, Node: step.Name, ResultKind: string(result.Kind), Rows: rows, Duration: duration}
	}, events.StepCompletedEvent)

	return result, nil
}

func (e *Executor) stepFailed(span trace.Span, err *StepError) *StepError {
	otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, err.Kind()))

	return err
}

func (e *Executor) fail(ctx context.Context, logger *slog.Logger, span trace.Span, runID string, started time.Time, stepErr *StepError) error {
	duration := time.Since(started)

	otelhelper.SetError(span, stepErr, attribute.String(otelhelper.ErrorKindKey, stepErr.Kind()))
	logger.WarnContext(ctx, "Pipeline failed",
		"step", stepErr.Index,
		"node", stepErr.Node,
		"kind", stepErr.Kind(),
		"error", stepErr.Err,
		"duration", duration,
	)

	e.publish(ctx, logger, runID, func(base events.BaseEvent) eventbus.Event {
		return events.PipelineFailed{
			BaseEvent: base,
			Index:     stepErr.Index,
			Node:      stepErr.Node,
			Kind:      stepErr.Kind(),
			Error:     stepErr.Err.Error(),
			Duration:  duration,
		}
	}, events.PipelineFailedEvent)

	return stepErr
}

func (e *Executor) publish(ctx context.Context, logger *slog.Logger, runID string, build func(events.BaseEvent) eventbus.Event, eventType events.EventType) {
	if e.publisher == nil {
		return
	}

	event := build(events.NewBaseEvent(e.publisher.GenerateID(), eventType, runID))

	// A cancelled request still reports how it ended.
	if err := e.publisher.Publish(context.WithoutCancel(ctx), runID, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish pipeline event", "event_type", eventType, "error", err)
	}
}
