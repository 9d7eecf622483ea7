// Package events defines event types and structures for pipeline lifecycle notifications.
package events

import (
	"time"
)

type EventType string

// Topic carries every pipeline lifecycle event.
const Topic = "cognipipe.pipeline.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	PipelineStartedEvent   EventType = "pipeline.started"
	StepCompletedEvent     EventType = "pipeline.step.completed"
	PipelineCompletedEvent EventType = "pipeline.completed"
	PipelineFailedEvent    EventType = "pipeline.failed"
)

// Sources of a run, reported in PipelineStarted.
const (
	SourceAPI      = "api"
	SourceCLI      = "cli"
	SourceSchedule = "schedule"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps an event of type eventType for run.
func NewBaseEvent(id string, eventType EventType, runID string) BaseEvent {
	return BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
	}
}

type PipelineStarted struct {
	BaseEvent

	Pipeline string   `json:"pipeline,omitempty"`
	Source   string   `json:"source,omitempty"`
	Steps    []string `json:"steps"`
}

func (e PipelineStarted) GetType() EventType {
	return PipelineStartedEvent
}

type StepCompleted struct {
	BaseEvent

	Index      int           `json:"index"`
	Node       string        `json:"node"`
	ResultKind string        `json:"result_kind"`
	Rows       int           `json:"rows,omitempty"`
	Duration   time.Duration `json:"duration"`
}

func (e StepCompleted) GetType() EventType {
	return StepCompletedEvent
}

type PipelineCompleted struct {
	BaseEvent

	Steps      int           `json:"steps"`
	ResultKind string        `json:"result_kind"`
	Duration   time.Duration `json:"duration"`
}

func (e PipelineCompleted) GetType() EventType {
	return PipelineCompletedEvent
}

type PipelineFailed struct {
	BaseEvent

	Index    int           `json:"index"`
	Node     string        `json:"node"`
	Kind     string        `json:"kind"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (e PipelineFailed) GetType() EventType {
	return PipelineFailedEvent
}
