package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/events"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/nodes/describe"
	"github.com/dukex/cognipipe/pkg/pipeline"
	"github.com/dukex/cognipipe/pkg/registry"
)

// RunIDHeader carries the ID of the run that served POST /run.
const RunIDHeader = "X-Run-ID"

// PipelineRunner executes pipeline requests. *pipeline.Executor implements it.
type PipelineRunner interface {
	Run(ctx context.Context, meta pipeline.Metadata, req models.PipelineRequest) (*pipeline.Outcome, error)
}

// DatasetSource serves the default dataset. *dataset.Cache implements it.
type DatasetSource interface {
	Frame(ctx context.Context) (*models.Frame, error)
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker func(ctx context.Context) error

type APIHandlers struct {
	registry  *registry.Registry
	runner    PipelineRunner
	dataset   DatasetSource
	validator *validator.Validate
	checkers  map[string]HealthChecker
}

func NewAPIHandlers(
	registry *registry.Registry,
	runner PipelineRunner,
	dataset DatasetSource,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		registry:  registry,
		runner:    runner,
		dataset:   dataset,
		validator: validator,
		checkers:  map[string]HealthChecker{},
	}
}

// AddHealthCheck includes check under name in GET /health.
func (h *APIHandlers) AddHealthCheck(name string, check HealthChecker) {
	h.checkers[name] = check
}

func (h *APIHandlers) ListNodes(c fiber.Ctx) error {
	return c.JSON(h.registry.Names())
}

func (h *APIHandlers) GetNode(c fiber.Ctx) error {
	name := c.Params("name")

	factory, ok := h.registry.Get(name)
	if !ok {
		return notFound(c, "Node "+strconv.Quote(name)+" is not registered")
	}

	return c.JSON(TransformNodeResponse(factory))
}

func (h *APIHandlers) RunPipeline(c fiber.Ctx) error {
	var req models.PipelineRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	outcome, err := h.runner.Run(c.Context(), pipeline.Metadata{Source: events.SourceAPI}, req)
	if err != nil {
		return handlePipelineError(c, err)
	}

	c.Set(RunIDHeader, outcome.RunID)

	return c.JSON(outcome.Output)
}

func (h *APIHandlers) GetPassengers(c fiber.Ctx) error {
	limit := DefaultPassengerLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}

		limit = parsed
	}

	frame, err := h.dataset.Frame(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(frame.Head(limit))
}

// Describe summarizes arbitrary table data as {column: {statistic: value}}.
func (h *APIHandlers) Describe(c fiber.Ctx) error {
	var req DescribeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	frame, err := dataset.FromJSON(req.Data)
	if err != nil {
		return badRequest(c, err.Error())
	}

	summary, err := describe.Summarize(frame)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(summaryByColumn(summary))
}

func summaryByColumn(summary *models.Frame) map[string]map[string]any {
	out := make(map[string]map[string]any, len(summary.Columns())-1)

	for _, name := range summary.ColumnNames() {
		if name == describe.StatisticColumn {
			continue
		}

		stats := make(map[string]any, summary.Len())

		for i := range summary.Len() {
			label, _ := summary.Value(i, describe.StatisticColumn)
			value, _ := summary.Value(i, name)
			stats[label.(string)] = value
		}

		out[name] = stats
	}

	return out
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if err := h.registry.HealthCheck(); err != nil {
		checks["registry"] = err.Error()
		healthy = false
	} else {
		checks["registry"] = "ok"
	}

	for name, check := range h.checkers {
		if err := check(c.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false

			continue
		}

		checks[name] = "ok"
	}

	status := "ok"
	httpStatus := http.StatusOK

	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"checkers":  checks,
		"timestamp": time.Now().UTC(),
	})
}
