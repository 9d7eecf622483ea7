package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/dukex/cognipipe/pkg/pipeline"
	"github.com/dukex/cognipipe/pkg/protocol"
)

const problemContentType = "application/problem+json"

// StepProblem is a problem detail for a failed pipeline step.
type StepProblem struct {
	*problems.Problem

	Step int    `json:"step"`
	Node string `json:"node"`
	Kind string `json:"kind"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem, problemContentType)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem, problemContentType)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem, problemContentType)
}

// StatusFor maps a pipeline failure to its HTTP status: request mistakes are
// 400, failures inside a node's computation 422, anything else 500.
func StatusFor(err error) int {
	switch {
	case protocol.IsClientError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, protocol.ErrNodeExecution):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// handlePipelineError renders a failed run.
func handlePipelineError(c fiber.Ctx, err error) error {
	var stepErr *pipeline.StepError
	if !errors.As(err, &stepErr) {
		return internalError(c, err)
	}

	status := StatusFor(err)
	problem := StepProblem{
		Problem: problems.NewStatusProblem(status).
			WithInstance(c.Path()).
			WithType(stepErr.Kind()).
			WithDetail(stepErr.Error()),
		Step: stepErr.Index,
		Node: stepErr.Node,
		Kind: stepErr.Kind(),
	}

	return c.Status(status).JSON(problem, problemContentType)
}

// ErrorHandler renders errors that escaped a handler, such as routing
// failures and rate limiting, as problem details.
func ErrorHandler(c fiber.Ctx, err error) error {
	if pipeline.IsStepError(err) {
		return handlePipelineError(c, err)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		problemType := "http_error"
		if fiberErr.Code == fiber.StatusTooManyRequests {
			problemType = "rate_limited"
		}

		problem := problems.NewStatusProblem(fiberErr.Code).
			WithInstance(c.Path()).
			WithType(problemType).
			WithDetail(fiberErr.Message)

		return c.Status(fiberErr.Code).JSON(problem, problemContentType)
	}

	return internalError(c, err)
}
