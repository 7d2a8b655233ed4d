package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/paddockhq/dealflow/pkg/engine"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for deal service
// errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDocumentNotFound):
		return notFound(c, "document not found")

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsConflictError(err):
		return conflict(c, "conflict", err.Error())

	case persistence.IsDealNotFound(err):
		return notFound(c, "deal not found")

	case persistence.IsConcurrentModification(err):
		return conflict(c, "concurrent_modification", "deal was modified concurrently, reload and retry")

	default:
		return internalError(c, err)
	}
}

// handleEngineError maps workflow engine errors onto problem responses.
// A validation failure carries the blocking errors and the advisory
// warnings together so clients can render both classes.
func handleEngineError(c fiber.Ctx, err error) error {
	var validationErr *engine.ValidationFailedError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"type":              "validation_failed",
			"title":             "Unprocessable Entity",
			"status":            fiber.StatusUnprocessableEntity,
			"detail":            strings.Join(validationErr.ValidationErrors, "; "),
			"instance":          c.Path(),
			"validation_errors": validationErr.ValidationErrors,
			"warnings":          validationErr.Warnings,
		})
	}

	switch {
	case engine.IsInvalidTransition(err),
		engine.IsInvalidStatusChange(err),
		engine.IsNoPreviousStage(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_transition").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case engine.IsTerminalState(err):
		return conflict(c, "terminal_state", err.Error())

	case engine.IsDealNotActive(err):
		return conflict(c, "deal_not_active", err.Error())

	case persistence.IsDealNotFound(err):
		return notFound(c, "deal not found")

	case persistence.IsConcurrentModification(err):
		return conflict(c, "concurrent_modification", "deal was modified concurrently, reload and retry")

	default:
		return internalError(c, err)
	}
}
