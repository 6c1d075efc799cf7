package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/mrjrask/desk-display/pkg/schedule"
	"github.com/mrjrask/desk-display/pkg/store"
)

// validationProblem is an RFC 7807 response extended with the full list of
// validation errors, so a configuration UI can display them all at once.
type validationProblem struct {
	*problems.Problem
	Errors schedule.ValidationErrors `json:"errors"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func validationFailed(c fiber.Ctx, errs schedule.ValidationErrors) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail("configuration document failed validation")

	return c.Status(fiber.StatusBadRequest).JSON(validationProblem{
		Problem: problem,
		Errors:  errs,
	})
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleStoreError maps store-layer failures to problem responses.
func handleStoreError(c fiber.Ctx, err error) error {
	if verrs, ok := schedule.AsValidationErrors(err); ok {
		return validationFailed(c, verrs)
	}

	switch {
	case errors.Is(err, store.ErrVersionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, store.ErrNoDocument):
		return notFound(c, "no configuration committed yet")
	default:
		return internalError(c, err)
	}
}
