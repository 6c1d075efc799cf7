// Package web provides the HTTP handlers for the desk-display admin API:
// configuration reads, validated saves, version history, and rollback.
package web

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mrjrask/desk-display/pkg/schedule"
	"github.com/mrjrask/desk-display/pkg/store"
)

// APIHandlers serves the admin endpoints over the versioned config store.
type APIHandlers struct {
	store     *store.Store
	validator *validator.Validate
	logger    *slog.Logger
}

// NewAPIHandlers wires the admin handlers.
func NewAPIHandlers(configStore *store.Store, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:     configStore,
		validator: validate,
		logger:    logger,
	}
}

// GetConfig returns the current committed document plus head version
// metadata.
func (h *APIHandlers) GetConfig(c fiber.Ctx) error {
	doc, err := h.store.Current()
	if err != nil {
		return handleStoreError(c, err)
	}

	response := fiber.Map{"config": doc}
	if head := h.store.Head(); head != nil {
		response["version"] = toVersionResponse(head, false)
	}

	return c.JSON(response)
}

// SaveConfig validates and commits a full replacement document. Validation
// failures come back as a problem response carrying every violation.
func (h *APIHandlers) SaveConfig(c fiber.Ctx) error {
	var req SaveConfigRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	doc, verrs := schedule.ValidateRaw(req.Document)
	if len(verrs) > 0 {
		return validationFailed(c, verrs)
	}

	requestID := uuid.New().String()

	version, err := h.store.Save(doc, req.Actor, req.Summary, map[string]any{
		"request_id": requestID,
	})
	if err != nil {
		return handleStoreError(c, err)
	}

	h.logger.Info("configuration saved via admin API",
		"version", version.ID, "actor", req.Actor, "request_id", requestID)

	return c.Status(fiber.StatusCreated).JSON(toVersionResponse(version, false))
}

// ListVersions returns recent version metadata, newest first.
func (h *APIHandlers) ListVersions(c fiber.Ctx) error {
	limit := 20

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return badRequest(c, "limit must be a positive integer")
		}

		limit = parsed
	}

	versions, err := h.store.ListVersions(limit)
	if err != nil {
		return handleStoreError(c, err)
	}

	responses := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		responses = append(responses, toVersionResponse(v, false))
	}

	return c.JSON(fiber.Map{"versions": responses})
}

// GetVersion returns a single version including its document snapshot.
func (h *APIHandlers) GetVersion(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "version id must be an integer")
	}

	version, err := h.store.Version(id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(toVersionResponse(version, true))
}

// Rollback re-commits a historical document as a new audited version.
func (h *APIHandlers) Rollback(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "version id must be an integer")
	}

	var req RollbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	version, err := h.store.Rollback(id, req.Actor)
	if err != nil {
		return handleStoreError(c, err)
	}

	h.logger.Info("configuration rolled back via admin API",
		"target", id, "new_version", version.ID, "actor", req.Actor)

	return c.Status(fiber.StatusCreated).JSON(toVersionResponse(version, false))
}

// GetScreens lists every screen identifier the current rotation can reach.
func (h *APIHandlers) GetScreens(c fiber.Ctx) error {
	doc, err := h.store.Current()
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"screens": schedule.Screens(doc)})
}
