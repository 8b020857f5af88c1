package inventory

import (
	"errors"
	"strconv"

	"proxydash/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the inventory.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	apps := app.Group("/applications")
	apps.Get("/", h.HandleListApplications)
	apps.Patch("/:id", h.HandleEditApplication)

	app.Get("/instances", h.HandleListInstances)
}

// HandleListApplications lists the dashboard applications.
// @Summary List Applications
// @Description List every application, synced and manual.
// @Tags inventory
// @Produce json
// @Success 200 {array} reconcile.Application
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /applications [get]
func (h *Handler) HandleListApplications(c *fiber.Ctx) error {
	apps, err := h.service.ListApplications(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list applications", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(apps)
}

// HandleEditApplication applies a manual edit to an application.
// @Summary Edit Application
// @Description Edit display fields. Edited fields are pinned against sync; fields listed in release are unpinned.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param edit body Edit true "Edit"
// @Success 200 {object} reconcile.Application
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /applications/{id} [patch]
func (h *Handler) HandleEditApplication(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid application id"})
	}
	var edit Edit
	if err := c.BodyParser(&edit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	app, err := h.service.EditApplication(c.Context(), uint(id), edit)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidEdit):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Failed to edit application", zap.Uint64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(app)
}

// HandleListInstances lists the configured proxy manager instances.
// @Summary List Instances
// @Description List proxy manager instances with their last sync status.
// @Tags inventory
// @Produce json
// @Success 200 {array} reconcile.Instance
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /instances [get]
func (h *Handler) HandleListInstances(c *fiber.Ctx) error {
	instances, err := h.service.ListInstances(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list instances", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(instances)
}
