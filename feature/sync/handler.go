package sync

import (
	"errors"
	"strconv"

	"proxydash/core/catalog"
	"proxydash/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync and detection.
type Handler struct {
	service   *Service
	scheduler *Scheduler
	online    bool
}

// NewHandler creates a new HTTP handler. scheduler may be nil, in which
// case async sync requests are rejected.
func NewHandler(service *Service, scheduler *Scheduler, online bool) *Handler {
	return &Handler{service: service, scheduler: scheduler, online: online}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleSync)
	group.Get("/last", h.HandleLastSync)

	app.Post("/applications/:id/redetect", h.HandleRedetect)

	cat := app.Group("/catalog")
	cat.Get("/search", h.HandleSearchCatalog)
	cat.Get("/stats", h.HandleCatalogStats)
}

// HandleSync runs a sync.
// @Summary Run Sync
// @Description Reconcile proxy routes into applications. dry_run returns the plan without writing; async queues the run on the scheduler.
// @Tags sync
// @Produce json
// @Param dry_run query bool false "Compute the plan only"
// @Param online query bool false "Use the online catalog fallback"
// @Param async query bool false "Queue the run and return immediately"
// @Success 200 {object} reconcile.Stats "Sync stats, or reconcile.Plan for dry_run"
// @Success 202 {object} map[string]string "Queued"
// @Failure 409 {object} map[string]string "A run is already queued"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	online := c.QueryBool("online", h.online)

	if c.QueryBool("dry_run", false) {
		plan, err := h.service.Plan(c.Context(), online)
		if err != nil {
			l.Error("Sync plan failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(plan)
	}

	if c.QueryBool("async", false) {
		if h.scheduler == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "scheduler not running"})
		}
		if !h.scheduler.Trigger(online) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a sync is already queued"})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
	}

	stats := h.service.RunSync(c.Context(), online)
	l.Info("Sync completed via API", zap.String("run_id", stats.RunID), zap.Int("errors", len(stats.Errors)))
	return c.JSON(stats)
}

// HandleLastSync returns the stats of the last scheduled run.
// @Summary Last Sync
// @Description Stats of the most recent scheduled or queued run.
// @Tags sync
// @Produce json
// @Success 200 {object} reconcile.Stats
// @Failure 404 {object} map[string]string "No run yet"
// @Router /sync/last [get]
func (h *Handler) HandleLastSync(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no sync has run"})
	}
	stats, ok := h.scheduler.Last()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no sync has run"})
	}
	return c.JSON(stats)
}

// HandleRedetect re-classifies one application.
// @Summary Redetect Application
// @Description Run detection again for one application. Low-confidence results do not replace an earlier detection.
// @Tags sync
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} RedetectResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /applications/{id}/redetect [post]
func (h *Handler) HandleRedetect(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid application id"})
	}

	res, err := h.service.RedetectOne(c.Context(), uint(id))
	if errors.Is(err, ErrApplicationNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Redetect failed", zap.Uint64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// HandleSearchCatalog searches the online catalog.
// @Summary Search Catalog
// @Description Search the online application catalog by name.
// @Tags catalog
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "Maximum results"
// @Success 200 {array} catalog.Result
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Catalog unavailable"
// @Router /catalog/search [get]
func (h *Handler) HandleSearchCatalog(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing query"})
	}

	results, err := h.service.SearchCatalog(c.Context(), q, c.QueryInt("limit", 0))
	if errors.Is(err, catalog.ErrUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if results == nil {
		results = []catalog.Result{}
	}
	return c.JSON(results)
}

// HandleCatalogStats reports detection table and catalog sizes.
// @Summary Catalog Stats
// @Description Signature table sizes and online catalog availability.
// @Tags catalog
// @Produce json
// @Success 200 {object} CatalogStats
// @Router /catalog/stats [get]
func (h *Handler) HandleCatalogStats(c *fiber.Ctx) error {
	return c.JSON(h.service.CatalogStats(c.Context()))
}
