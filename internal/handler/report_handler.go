package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/service"
	"github.com/noah-isme/sikori-api/internal/utils"
)

// ReportHandler exposes the dashboard counters and activity recaps.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report routes to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/activities/:id", h.activityRecap)
}

func (h *ReportHandler) dashboard(c *fiber.Ctx) error {
	response, err := h.service.Dashboard(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "build dashboard")
	}
	return utils.SendSuccess(c, "dashboard retrieved", response)
}

func (h *ReportHandler) activityRecap(c *fiber.Ctx) error {
	response, err := h.service.ActivityRecap(withRequestContext(c), c.Params("id"), c.Query("class"))
	if err != nil {
		return respondError(c, h.logger, err, "build activity recap")
	}
	return utils.SendSuccess(c, "activity recap retrieved", response)
}
