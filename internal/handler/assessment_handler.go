package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/middleware"
	"github.com/noah-isme/sikori-api/internal/service"
	"github.com/noah-isme/sikori-api/internal/utils"
)

// AssessmentHandler wires assessment recording endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches assessment routes to the router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequireRole(assessorRoles...), h.upsert)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	req := dto.AssessmentListRequest{
		ActivityID:  c.Query("activityId"),
		StudentNISN: c.Query("studentNisn"),
		Type:        c.Query("type"),
	}

	assessments, err := h.service.List(withRequestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "list assessments")
	}
	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) upsert(c *fiber.Ctx) error {
	var payload dto.AssessmentUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.Upsert(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "save assessment")
	}
	return utils.SendSuccess(c, "assessment saved", assessment)
}
