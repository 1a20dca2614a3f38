package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/middleware"
	"github.com/noah-isme/sikori-api/internal/service"
	"github.com/noah-isme/sikori-api/internal/utils"
)

// ActivityHandler wires extracurricular activity endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	manage := middleware.RequireRole(managerRoles...)

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", manage, h.create)
	router.Delete("/:id", manage, h.delete)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	activities, err := h.service.List(withRequestContext(c), c.Query("class"))
	if err != nil {
		return respondError(c, h.logger, err, "list activities")
	}
	return utils.SendSuccess(c, "activities retrieved", activities)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	activity, err := h.service.Get(withRequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "fetch activity")
	}
	return utils.SendSuccess(c, "activity retrieved", activity)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	activity, err := h.service.Create(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create activity")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", activity)
}

func (h *ActivityHandler) delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(withRequestContext(c), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "delete activity")
	}
	return utils.SendSuccess(c, "activity deleted", fiber.Map{"id": id})
}
