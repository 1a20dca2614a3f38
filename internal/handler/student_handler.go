package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/middleware"
	"github.com/noah-isme/sikori-api/internal/service"
	"github.com/noah-isme/sikori-api/internal/utils"
)

// StudentHandler wires student roster endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes. Reads are open to every signed-in user,
// writes to administrators.
func (h *StudentHandler) Register(router fiber.Router) {
	manage := middleware.RequireRole(managerRoles...)

	router.Get("", h.list)
	router.Get("/classes", h.classes)
	router.Post("", manage, h.create)
	router.Post("/bulk", manage, h.bulk)
	router.Delete("/:nisn", manage, h.delete)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	req := dto.StudentListRequest{
		Class:  c.Query("class"),
		Search: c.Query("search"),
	}

	students, err := h.service.List(withRequestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) classes(c *fiber.Ctx) error {
	classes, err := h.service.Classes(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list classes")
	}
	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Create(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create student")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

// bulk accepts the bare JSON array produced by the spreadsheet importer.
func (h *StudentHandler) bulk(c *fiber.Ctx) error {
	var rows []dto.StudentCreateRequest
	if err := c.BodyParser(&rows); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload must be an array of students")
	}

	response, err := h.service.BulkImport(withRequestContext(c), actorFromContext(c), dto.StudentBulkRequest{Students: rows})
	if err != nil {
		return respondError(c, h.logger, err, "import students")
	}
	return utils.SendSuccess(c, "students imported", response)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	nisn := c.Params("nisn")
	if err := h.service.Delete(withRequestContext(c), actorFromContext(c), nisn); err != nil {
		return respondError(c, h.logger, err, "delete student")
	}
	return utils.SendSuccess(c, "student deleted", fiber.Map{"nisn": nisn})
}
