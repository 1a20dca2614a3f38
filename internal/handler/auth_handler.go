package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/service"
	"github.com/noah-isme/sikori-api/internal/utils"
)

// AuthHandler exposes login and the signed-in user's profile.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes. Login sits behind limiter, the profile
// routes behind protected; nil handlers are skipped.
func (h *AuthHandler) Register(router fiber.Router, limiter, protected fiber.Handler) {
	router.Post("/login", chain(limiter, h.login)...)
	router.Get("/me", chain(protected, h.me)...)
	router.Put("/profile", chain(protected, h.updateProfile)...)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "log in")
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Me(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "load profile")
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *AuthHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.UpdateProfile(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "update profile")
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func chain(handlers ...fiber.Handler) []fiber.Handler {
	result := make([]fiber.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			result = append(result, h)
		}
	}
	return result
}
