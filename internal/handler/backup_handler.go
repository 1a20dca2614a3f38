package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/middleware"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/service"
	"github.com/noah-isme/sikori-api/internal/utils"
)

// BackupHandler exposes export and restore of the whole store.
type BackupHandler struct {
	service service.BackupService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewBackupHandler constructs the handler.
func NewBackupHandler(service service.BackupService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		service: service,
		logger:  logger.With().Str("component", "backup_handler").Logger(),
		now:     time.Now,
	}
}

// Register attaches backup routes. The public export is mounted without
// protected; the rest require a super admin.
func (h *BackupHandler) Register(router fiber.Router, protected fiber.Handler) {
	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	router.Get("/public", h.exportPublic)
	router.Get("", chain(protected, superAdmin, h.export)...)
	router.Post("/restore", chain(protected, superAdmin, h.restore)...)
}

func (h *BackupHandler) export(c *fiber.Ctx) error {
	exportedBy := stringLocal(c, middleware.LocalUsername)
	if exportedBy == "" {
		exportedBy = fmt.Sprintf("user:%d", userIDFromContext(c))
	}

	doc, err := h.service.Export(withRequestContext(c), exportedBy)
	if err != nil {
		return respondError(c, h.logger, err, "export backup")
	}
	return h.sendDocument(c, doc)
}

func (h *BackupHandler) exportPublic(c *fiber.Ctx) error {
	doc, err := h.service.ExportPublic(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "export backup")
	}
	return h.sendDocument(c, doc)
}

func (h *BackupHandler) sendDocument(c *fiber.Ctx, doc dto.BackupDocument) error {
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, service.BackupFilename(h.now())))
	return c.Status(fiber.StatusOK).JSON(doc)
}

// restore takes either a raw JSON body or a multipart upload in field "file".
func (h *BackupHandler) restore(c *fiber.Ctx) error {
	var raw []byte
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		header, err := c.FormFile("file")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "file is required")
		}
		raw, err = service.ReadBackupUpload(header)
		if err != nil {
			return respondError(c, h.logger, err, "read backup upload")
		}
	} else {
		raw = append([]byte(nil), c.Body()...)
	}

	response, err := h.service.Restore(withRequestContext(c), actorFromContext(c), raw)
	if err != nil {
		return respondError(c, h.logger, err, "restore backup")
	}
	return utils.SendSuccess(c, "backup restored", response)
}
