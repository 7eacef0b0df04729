package handlers

import (
	_ "embed"

	"github.com/amirphl/era4-frontend/app/dto"
	"github.com/amirphl/era4-frontend/utils"
	"github.com/gofiber/fiber/v3"
)

//go:embed web/index.html
var indexHTML []byte

// PageHandlerInterface defines the contract for page handlers.
type PageHandlerInterface interface {
	Index(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// PageHandler serves the single-page frontend and the health probe.
type PageHandler struct {
	version string
}

// NewPageHandler creates a new page handler.
func NewPageHandler(version string) *PageHandler {
	return &PageHandler{version: version}
}

// Index serves the animal selector and upload page.
// @Summary Frontend page
// @Description Fixed HTML document with the animal selector and the upload form
// @Tags Page
// @Produce html
// @Success 200 {string} string "HTML document"
// @Router / [get]
func (h *PageHandler) Index(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(indexHTML)
}

// Health reports service liveness.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Router /health [get]
func (h *PageHandler) Health(c fiber.Ctx) error {
	return successResponse(c, fiber.StatusOK, "Service is healthy", dto.HealthResponse{
		Status:    "ok",
		Timestamp: utils.UTCNow().Unix(),
		Version:   h.version,
		Service:   utils.ServiceName,
	})
}
