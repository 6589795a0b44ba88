package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-converter/internal/convert"
	"github.com/codebuildervaibhav/video-converter/internal/types"
)

// ConvertHandler handles video conversion requests.
type ConvertHandler struct {
	orchestrator *convert.Orchestrator
	maxSizeMB    int
}

// NewConvertHandler creates a new conversion handler.
func NewConvertHandler(orchestrator *convert.Orchestrator, maxSizeMB int) *ConvertHandler {
	return &ConvertHandler{
		orchestrator: orchestrator,
		maxSizeMB:    maxSizeMB,
	}
}

// Handle processes the multipart conversion request and redirects to the
// download options page on success.
func (h *ConvertHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Missing file",
			"code":  "ERR_NO_FILE",
		})
	}

	targetFormat := c.FormValue("format")
	if file.Filename == "" || targetFormat == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid file or format selected",
			"code":  "ERR_INVALID_REQUEST",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": "File too large",
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
			"code":  "ERR_READ_FAILED",
		})
	}
	defer src.Close()

	identifier, err := h.orchestrator.Convert(c.Context(), convert.Request{
		Filename:     file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		Body:         src,
		TargetFormat: targetFormat,
	})
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			return c.Status(400).JSON(fiber.Map{
				"error": verr.Error(),
				"code":  "ERR_VALIDATION",
			})
		}
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_CONVERSION_FAILED",
		})
	}

	return c.Redirect("/download_options/"+identifier, fiber.StatusSeeOther)
}
