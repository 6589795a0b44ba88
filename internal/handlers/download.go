package handlers

import (
	"errors"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-converter/internal/convert"
	"github.com/codebuildervaibhav/video-converter/internal/naming"
	"github.com/codebuildervaibhav/video-converter/internal/storage"
)

// DownloadHandler serves availability reports and streams stored artifacts
// back to the caller.
type DownloadHandler struct {
	store        storage.ObjectStore
	outputBucket string
	downloadDir  string
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(store storage.ObjectStore, outputBucket, downloadDir string) *DownloadHandler {
	return &DownloadHandler{
		store:        store,
		outputBucket: outputBucket,
		downloadDir:  downloadDir,
	}
}

// Options reports which artifacts of a conversion exist right now.
func (h *DownloadHandler) Options(c *fiber.Ctx) error {
	identifier, err := url.PathUnescape(c.Params("identifier"))
	if err != nil || identifier == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Missing identifier",
			"code":  "ERR_NO_IDENTIFIER",
		})
	}

	report, err := convert.CheckAvailability(c.Context(), h.store, h.outputBucket, identifier)
	if err != nil {
		log.Printf("Availability check failed for %q: %v", identifier, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Error checking for downloadable files in storage",
			"code":  "ERR_STORE_CHECK",
		})
	}

	return c.JSON(report)
}

// Video streams a converted video as an attachment.
func (h *DownloadHandler) Video(c *fiber.Ctx) error {
	filename, err := url.PathUnescape(c.Params("filename"))
	if err != nil || filename == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Missing filename",
			"code":  "ERR_NO_FILENAME",
		})
	}
	return h.serveObject(c, naming.VideoObjectName(filename), filename)
}

// Transcription streams a transcript JSON as an attachment.
func (h *DownloadHandler) Transcription(c *fiber.Ctx) error {
	filename, err := url.PathUnescape(c.Params("filename"))
	if err != nil || filename == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Missing filename",
			"code":  "ERR_NO_FILENAME",
		})
	}
	return h.serveObject(c, naming.TranscriptPrefix+naming.ConvertedPrefix+filename, filename)
}

// serveObject downloads an object to the scratch download dir and streams it
// to the caller. The scratch copy is unlinked as soon as it is opened, so it
// is released when the response finishes whether or not the transfer
// succeeded.
func (h *DownloadHandler) serveObject(c *fiber.Ctx, objectName, downloadFilename string) error {
	localPath := filepath.Join(h.downloadDir, filepath.Base(downloadFilename))

	log.Printf("Download request for gs://%s/%s", h.outputBucket, objectName)

	if err := h.store.Download(c.Context(), h.outputBucket, objectName, localPath); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("Requested object not found: gs://%s/%s", h.outputBucket, objectName)
			return c.Status(404).JSON(fiber.Map{
				"error": "File not found",
				"code":  "ERR_NOT_FOUND",
			})
		}
		log.Printf("Failed to fetch gs://%s/%s: %v", h.outputBucket, objectName, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "An error occurred while processing the download",
			"code":  "ERR_DOWNLOAD_FAILED",
		})
	}

	f, err := os.Open(localPath)
	if err != nil {
		log.Printf("Failed to open scratch copy %s: %v", localPath, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "An error occurred while processing the download",
			"code":  "ERR_DOWNLOAD_FAILED",
		})
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		os.Remove(localPath)
		return c.Status(500).JSON(fiber.Map{
			"error": "An error occurred while processing the download",
			"code":  "ERR_DOWNLOAD_FAILED",
		})
	}

	// Unlink the scratch copy now; the open handle keeps the bytes alive
	// until the response body is fully written, and the file is gone
	// regardless of how the transfer ends.
	if err := os.Remove(localPath); err != nil {
		log.Printf("Failed to remove scratch copy %s: %v", localPath, err)
	}

	c.Attachment(downloadFilename)
	return c.SendStream(f, int(info.Size()))
}
