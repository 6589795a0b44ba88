package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/video-converter/internal/convert"
	"github.com/codebuildervaibhav/video-converter/internal/storage"
)

// StatusHandler pushes availability updates over a websocket so the download
// page does not have to poll by refreshing. Each tick is the same
// point-in-time check the options endpoint performs.
type StatusHandler struct {
	store        storage.ObjectStore
	outputBucket string
	interval     time.Duration
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(store storage.ObjectStore, outputBucket string, interval time.Duration) *StatusHandler {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &StatusHandler{
		store:        store,
		outputBucket: outputBucket,
		interval:     interval,
	}
}

// Handle streams availability reports for the identifier in the route until
// both artifacts exist or the client goes away.
func (h *StatusHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	identifier := c.Params("identifier")
	if identifier == "" {
		c.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing identifier"}`))
		return
	}

	log.Printf("Status stream opened for %q", identifier)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		report, err := convert.CheckAvailability(context.Background(), h.store, h.outputBucket, identifier)
		if err != nil {
			log.Printf("Status stream check failed for %q: %v", identifier, err)
			c.WriteMessage(websocket.TextMessage, []byte(`{"error":"storage check failed"}`))
			return
		}

		payload, err := json.Marshal(report)
		if err != nil {
			log.Printf("Status stream encode failed: %v", err)
			return
		}

		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("Status stream closed for %q: %v", identifier, err)
			return
		}

		if report.VideoAvailable && report.TranscriptAvailable {
			log.Printf("Status stream complete for %q", identifier)
			return
		}

		<-ticker.C
	}
}
