// The trigger binary hosts the transcription Cloud Function locally or on
// Cloud Run. It fires once per new object in the watched buckets and submits
// a speech-transcription job for eligible videos.
package main

import (
	"context"
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/codebuildervaibhav/video-converter/internal/transcribe"
)

func init() {
	functions.CloudEvent("TranscribeVideo", transcribeVideo)
}

// transcribeVideo handles one storage object-finalize event. It never
// returns an error for processing failures: the event source would redeliver,
// and this pipeline is fire-and-forget by design.
func transcribeVideo(ctx context.Context, e event.Event) error {
	var ev transcribe.StorageEvent
	if err := e.DataAs(&ev); err != nil {
		log.Printf("Failed to decode event data: %v", err)
		return nil
	}

	submitter, err := transcribe.NewVideoIntelligenceSubmitter(ctx, "")
	if err != nil {
		log.Printf("Failed to create transcription client: %v", err)
		return nil
	}
	defer submitter.Close()

	return transcribe.NewTrigger(submitter).HandleObject(ctx, ev)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}
