package convert

import (
	"context"
	"fmt"
	"log"

	"github.com/codebuildervaibhav/video-converter/internal/naming"
	"github.com/codebuildervaibhav/video-converter/internal/storage"
	"github.com/codebuildervaibhav/video-converter/internal/types"
)

// CheckAvailability reports whether the converted video and its transcript
// exist in the output bucket right now. Each call is a single point-in-time
// check; callers refresh to observe eventual completion.
func CheckAvailability(ctx context.Context, store storage.ObjectStore, outputBucket, identifier string) (types.Availability, error) {
	videoObject := naming.VideoObjectName(identifier)
	transcriptObject := naming.TranscriptLookupName(identifier)

	report := types.Availability{
		VideoFilename:      identifier,
		TranscriptFilename: naming.TranscriptFilename(identifier),
	}

	videoExists, err := store.Exists(ctx, outputBucket, videoObject)
	if err != nil {
		return report, fmt.Errorf("failed to check gs://%s/%s: %v", outputBucket, videoObject, err)
	}
	if videoExists {
		report.VideoAvailable = true
		report.VideoDownloadURL = "/download/video/" + identifier
	} else {
		log.Printf("Video not yet available: gs://%s/%s", outputBucket, videoObject)
	}

	transcriptExists, err := store.Exists(ctx, outputBucket, transcriptObject)
	if err != nil {
		return report, fmt.Errorf("failed to check gs://%s/%s: %v", outputBucket, transcriptObject, err)
	}
	if transcriptExists {
		report.TranscriptAvailable = true
		report.TranscriptDownloadURL = "/download/transcription/" + report.TranscriptFilename
	} else {
		log.Printf("Transcription not yet available: gs://%s/%s", outputBucket, transcriptObject)
	}

	return report, nil
}
