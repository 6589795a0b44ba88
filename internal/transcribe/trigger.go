// Package transcribe contains the storage-event handler that kicks off
// asynchronous speech transcription for newly stored videos.
package transcribe

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/codebuildervaibhav/video-converter/internal/naming"
)

// StorageEvent is the slice of a GCS object-finalize event the trigger
// consumes.
type StorageEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// Job describes one transcription submission. The locale and recognition
// flags are fixed; the trigger fills in only the URIs.
type Job struct {
	InputURI             string
	OutputURI            string
	LanguageCode         string
	AutomaticPunctuation bool
	SpeakerDiarization   bool
}

// Submitter starts a long-running transcription job. It acknowledges the
// start with an error or nil and nothing else: completion is never tracked
// by this system, so no operation handle is exposed for anything to poll.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Fixed transcription settings, matching what the download side expects.
const (
	languageCode = "en-US"
)

// Trigger decides eligibility for a stored object and submits a
// transcription job for it.
type Trigger struct {
	submitter Submitter
}

// NewTrigger creates a trigger around a submitter.
func NewTrigger(submitter Submitter) *Trigger {
	return &Trigger{submitter: submitter}
}

// HandleObject processes one object-created event. It always returns nil:
// the event source has no retry contract this design wants to invoke, so
// every failure is logged and swallowed.
func (t *Trigger) HandleObject(ctx context.Context, ev StorageEvent) error {
	if ev.Bucket == "" || ev.Name == "" {
		log.Printf("Event missing bucket or object name, discarding")
		return nil
	}

	// Feedback-loop guard: transcription outputs are never themselves
	// eligible for transcription.
	if strings.HasPrefix(ev.Name, naming.TranscriptPrefix) {
		log.Printf("Object %q is a transcription output, skipping", ev.Name)
		return nil
	}

	if !naming.EligibleVideo(ev.Name) {
		log.Printf("Object %q is not a supported video type, skipping", ev.Name)
		return nil
	}

	inputURI := fmt.Sprintf("gs://%s/%s", ev.Bucket, ev.Name)
	outputURI := fmt.Sprintf("gs://%s/%s", ev.Bucket, naming.TranscriptObjectName(ev.Name))

	log.Printf("Submitting transcription for %s -> %s", inputURI, outputURI)

	job := Job{
		InputURI:             inputURI,
		OutputURI:            outputURI,
		LanguageCode:         languageCode,
		AutomaticPunctuation: true,
		SpeakerDiarization:   true,
	}

	if err := t.submitter.Submit(ctx, job); err != nil {
		log.Printf("Failed to start transcription for %s: %v", inputURI, err)
	}

	return nil
}
