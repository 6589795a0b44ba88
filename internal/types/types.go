package types

import (
	"fmt"
	"time"
)

// Pipeline stage names, used in UpstreamError to say where a request died.
const (
	StageUpload      = "upload"
	StageFetch       = "fetch"
	StageTranscode   = "transcode"
	StageStoreOutput = "store-output"
)

// ValidationError means the request itself was bad. No I/O was performed;
// the caller corrects and resubmits.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError means a store or transcoder call failed mid-pipeline. The
// request is terminal; nothing retries.
type UpstreamError struct {
	Stage string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// ConversionRecord is one row of the conversion history.
type ConversionRecord struct {
	JobID            string    `json:"job_id"`
	OriginalFilename string    `json:"original_filename"`
	TargetFormat     string    `json:"target_format"`
	OutputObject     string    `json:"output_object"`
	CreatedAt        time.Time `json:"created_at"`
}

// Availability is a point-in-time report on a conversion's artifacts.
// Repeated requests (page refresh, websocket ticks) are how callers observe
// eventual completion; nothing here blocks or polls.
type Availability struct {
	VideoFilename         string `json:"video_filename"`
	VideoAvailable        bool   `json:"video_available"`
	VideoDownloadURL      string `json:"video_download_url,omitempty"`
	TranscriptFilename    string `json:"transcription_filename"`
	TranscriptAvailable   bool   `json:"transcription_available"`
	TranscriptDownloadURL string `json:"transcription_download_url,omitempty"`
}
