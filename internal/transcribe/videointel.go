package transcribe

import (
	"context"
	"fmt"
	"log"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/api/option"
)

// VideoIntelligenceSubmitter submits speech-transcription jobs to the Video
// Intelligence API. The service writes its result to the job's output URI
// itself; nothing here reads it back.
type VideoIntelligenceSubmitter struct {
	client *videointelligence.Client
}

// NewVideoIntelligenceSubmitter creates a submitter. credentialsFile may be
// empty to use application default credentials.
func NewVideoIntelligenceSubmitter(ctx context.Context, credentialsFile string) (*VideoIntelligenceSubmitter, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create video intelligence client: %w", err)
	}

	return &VideoIntelligenceSubmitter{client: client}, nil
}

// Submit starts the annotation operation and drops the handle: the operation
// name is logged for manual debugging only.
func (s *VideoIntelligenceSubmitter) Submit(ctx context.Context, job Job) error {
	req := &videointelligencepb.AnnotateVideoRequest{
		InputUri:  job.InputURI,
		OutputUri: job.OutputURI,
		Features:  []videointelligencepb.Feature{videointelligencepb.Feature_SPEECH_TRANSCRIPTION},
		VideoContext: &videointelligencepb.VideoContext{
			SpeechTranscriptionConfig: &videointelligencepb.SpeechTranscriptionConfig{
				LanguageCode:               job.LanguageCode,
				EnableAutomaticPunctuation: job.AutomaticPunctuation,
				EnableSpeakerDiarization:   job.SpeakerDiarization,
			},
		},
	}

	op, err := s.client.AnnotateVideo(ctx, req)
	if err != nil {
		return fmt.Errorf("annotate video request failed: %w", err)
	}

	log.Printf("Transcription operation started: %s", op.Name())
	return nil
}

// Close releases the underlying client.
func (s *VideoIntelligenceSubmitter) Close() error {
	return s.client.Close()
}
