package convert

import (
	"context"
	"fmt"
	"os/exec"
)

// Transcoder converts a local video file into another container format. The
// conversion itself is entirely the external tool's business; callers see
// only an exit status and diagnostic text.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// FFmpegTranscoder shells out to an ffmpeg binary.
type FFmpegTranscoder struct {
	binary string
}

// NewFFmpegTranscoder creates a transcoder using the given binary name or
// path. An empty binary falls back to "ffmpeg" on PATH.
func NewFFmpegTranscoder(binary string) *FFmpegTranscoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegTranscoder{binary: binary}
}

// Transcode runs ffmpeg on inputPath, letting it pick codecs from the output
// extension. Diagnostic output is folded into the returned error so the
// caller can surface it.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, t.binary,
		"-i", inputPath,
		"-y", // Overwrite output
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, string(output))
	}

	return nil
}
