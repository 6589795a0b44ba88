// Package naming derives every storage object name and local scratch path
// used by the conversion service and the transcription trigger. The two
// processes share no state; these derivations are the whole contract
// between them.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Object name prefixes within the buckets.
const (
	UploadPrefix     = "uploads/"
	ConvertedPrefix  = "converted/"
	TranscriptPrefix = "transcriptions/"
)

// UploadObjectName returns the input-bucket object name for an uploaded
// source video, namespaced by job ID so concurrent requests never collide.
func UploadObjectName(jobID, originalFilename string) string {
	return fmt.Sprintf("%s%s_%s", UploadPrefix, jobID, originalFilename)
}

// OutputFilename returns the bare filename of a converted video (no prefix).
// This is the identifier handed back to the caller and later resolved by the
// availability check.
func OutputFilename(jobID, baseName, targetFormat string) string {
	return fmt.Sprintf("%s_%s.%s", jobID, baseName, targetFormat)
}

// OutputObjectName returns the output-bucket object name for a converted video.
func OutputObjectName(jobID, baseName, targetFormat string) string {
	return ConvertedPrefix + OutputFilename(jobID, baseName, targetFormat)
}

// VideoObjectName maps an output identifier back to its object name.
func VideoObjectName(identifier string) string {
	return ConvertedPrefix + identifier
}

// LocalInputPath returns the scratch path the source video is downloaded to
// for processing. The input_/output_ prefixes keep the two scratch files of
// one request apart even though both carry the job ID.
func LocalInputPath(dir, jobID, originalFilename string) string {
	return filepath.Join(dir, fmt.Sprintf("input_%s_%s", jobID, originalFilename))
}

// LocalOutputPath returns the scratch path ffmpeg writes the converted video to.
func LocalOutputPath(dir, jobID, baseName, targetFormat string) string {
	return filepath.Join(dir, fmt.Sprintf("output_%s", OutputFilename(jobID, baseName, targetFormat)))
}

// BaseName strips the extension from a filename.
func BaseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// TranscriptObjectName derives where the transcription trigger asks the
// external service to write its result: the source object's full name
// (prefix included) with the extension swapped for .json, rooted under
// transcriptions/ in the source's own bucket. A converted source
// "converted/x.mov" therefore lands at "transcriptions/converted/x.json".
func TranscriptObjectName(sourceObjectName string) string {
	return TranscriptPrefix + BaseName(sourceObjectName) + ".json"
}

// TranscriptFilename returns the bare transcript filename for an output
// identifier, used in download URLs.
func TranscriptFilename(identifier string) string {
	return BaseName(identifier) + ".json"
}

// TranscriptLookupName derives where the availability check looks for a
// converted video's transcript. This must resolve to the same object
// TranscriptObjectName produces for the corresponding converted/ source,
// which is what makes transcripts discoverable at all.
func TranscriptLookupName(identifier string) string {
	return TranscriptPrefix + ConvertedPrefix + TranscriptFilename(identifier)
}
