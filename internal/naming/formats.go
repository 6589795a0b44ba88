package naming

import (
	"path/filepath"
	"strings"
)

// targetFormats is the allow-list of container formats the converter will
// produce. Anything else is rejected before any I/O happens.
var targetFormats = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"avi":  true,
	"mkv":  true,
	"webm": true,
}

// contentTypes maps target formats to an explicit content-type for the
// output object. The map is deliberately partial: formats without an entry
// get an empty override and the store infers a type itself.
var contentTypes = map[string]string{
	"mov": "video/quicktime",
	"avi": "video/x-msvideo",
}

// videoExtensions is the set of source extensions the transcription trigger
// considers eligible. Matched case-insensitively.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mpg":  true,
	".mpeg": true,
	".mkv":  true,
	".webm": true,
}

// ValidTargetFormat reports whether format is on the conversion allow-list.
func ValidTargetFormat(format string) bool {
	return targetFormats[strings.ToLower(format)]
}

// ContentTypeFor returns the explicit content-type override for a target
// format, or "" when the format has none.
func ContentTypeFor(format string) string {
	return contentTypes[strings.ToLower(format)]
}

// EligibleVideo reports whether an object name carries a supported video
// extension.
func EligibleVideo(objectName string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(objectName))]
}
