package workdrive

import (
	"mime"
	"path"
	"strings"
)

// MimeDetector maps a filename to a best-guess MIME type. An empty result
// means the detector has no opinion and the remote-reported type is used.
type MimeDetector interface {
	Detect(filename string) string
}

// ExtensionDetector resolves MIME types from the filename extension using
// the platform mime table.
type ExtensionDetector struct{}

func (ExtensionDetector) Detect(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return ""
	}
	t := mime.TypeByExtension(ext)
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
