package security

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// TypeDetector reports the media type of the file at path.
type TypeDetector func(path string) (string, error)

// Extensions the built-in mime table does not cover for document formats.
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".html": "text/html",
	".htm":  "text/html",
	".txt":  "text/plain",
}

// DetectMediaType is the default TypeDetector. It maps the file extension
// first and falls back to content sniffing of the leading bytes.
func DetectMediaType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := documentTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return stripParams(t), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	// net/http sniffing uses at most the first 512 bytes.
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return stripParams(http.DetectContentType(buf[:n])), nil
}

// stripParams drops media-type parameters: "text/html; charset=utf-8"
// becomes "text/html".
func stripParams(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
