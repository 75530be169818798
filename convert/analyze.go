package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonwraymond/docmill/security"
)

// DocumentInfo summarizes an input document before conversion.
type DocumentInfo struct {
	Path      string
	Extension string // lowercased, including the dot
	MediaType string
	SHA256    string // hex digest of the file contents
	SizeBytes int64
}

// Analyze inspects the document at path: media type, content digest, and size.
// The file is read once in streaming fashion for the digest.
func Analyze(path string) (DocumentInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("convert: stat %s: %w", path, err)
	}

	mediaType, err := security.DetectMediaType(path)
	if err != nil {
		return DocumentInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("convert: open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return DocumentInfo{}, fmt.Errorf("convert: hash %s: %w", path, err)
	}

	return DocumentInfo{
		Path:      path,
		Extension: strings.ToLower(filepath.Ext(path)),
		MediaType: mediaType,
		SHA256:    hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes: fi.Size(),
	}, nil
}
