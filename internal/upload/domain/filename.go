package domain

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bolsatrabajo/api/internal/apperror"
)

// Filename is a parsed stored-file name of the form
// <kind>_<ownerId>_<timestamp>.<ext>.
type Filename struct {
	Name      string
	Kind      Kind
	OwnerID   string
	Timestamp int64
	Ext       string
}

// ParseFilename rejects traversal sequences before anything else, then
// requires the kind prefix to match expected.
func ParseFilename(name string, expected Kind) (Filename, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return Filename{}, apperror.Validation(apperror.CodeInvalidFilename, "")
	}

	malformed := apperror.Validation(apperror.CodeMalformedFilename, "")

	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return Filename{}, malformed
	}
	if Kind(parts[0]) != expected {
		return Filename{}, malformed
	}
	owner := strings.Join(parts[1:len(parts)-1], "_")
	if owner == "" {
		return Filename{}, malformed
	}

	last := parts[len(parts)-1]
	dot := strings.LastIndexByte(last, '.')
	if dot <= 0 || dot == len(last)-1 {
		return Filename{}, malformed
	}
	ts, err := strconv.ParseInt(last[:dot], 10, 64)
	if err != nil || ts < 0 {
		return Filename{}, malformed
	}

	return Filename{
		Name:      name,
		Kind:      expected,
		OwnerID:   owner,
		Timestamp: ts,
		Ext:       strings.ToLower(last[dot+1:]),
	}, nil
}

// NewFilename builds a conforming name with a millisecond timestamp.
func NewFilename(kind Kind, ownerID string, at time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return fmt.Sprintf("%s_%s_%d.%s", kind, ownerID, at.UnixMilli(), ext)
}

// StoredPath is the relative reference persisted on the owning record.
func StoredPath(kind Kind, name string) string {
	return path.Join("uploads", kind.Segment(), name)
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

// ContentType derives the served content type from an extension.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ExtensionFor is the inverse of ContentType for the types accepted on upload.
func ExtensionFor(mime string) string {
	switch mime {
	case "application/pdf":
		return "pdf"
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	}
	return ""
}
