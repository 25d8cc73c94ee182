package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrNoExtension       = errors.New("file has no extension")
	ErrExtensionRejected = errors.New("file extension not allowed")
	ErrContentMismatch   = errors.New("file content does not match extension")
	ErrMIMERejected      = errors.New("file type not allowed")
)

// Magic byte signatures per lowercase extension.
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
}

// Strict MIME types. application/octet-stream is never accepted.
var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ValidateImage performs 3-layer validation on an uploaded image:
// 1. Extension whitelist
// 2. Magic bytes match the extension
// 3. Sniffed MIME type whitelist
func ValidateImage(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ErrNoExtension
	}
	if _, ok := magicBytes[ext]; !ok {
		return ErrExtensionRejected
	}
	if !validateMagicBytes(ext, data) {
		return ErrContentMismatch
	}
	if !imageMIMETypes[http.DetectContentType(data)] {
		return ErrMIMERejected
	}
	return nil
}

func validateMagicBytes(ext string, data []byte) bool {
	for _, sig := range magicBytes[ext] {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedImageExtensions is used in error messages.
func AllowedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}
