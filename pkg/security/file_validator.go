package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxPhotoBytes is the advisory ceiling shown on the application form.
const DefaultMaxPhotoBytes int64 = 2 << 20

var (
	ErrPhotoEmpty     = errors.New("photo is empty")
	ErrPhotoTooLarge  = errors.New("photo exceeds the maximum size")
	ErrPhotoExtension = errors.New("photo extension not allowed")
	ErrPhotoSpoofed   = errors.New("photo content does not match extension")
	ErrPhotoMIME      = errors.New("photo type not allowed")
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
}

// Magic byte signatures for allowed photo types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
}

// ImageMIMETypes is the accept list for profile photos.
var ImageMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ValidatePhoto performs 3-layer validation of an uploaded profile photo:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. MIME type sniffed from content must be an accepted image type
func ValidatePhoto(filename string, data []byte, maxBytes int64) (FileValidationResult, error) {
	var result FileValidationResult
	if len(data) == 0 {
		return result, ErrPhotoEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return result, ErrPhotoTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	result.Extension = ext
	if _, ok := magicBytes[ext]; !ok {
		return result, ErrPhotoExtension
	}

	if !validateMagicBytes(ext, data) {
		return result, ErrPhotoSpoofed
	}

	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	if !mimetype.EqualsAny(detected.String(), ImageMIMETypes...) {
		return result, ErrPhotoMIME
	}
	return result, nil
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false // File too small to validate
	}
	for _, sig := range magicBytes[ext] {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// IsImageContentType reports whether a declared content type is acceptable.
func IsImageContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range ImageMIMETypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// IsImageExtension checks if the extension is an image type
func IsImageExtension(ext string) bool {
	_, ok := magicBytes[strings.ToLower(ext)]
	return ok
}
