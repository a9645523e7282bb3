package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for image.Decode
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// PhotoKey builds a unique object key: <unix-ms>-<short-uuid>-<sanitized name>.
func PhotoKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "photo"
	}
	return fmt.Sprintf("%d-%s-%s%s", now.UnixMilli(), uuid.NewString()[:8], base, ext)
}

// sanitizeFilename replaces spaces with underscores and keeps only ASCII
// alphanumerics, '_' and '-'. Storage backends reject other characters.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ReencodePhoto decodes data, downsizes it so its longest side is at most
// maxDimension and always writes it back as JPEG on a white background. Only
// decoded pixels survive, so anything appended to or embedded in the upload
// is dropped.
func ReencodePhoto(data []byte, maxDimension, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := width, height
	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		newWidth, newHeight = maxDimension, maxDimension
		if width > height {
			newHeight = max(1, int(float64(height)*float64(maxDimension)/float64(width)))
		} else {
			newWidth = max(1, int(float64(width)*float64(maxDimension)/float64(height)))
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	if newWidth == width && newHeight == height {
		draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
