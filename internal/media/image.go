// Package media locates and decodes images and audio references embedded in
// decoded notification payloads.
package media

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Image is a decoded embedded image. Data holds the original encoded bytes;
// Path is set when the image came from a file reference.
type Image struct {
	Data   []byte
	Width  int
	Height int
	Path   string
}

// Icon shape heuristics: small near-square images are assumed to be avatars,
// anything larger or clearly rectangular is treated as a content photo.
const (
	iconMaxDim       = 120
	iconSquareSlack  = 2
	photoSquareSlack = 5
	stickerMaxWidth  = 300
)

// DecodeValue decodes an image from a payload leaf: raw bytes, or a string
// holding a filesystem path. Returns nil when the value is not a decodable
// image.
func DecodeValue(v any) *Image {
	switch val := v.(type) {
	case []byte:
		return decodeBytes(val, "")
	case string:
		return DecodePath(val)
	}
	return nil
}

// DecodePath reads and decodes an image file. Returns nil when the path does
// not resolve to a valid image on disk.
func DecodePath(path string) *Image {
	path = expandHome(path)
	if path == "" || !filepath.IsAbs(path) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return decodeBytes(data, path)
}

func decodeBytes(data []byte, path string) *Image {
	if len(data) == 0 {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return &Image{Data: data, Width: cfg.Width, Height: cfg.Height, Path: path}
}

// IsIconShaped reports whether img looks like a small square avatar/icon.
func (img *Image) IsIconShaped() bool {
	if img == nil {
		return false
	}
	return abs(img.Width-img.Height) <= iconSquareSlack &&
		img.Width < iconMaxDim && img.Height < iconMaxDim
}

// IsPhotoShaped reports whether img looks like real photo content: larger
// than an icon, or non-square beyond icon tolerance.
func (img *Image) IsPhotoShaped() bool {
	if img == nil {
		return false
	}
	return img.Width > iconMaxDim || img.Height > iconMaxDim ||
		abs(img.Width-img.Height) > photoSquareSlack
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
