// Package storage persists uploaded images, generated rasters and SVG
// templates.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// BlobStore is the contract shared by the filesystem and Cloud Storage backends.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	URL(key string) string
}

var unsafeSegment = regexp.MustCompile(`[^a-z0-9_-]+`)

// UploadKey returns a fresh key for a reference image uploaded under category.
func UploadKey(category, ext string) string {
	return path.Join("uploads", segment(category), uuid.NewString()+normalizeExt(ext))
}

// TemplateKey returns a fresh key for a generated artifact of a category.
func TemplateKey(categoryID int64, variation int, ext string) string {
	return path.Join("templates", fmt.Sprintf("%d", categoryID), fmt.Sprintf("%s_v%d%s", uuid.NewString(), variation+1, normalizeExt(ext)))
}

// ExtensionFor maps an image MIME type to a file extension.
func ExtensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}

func segment(s string) string {
	s = unsafeSegment.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "general"
	}
	return s
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return base + "/" + key
}
