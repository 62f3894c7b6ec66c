package image

import (
	"context"
	"strings"
)

// GenerateRequest describes a normalized request passed to an image provider.
type GenerateRequest struct {
	Prompt    string
	Quantity  int
	Size      string
	Quality   string
	RequestID string
}

// Asset represents a generated image.
type Asset struct {
	URL           string
	Format        string
	Width         int
	Height        int
	Data          []byte
	RevisedPrompt string
}

// Generator is the contract implemented by image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Asset, error)
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}
