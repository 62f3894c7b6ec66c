// Package vision describes reference images for prompt synthesis.
package vision

import (
	"context"
	"fmt"
	"strings"
)

// Image is an encoded reference image.
type Image struct {
	Ref  string
	Data []byte
	MIME string
}

// Describer returns a prose description of img. An empty string with a nil
// error means no description is available.
type Describer interface {
	Describe(ctx context.Context, img Image, categoryHint string) (string, error)
}

// DefaultDescription is used when no reference image could be described.
func DefaultDescription(category string, multiple bool) string {
	category = strings.TrimSpace(category)
	if multiple {
		return fmt.Sprintf("A design template incorporating multiple images with visual elements relevant to %s", category)
	}
	return fmt.Sprintf("A design template with visual elements relevant to %s", category)
}

// AnalysisPrompt is the instruction sent alongside the image.
func AnalysisPrompt(category string) string {
	category = strings.TrimSpace(category)
	return "Analyze this image and provide a detailed description focusing on: " +
		"1) Main visual elements and objects, 2) Color scheme and palette, " +
		"3) Style and design approach (note if it's photorealistic, illustrative, vector-style, or flat design), " +
		"4) Composition and layout, 5) Theme and mood. " +
		fmt.Sprintf("This description will be used to generate a PHOTOREALISTIC design template for the '%s' category. ", category) +
		"IMPORTANT: If the reference image is illustrative, vector-style, or flat design, note this but the generated output must be photorealistic. " +
		fmt.Sprintf("Be specific about visual elements that would be relevant for creating a realistic, photographic-style design in the %s context. ", category) +
		"Format your response as a concise description suitable for an AI image generation prompt, emphasizing realistic, photographic qualities."
}

// Combine joins several descriptions into one reference clause.
func Combine(descriptions []string) string {
	var parts []string
	for _, d := range descriptions {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, strings.TrimRight(d, ". "))
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "Image %d: %s.", i+1, p)
	}
	return sb.String()
}
