package promptsynth

import (
	"fmt"
	"strings"

	"github.com/juliusiqbal/ai-img-gen/internal/profile"
	"github.com/juliusiqbal/ai-img-gen/internal/textextract"
)

const hardConstraints = "MANDATORY RULES: " +
	"All text must be perfectly horizontal with zero rotation, tilt, or curvature. " +
	"Every colored region must be a single solid fill with no gradients. " +
	"All text inside one text block must share one font size. " +
	"Reproduce every requested text exactly as written, character for character. " +
	"Keep every text in the same language it was given in; never translate it. " +
	"Use high contrast between text and its background so it stays legible."

const photoOpener = "The image MUST be a real photograph, not an illustration."

const photoClosing = "The design must be PHOTOREALISTIC, using high-quality photography or photorealistic 3D rendering " +
	"with natural lighting, realistic shadows, depth, and texture. " +
	"DO NOT use vector, cartoon, flat design, digital art, illustration, or animation styles."

// variationNudges differentiates templates in one batch; index with variation mod 4.
var variationNudges = [4]string{
	"Focus on a bold, vibrant color scheme with strong visual impact, rendered in photorealistic style with natural lighting.",
	"Use a different composition and layout approach, perhaps with more white space or alternative element arrangement, maintaining photorealistic quality.",
	"Emphasize a different aspect of the category theme while maintaining strict relevance, with realistic photographic rendering.",
	"Create a variation with different visual elements but keeping the same category context, all rendered in photorealistic style with natural textures and lighting.",
}

// VariationNudge returns the stylistic nudge for a variation index.
func VariationNudge(variation int) string {
	idx := variation % len(variationNudges)
	if idx < 0 {
		idx += len(variationNudges)
	}
	return variationNudges[idx]
}

// Basic assembles a prompt from fixed building blocks using the default
// profile table. The output depends only on its arguments.
func Basic(req Request, variation int) string {
	return buildBasic(profile.Default(), req, variation)
}

func buildBasic(table *profile.Table, req Request, variation int) string {
	category := strings.TrimSpace(req.Category)
	var parts []string

	parts = append(parts, hardConstraints)
	parts = append(parts, photoOpener, fmt.Sprintf("Create a professional, high-quality design template for %s.", category))

	details := req.freeFormDetails()
	if details == "" {
		p := table.For(category)
		parts = append(parts,
			fmt.Sprintf("MUST be relevant to %s and include %s.", category, p.Theme),
			fmt.Sprintf("Include visual elements such as: %s.", p.AllowedElements),
			strings.TrimRight(p.ForbiddenElements, ".")+".",
			fmt.Sprintf("Use %s in natural, realistic tones.", p.ColorGuidance),
		)
	} else {
		parts = append(parts, fmt.Sprintf("Design requirements: %s.", strings.TrimRight(details, ". ")))
		if elements := textextract.Extract(details); len(elements) > 0 {
			parts = append(parts, "Include this text exactly as written: "+quoteAll(elements)+".")
		}
	}
	if req.Preferences != nil {
		parts = append(parts, preferenceClauses(*req.Preferences)...)
	}

	if desc := strings.TrimSpace(req.ImageDescription); desc != "" {
		parts = append(parts,
			fmt.Sprintf("The design should be inspired by these visual elements from the reference: %s.", strings.TrimRight(desc, ". ")),
			"IMPORTANT: Even if the reference image is illustrative, vector-style, or stylized, convert it into a photorealistic style with natural lighting, shadows, and textures.",
		)
	}

	parts = append(parts, photoClosing)
	parts = append(parts, VariationNudge(variation))
	return strings.Join(parts, " ")
}

func preferenceClauses(p DesignPreferences) []string {
	var out []string
	if v := strings.TrimSpace(p.TemplateType); v != "" {
		out = append(out, fmt.Sprintf("Format: %s.", v))
	}
	if v := strings.TrimSpace(p.Keywords); v != "" {
		out = append(out, fmt.Sprintf("Keywords: %s.", v))
	}
	if v := strings.TrimSpace(p.ColorTheme); v != "" {
		out = append(out, fmt.Sprintf("Color theme: %s.", v))
	}
	if v := strings.TrimSpace(p.BackgroundColor); v != "" {
		out = append(out, fmt.Sprintf("Background color: %s.", v))
	}
	if v := strings.TrimSpace(p.FontFamily); v != "" {
		out = append(out, fmt.Sprintf("Typography: %s typeface.", v))
	}
	return out
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
