package openai

import "strings"

const (
	defaultImageModel  = "dall-e-3"
	defaultChatModel   = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o"
)

var modelCanonical = map[string]string{
	"dall-e-2":      "dall-e-2",
	"dall-e-3":      "dall-e-3",
	"gpt-image-1":   "gpt-image-1",
	"gpt-4o":        "gpt-4o",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4-turbo":   "gpt-4-turbo",
	"gpt-3.5-turbo": "gpt-3.5-turbo",
}

var modelAliases = map[string]string{
	"dalle3":       "dall-e-3",
	"dalle-3":      "dall-e-3",
	"dall-e3":      "dall-e-3",
	"dalle2":       "dall-e-2",
	"dalle-2":      "dall-e-2",
	"gpt4o":        "gpt-4o",
	"gpt-4-vision": "gpt-4o",
	"gpt4o-mini":   "gpt-4o-mini",
	"gpt4omini":    "gpt-4o-mini",
	"gpt-3.5":      "gpt-3.5-turbo",
	"gpt-35-turbo": "gpt-3.5-turbo",
}

// normalizeModel resolves name to a known model id. The second result is
// "alias" or "defaulted" when the input was rewritten.
func normalizeModel(name, fallback string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := modelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := modelAliases[normalized]; ok {
		return alias, "alias"
	}
	return fallback, "defaulted"
}
