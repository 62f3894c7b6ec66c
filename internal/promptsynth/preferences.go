package promptsynth

import "strings"

// PlaceholderFontSize fills font size slots the caller left empty.
const PlaceholderFontSize = "medium"

// DesignPreferences is the caller's explicit styling bundle. TextBlocks are
// derived during synthesis; values produced by PreferencesBuilder are not
// mutated afterwards.
type DesignPreferences struct {
	TemplateType      string   `json:"template_type,omitempty"`
	Keywords          string   `json:"keywords,omitempty"`
	FontFamily        string   `json:"font_family,omitempty"`
	FontSizes         []string `json:"font_sizes,omitempty"`
	ColorTheme        string   `json:"color_theme,omitempty"`
	BackgroundColor   string   `json:"background_color,omitempty"`
	ImageStyle        string   `json:"image_style,omitempty"`
	ProjectName       string   `json:"project_name,omitempty"`
	CategoryName      string   `json:"category_name,omitempty"`
	CategoryDetails   string   `json:"category_details,omitempty"`
	NumberOfTemplates int      `json:"number_of_templates,omitempty"`
	TextBlocks        []string `json:"text_blocks,omitempty"`
}

// Structured reports whether the preferences select the structured path.
func (p DesignPreferences) Structured() bool {
	return strings.TrimSpace(p.TemplateType) != "" || strings.TrimSpace(p.Keywords) != ""
}

// PreferencesBuilder derives a fully populated DesignPreferences from a base value.
type PreferencesBuilder struct {
	prefs DesignPreferences
}

// NewPreferencesBuilder starts from a copy of base.
func NewPreferencesBuilder(base DesignPreferences) *PreferencesBuilder {
	return &PreferencesBuilder{prefs: clonePreferences(base)}
}

// WithCategory sets the category name, and details when the base has none.
func (b *PreferencesBuilder) WithCategory(name, details string) *PreferencesBuilder {
	if name = strings.TrimSpace(name); name != "" {
		b.prefs.CategoryName = name
	}
	if strings.TrimSpace(b.prefs.CategoryDetails) == "" {
		b.prefs.CategoryDetails = strings.TrimSpace(details)
	}
	return b
}

// WithCount sets the number of templates to produce.
func (b *PreferencesBuilder) WithCount(n int) *PreferencesBuilder {
	if n > 0 {
		b.prefs.NumberOfTemplates = n
	}
	return b
}

// WithTextBlocks sets the text blocks when none were supplied.
func (b *PreferencesBuilder) WithTextBlocks(blocks []string) *PreferencesBuilder {
	if len(b.prefs.TextBlocks) > 0 {
		return b
	}
	for _, block := range blocks {
		if block = strings.TrimSpace(block); block != "" {
			b.prefs.TextBlocks = append(b.prefs.TextBlocks, block)
		}
	}
	return b
}

// Build returns the populated preferences. Every text block gets a font size,
// using PlaceholderFontSize for slots left empty.
func (b *PreferencesBuilder) Build() DesignPreferences {
	out := clonePreferences(b.prefs)
	if out.NumberOfTemplates <= 0 {
		out.NumberOfTemplates = 1
	}
	slots := len(out.TextBlocks)
	if len(out.FontSizes) > slots {
		slots = len(out.FontSizes)
	}
	sizes := make([]string, slots)
	for i := range sizes {
		if i < len(out.FontSizes) {
			sizes[i] = strings.TrimSpace(out.FontSizes[i])
		}
		if sizes[i] == "" {
			sizes[i] = PlaceholderFontSize
		}
	}
	out.FontSizes = sizes
	return out
}

func clonePreferences(p DesignPreferences) DesignPreferences {
	out := p
	out.FontSizes = append([]string(nil), p.FontSizes...)
	out.TextBlocks = append([]string(nil), p.TextBlocks...)
	return out
}
