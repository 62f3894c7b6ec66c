package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

const (
	// DefaultTemplateCount is used when the request omits template_count.
	DefaultTemplateCount = 1
	// MaxTemplateCount caps the variations generated by one request.
	MaxTemplateCount = 10
	// DefaultUnit applies to explicit width and height without a unit.
	DefaultUnit = "mm"
	// MaxPrintMillimeters bounds each requested print side, A0's long edge
	// plus a margin.
	MaxPrintMillimeters = 2000

	ModeAI    = "ai"
	ModeLocal = "local"

	maxNameLength     = 255
	maxDetailsLength  = 2000
	maxKeywordsLength = 500
	maxStyleLength    = 50
)

var (
	allowedTemplateTypes = set("poster", "banner", "brochure", "postcard", "flyer", "social")
	allowedFontFamilies  = set("arial", "helvetica", "serif", "sans-serif", "times", "courier")
	allowedUnits         = set("mm", "cm", "inches", "in", "pixels", "px")
	allowedModes         = set(ModeAI, ModeLocal)
)

// Style carries the structured design fields shared by every request that
// can steer prompt synthesis.
type Style struct {
	TemplateType    string   `json:"template_type,omitempty"`
	Keywords        string   `json:"keywords,omitempty"`
	FontFamily      string   `json:"font_family,omitempty"`
	FontSizes       []string `json:"font_sizes,omitempty"`
	ColorTheme      string   `json:"color_theme,omitempty"`
	BackgroundColor string   `json:"background_color,omitempty"`
	ImageStyle      string   `json:"image_style,omitempty"`
}

// Structured reports whether the style selects structured prompt synthesis.
func (s Style) Structured() bool {
	return s.TemplateType != "" || s.Keywords != ""
}

func (s *Style) normalize() {
	s.TemplateType = strings.ToLower(strings.TrimSpace(s.TemplateType))
	s.Keywords = strings.TrimSpace(s.Keywords)
	s.FontFamily = strings.ToLower(strings.TrimSpace(s.FontFamily))
	s.ColorTheme = strings.TrimSpace(s.ColorTheme)
	s.BackgroundColor = strings.TrimSpace(s.BackgroundColor)
	s.ImageStyle = strings.TrimSpace(s.ImageStyle)
	sizes := s.FontSizes[:0]
	for _, size := range s.FontSizes {
		sizes = append(sizes, strings.TrimSpace(size))
	}
	s.FontSizes = sizes
	if len(s.FontSizes) == 0 {
		s.FontSizes = nil
	}
}

func (s Style) validate() error {
	if s.TemplateType != "" {
		if _, ok := allowedTemplateTypes[s.TemplateType]; !ok {
			return invalid("template_type must be one of poster, banner, brochure, postcard, flyer, social")
		}
	}
	if s.FontFamily != "" {
		if _, ok := allowedFontFamilies[s.FontFamily]; !ok {
			return invalid("font_family must be one of arial, helvetica, serif, sans-serif, times, courier")
		}
	}
	if len(s.Keywords) > maxKeywordsLength {
		return invalid("keywords must be at most %d characters", maxKeywordsLength)
	}
	for field, v := range map[string]string{
		"color_theme":      s.ColorTheme,
		"background_color": s.BackgroundColor,
		"image_style":      s.ImageStyle,
	} {
		if len(v) > maxStyleLength {
			return invalid("%s must be at most %d characters", field, maxStyleLength)
		}
	}
	return nil
}

// GenerateRequest is the body of a template generation request.
type GenerateRequest struct {
	CategoryID      int64   `json:"category_id,omitempty"`
	CategoryName    string  `json:"category_name,omitempty"`
	CategoryDetails string  `json:"category_details,omitempty"`
	Width           float64 `json:"width,omitempty"`
	Height          float64 `json:"height,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	StandardSize    string  `json:"standard_size,omitempty"`
	TemplateCount   int     `json:"template_count,omitempty"`
	Mode            string  `json:"mode,omitempty"`
	ProjectName     string  `json:"project_name,omitempty"`
	Style
}

// Normalize trims input and applies defaults.
func (r *GenerateRequest) Normalize() {
	if r == nil {
		return
	}
	r.CategoryName = strings.TrimSpace(r.CategoryName)
	r.CategoryDetails = strings.TrimSpace(r.CategoryDetails)
	r.StandardSize = strings.TrimSpace(r.StandardSize)
	r.ProjectName = strings.TrimSpace(r.ProjectName)
	r.Unit = strings.ToLower(strings.TrimSpace(r.Unit))
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	if r.TemplateCount == 0 {
		r.TemplateCount = DefaultTemplateCount
	}
	if r.Mode == "" {
		r.Mode = ModeAI
	}
	if r.Unit == "" && r.HasExplicitSize() {
		r.Unit = DefaultUnit
	}
	r.Style.normalize()
}

// HasExplicitSize reports whether both width and height were given.
func (r GenerateRequest) HasExplicitSize() bool {
	return r.Width > 0 && r.Height > 0
}

// Validate checks the request after Normalize. Every error wraps
// domain.ErrInvalidInput.
func (r GenerateRequest) Validate() error {
	if r.CategoryID <= 0 && r.CategoryName == "" {
		return invalid("category ID or name is required")
	}
	if len(r.CategoryName) > maxNameLength {
		return invalid("category_name must be at most %d characters", maxNameLength)
	}
	if len(r.CategoryDetails) > maxDetailsLength {
		return invalid("category_details must be at most %d characters", maxDetailsLength)
	}
	if len(r.ProjectName) > maxNameLength {
		return invalid("project_name must be at most %d characters", maxNameLength)
	}
	if r.Width < 0 || r.Height < 0 || (r.Width > 0 && r.Width < 1) || (r.Height > 0 && r.Height < 1) {
		return invalid("width and height must be at least 1")
	}
	unit := dimension.ParseUnit(r.Unit)
	if dimension.ToMillimeters(r.Width, unit) > MaxPrintMillimeters || dimension.ToMillimeters(r.Height, unit) > MaxPrintMillimeters {
		return invalid("width and height must be at most %d mm", MaxPrintMillimeters)
	}
	if r.Unit != "" {
		if _, ok := allowedUnits[r.Unit]; !ok {
			return invalid("unit must be one of mm, cm, inches, in, pixels, px")
		}
	}
	if r.TemplateCount < 1 || r.TemplateCount > MaxTemplateCount {
		return invalid("template_count must be between 1 and %d", MaxTemplateCount)
	}
	if _, ok := allowedModes[r.Mode]; !ok {
		return invalid("mode must be ai or local")
	}
	return r.Style.validate()
}

// PreviewRequest asks for synthesized prompts without generating images.
type PreviewRequest struct {
	CategoryID        int64  `json:"category_id,omitempty"`
	CategoryName      string `json:"category_name,omitempty"`
	CategoryDetails   string `json:"category_details,omitempty"`
	NumberOfTemplates int    `json:"number_of_templates,omitempty"`
	Style
}

const (
	DefaultPreviewTemplateType = "poster"
	DefaultPreviewImageStyle   = "realistic"
)

// Normalize trims input and applies the preview defaults.
func (r *PreviewRequest) Normalize() {
	if r == nil {
		return
	}
	r.CategoryName = strings.TrimSpace(r.CategoryName)
	r.CategoryDetails = strings.TrimSpace(r.CategoryDetails)
	r.Style.normalize()
	if r.TemplateType == "" {
		r.TemplateType = DefaultPreviewTemplateType
	}
	if r.ImageStyle == "" {
		r.ImageStyle = DefaultPreviewImageStyle
	}
	if r.NumberOfTemplates == 0 {
		r.NumberOfTemplates = DefaultTemplateCount
	}
}

// Validate checks the request after Normalize.
func (r PreviewRequest) Validate() error {
	if len(r.CategoryName) > maxNameLength {
		return invalid("category_name must be at most %d characters", maxNameLength)
	}
	if len(r.CategoryDetails) > maxDetailsLength {
		return invalid("category_details must be at most %d characters", maxDetailsLength)
	}
	if r.NumberOfTemplates < 1 || r.NumberOfTemplates > MaxTemplateCount {
		return invalid("number_of_templates must be between 1 and %d", MaxTemplateCount)
	}
	return r.Style.validate()
}

// RegenerateRequest overrides stored preferences of a template. Nil fields
// keep the stored value.
type RegenerateRequest struct {
	TemplateType    *string `json:"template_type,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	FontFamily      *string `json:"font_family,omitempty"`
	ColorTheme      *string `json:"color_theme,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty"`
	ImageStyle      *string `json:"image_style,omitempty"`
}

// Apply overlays the non-nil fields onto base and returns the result.
func (r RegenerateRequest) Apply(base Style) Style {
	out := base
	out.FontSizes = append([]string(nil), base.FontSizes...)
	overlay := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	overlay(&out.TemplateType, r.TemplateType)
	overlay(&out.Keywords, r.Keywords)
	overlay(&out.FontFamily, r.FontFamily)
	overlay(&out.ColorTheme, r.ColorTheme)
	overlay(&out.BackgroundColor, r.BackgroundColor)
	overlay(&out.ImageStyle, r.ImageStyle)
	out.normalize()
	return out
}

// Validate checks the override values.
func (r RegenerateRequest) Validate() error {
	return r.Apply(Style{}).validate()
}

// MustMarshal encodes v and panics on failure. It is meant for values that
// are known to be encodable.
func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func set(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
