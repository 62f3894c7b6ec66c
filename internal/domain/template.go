package domain

import (
	"encoding/json"
	"time"
)

// PixelSize is the natural size of a raster.
type PixelSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PrintDimensions is the print size requested by the caller.
type PrintDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// Template is a generated print template. SVGPath and OriginalImagePath are
// blob storage keys.
type Template struct {
	ID                 int64            `json:"id"`
	CategoryID         int64            `json:"category_id"`
	ProjectName        string           `json:"project_name,omitempty"`
	OriginalImagePath  string           `json:"original_image_path"`
	SVGPath            string           `json:"svg_path"`
	Dimensions         PixelSize        `json:"dimensions"`
	PrintingDimensions *PrintDimensions `json:"printing_dimensions,omitempty"`
	PromptUsed         string           `json:"prompt_used,omitempty"`
	GenerationPrompt   string           `json:"generation_prompt,omitempty"`
	DesignPreferences  json.RawMessage  `json:"design_preferences,omitempty"`
	Category           *Category        `json:"category,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}
