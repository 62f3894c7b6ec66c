// Package dimension converts print sizes between units and derives the
// pixel viewport of the vector documents we emit.
package dimension

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is a length unit accepted for print dimensions.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitCentimeter Unit = "cm"
	UnitInch       Unit = "inch"
	UnitPixel      Unit = "pixel"
	// UnitUnknown is treated as millimeters by every conversion.
	UnitUnknown Unit = ""
)

const (
	mmPerInch   = 25.4
	pixelsPerIn = 96.0
	pixelsPerMM = pixelsPerIn / mmPerInch
	mmPerCM     = 10.0
)

// ErrInvalidDimension is returned for non-positive widths or heights.
var ErrInvalidDimension = errors.New("dimension: width and height must be positive")

// ParseUnit maps user input onto a Unit. Unrecognised input yields UnitUnknown.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mm", "millimeter", "millimeters":
		return UnitMillimeter
	case "cm", "centimeter", "centimeters":
		return UnitCentimeter
	case "in", "inch", "inches":
		return UnitInch
	case "px", "pixel", "pixels":
		return UnitPixel
	default:
		return UnitUnknown
	}
}

// String returns the short form used in API payloads.
func (u Unit) String() string {
	switch u {
	case UnitInch:
		return "in"
	case UnitPixel:
		return "px"
	case UnitUnknown:
		return "mm"
	default:
		return string(u)
	}
}

// ToMillimeters converts v expressed in unit to millimeters.
func ToMillimeters(v float64, unit Unit) float64 {
	switch unit {
	case UnitCentimeter:
		return v * mmPerCM
	case UnitInch:
		return v * mmPerInch
	case UnitPixel:
		return v / pixelsPerMM
	default:
		return v
	}
}

// FromMillimeters converts mm into unit.
func FromMillimeters(mm float64, unit Unit) float64 {
	switch unit {
	case UnitCentimeter:
		return mm / mmPerCM
	case UnitInch:
		return mm / mmPerInch
	case UnitPixel:
		return mm * pixelsPerMM
	default:
		return mm
	}
}

// ConvertDimensions converts v between units through millimeters.
func ConvertDimensions(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	return FromMillimeters(ToMillimeters(v, from), to)
}

// ToPixels converts v expressed in unit to CSS pixels.
func ToPixels(v float64, unit Unit) float64 {
	if unit == UnitPixel {
		return v
	}
	return ToMillimeters(v, unit) * pixelsPerMM
}

// AspectRatio returns width/height, or 1 when height is zero.
func AspectRatio(width, height float64) float64 {
	if height == 0 {
		return 1
	}
	return width / height
}

// DimensionSpec is an immutable print size.
type DimensionSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   Unit    `json:"unit"`
}

// NewDimensionSpec validates and builds a DimensionSpec.
func NewDimensionSpec(width, height float64, unit Unit) (DimensionSpec, error) {
	if width <= 0 || height <= 0 {
		return DimensionSpec{}, fmt.Errorf("%w: got %gx%g", ErrInvalidDimension, width, height)
	}
	return DimensionSpec{Width: width, Height: height, Unit: unit}, nil
}

// AspectRatio returns width divided by height, or 1 when height is zero.
func (d DimensionSpec) AspectRatio() float64 {
	return AspectRatio(d.Width, d.Height)
}

// In returns d converted to unit.
func (d DimensionSpec) In(unit Unit) DimensionSpec {
	return DimensionSpec{
		Width:  ConvertDimensions(d.Width, d.Unit, unit),
		Height: ConvertDimensions(d.Height, d.Unit, unit),
		Unit:   unit,
	}
}
