package dimension

import (
	"math"
	"strconv"
)

// ViewportSpec is the pixel box and viewBox of an emitted SVG document.
type ViewportSpec struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	ViewBox   string  `json:"viewBox"`
	RawWidth  float64 `json:"-"`
	RawHeight float64 `json:"-"`
}

// ComputeViewport converts spec to pixels and, when ratio is positive, grows
// one side so the box matches ratio. Width and Height are rounded to two
// decimals while ViewBox keeps the unrounded values.
func ComputeViewport(spec DimensionSpec, ratio *float64) ViewportSpec {
	w := ToPixels(spec.Width, spec.Unit)
	h := ToPixels(spec.Height, spec.Unit)
	if ratio != nil && *ratio > 0 && h > 0 {
		if w/h > *ratio {
			h = w / *ratio
		} else {
			w = h * *ratio
		}
	}
	return ViewportSpec{
		Width:     round2(w),
		Height:    round2(h),
		ViewBox:   "0 0 " + formatFloat(w) + " " + formatFloat(h),
		RawWidth:  w,
		RawHeight: h,
	}
}

// ViewportFromPixels builds a viewport from a raster's natural size.
func ViewportFromPixels(width, height int) ViewportSpec {
	w, h := float64(width), float64(height)
	return ViewportSpec{
		Width:     w,
		Height:    h,
		ViewBox:   "0 0 " + strconv.Itoa(width) + " " + strconv.Itoa(height),
		RawWidth:  w,
		RawHeight: h,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
