package layout

import "image/color"

const (
	shadowSteps      = 6
	shadowStepOffset = 2.0
	shadowBaseAlpha  = 66
	shadowAlphaStep  = 10
	outerRuleWidth   = 4.0
	innerRuleWidth   = 2.0
)

var (
	outerRuleColor = color.NRGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	innerRuleColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Layer is a filled rectangle (Stroke == 0) or a rectangular rule of width Stroke.
type Layer struct {
	Rect   Rect
	Color  color.NRGBA
	Stroke float64
}

// Decoration is the geometry drawn around one placement. Shadow layers are
// drawn before the image and Frame layers after it.
type Decoration struct {
	Shadow []Layer
	Frame  []Layer
}

// Decorations returns the shadow and frame for p.
func Decorations(p Placement) Decoration {
	r := p.Rect()
	shadow := make([]Layer, 0, shadowSteps)
	for i := 0; i < shadowSteps; i++ {
		off := float64(i+1) * shadowStepOffset
		shadow = append(shadow, Layer{
			Rect:  Rect{X: r.X + off, Y: r.Y + off, Width: r.Width, Height: r.Height},
			Color: color.NRGBA{A: uint8(shadowBaseAlpha - i*shadowAlphaStep)},
		})
	}
	frame := []Layer{
		{Rect: r.inset(-outerRuleWidth), Color: outerRuleColor, Stroke: outerRuleWidth},
		{Rect: r, Color: innerRuleColor, Stroke: innerRuleWidth},
	}
	return Decoration{Shadow: shadow, Frame: frame}
}

// edges splits a stroked layer into its four filled sides.
func (l Layer) edges() []Rect {
	if l.Stroke <= 0 {
		return []Rect{l.Rect}
	}
	r, s := l.Rect, l.Stroke
	return []Rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: s},
		{X: r.X, Y: r.Y + r.Height - s, Width: r.Width, Height: s},
		{X: r.X, Y: r.Y + s, Width: s, Height: r.Height - 2*s},
		{X: r.X + r.Width - s, Y: r.Y + s, Width: s, Height: r.Height - 2*s},
	}
}
