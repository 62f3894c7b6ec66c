// Package layout arranges reference images on a print canvas without an
// image model: it picks an archetype from the image count and a variation
// index, computes aspect-preserving placements and renders them with a soft
// shadow and a two-rule frame.
package layout

import (
	"image"
	"math"
)

// Source describes one decodable input image.
type Source struct {
	Ref    string
	Width  int
	Height int
}

func (s Source) ratio() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

// Rect is an axis-aligned box in canvas pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Bounds rounds r to integer pixel bounds.
func (r Rect) Bounds() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	return image.Rect(x0, y0, x0+int(math.Round(r.Width)), y0+int(math.Round(r.Height)))
}

func (r Rect) inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Placement is where one source image is drawn.
type Placement struct {
	X, Y, Width, Height float64
	Ref                 string
}

// Rect returns the placement box.
func (p Placement) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// Archetype names the arrangement chosen by Plan.
type Archetype string

const (
	ArchetypeFullBleedTop Archetype = "full_bleed_top"
	ArchetypeCentered     Archetype = "centered_padded"
	ArchetypeOffsetLeft   Archetype = "offset_left"
	ArchetypeOffsetRight  Archetype = "offset_right"
	ArchetypeLShape       Archetype = "l_shape"
	ArchetypeSideBySide   Archetype = "side_by_side"
	ArchetypeOverlapping  Archetype = "overlapping_pair"
	ArchetypeDiagonal     Archetype = "diagonal_corners"
	ArchetypeThreeFeature Archetype = "three_feature"
	ArchetypeGrid         Archetype = "grid"
	ArchetypeNone         Archetype = "none"
)

const (
	singleShareFullBleedH = 0.65
	singleShareCentered   = 0.8
	singleShareOffsetW    = 0.6
	singleShareOffsetH    = 0.7
	singleOffsetMargin    = 0.05
	pairPadding           = 40.0
	pairGap               = 24.0
	pairOverlapShare      = 0.6
	pairOverlapInset      = 0.08
	pairDiagonalShare     = 0.5
	tripleLeftShare       = 0.4
	tripleFeatureShare    = 0.6
	gridGap               = 20.0
	gridCellPadding       = 10.0
)

var singleArchetypes = [4]Archetype{ArchetypeFullBleedTop, ArchetypeCentered, ArchetypeOffsetLeft, ArchetypeOffsetRight}

var pairArchetypes = [4]Archetype{ArchetypeLShape, ArchetypeSideBySide, ArchetypeOverlapping, ArchetypeDiagonal}

// Choose returns the archetype Plan uses for n images at variation.
func Choose(n, variation int) Archetype {
	switch {
	case n <= 0:
		return ArchetypeNone
	case n == 1:
		return singleArchetypes[mod4(variation)]
	case n == 2:
		return pairArchetypes[mod4(variation)]
	case n == 3 && variation%2 == 0:
		return ArchetypeThreeFeature
	default:
		return ArchetypeGrid
	}
}

// Plan places sources on a canvasW x canvasH canvas. The result has one
// placement per source in input order; zero sources yield an empty slice.
func Plan(canvasW, canvasH int, sources []Source, variation int) []Placement {
	W, H := float64(canvasW), float64(canvasH)
	if len(sources) == 0 || W <= 0 || H <= 0 {
		return []Placement{}
	}
	switch Choose(len(sources), variation) {
	case ArchetypeFullBleedTop:
		s := sources[0]
		w, h := fit(s, W, H*singleShareFullBleedH)
		return []Placement{place(s, (W-w)/2, 0, w, h)}
	case ArchetypeCentered:
		s := sources[0]
		w, h := fit(s, W*singleShareCentered, H*singleShareCentered)
		return []Placement{place(s, (W-w)/2, (H-h)/2, w, h)}
	case ArchetypeOffsetLeft:
		s := sources[0]
		w, h := fit(s, W*singleShareOffsetW, H*singleShareOffsetH)
		return []Placement{place(s, W*singleOffsetMargin, (H-h)/2, w, h)}
	case ArchetypeOffsetRight:
		s := sources[0]
		w, h := fit(s, W*singleShareOffsetW, H*singleShareOffsetH)
		return []Placement{place(s, W-W*singleOffsetMargin-w, (H-h)/2, w, h)}
	case ArchetypeLShape:
		colW := (W - 2*pairPadding) * 0.5
		innerH := H - 2*pairPadding - pairGap
		top := Rect{X: pairPadding, Y: pairPadding, Width: colW, Height: innerH * 0.6}
		bottom := Rect{X: pairPadding, Y: top.Y + top.Height + pairGap, Width: colW, Height: innerH * 0.4}
		return []Placement{anchorTopLeft(sources[0], top), anchorTopLeft(sources[1], bottom)}
	case ArchetypeSideBySide:
		cellW := (W - 2*pairPadding - pairGap) / 2
		cellH := H - 2*pairPadding
		left := Rect{X: pairPadding, Y: pairPadding, Width: cellW, Height: cellH}
		right := Rect{X: pairPadding + cellW + pairGap, Y: pairPadding, Width: cellW, Height: cellH}
		return []Placement{center(sources[0], left), center(sources[1], right)}
	case ArchetypeOverlapping:
		back := Rect{X: W * pairOverlapInset, Y: H * pairOverlapInset, Width: W * pairOverlapShare, Height: H * pairOverlapShare}
		front := Rect{
			X:      W - W*pairOverlapInset - W*pairOverlapShare,
			Y:      H - H*pairOverlapInset - H*pairOverlapShare,
			Width:  W * pairOverlapShare,
			Height: H * pairOverlapShare,
		}
		return []Placement{anchorTopLeft(sources[0], back), anchorBottomRight(sources[1], front)}
	case ArchetypeDiagonal:
		boxW := (W - 2*pairPadding) * pairDiagonalShare
		boxH := (H - 2*pairPadding) * pairDiagonalShare
		first := Rect{X: pairPadding, Y: pairPadding, Width: boxW, Height: boxH}
		second := Rect{X: W - pairPadding - boxW, Y: H - pairPadding - boxH, Width: boxW, Height: boxH}
		return []Placement{anchorTopLeft(sources[0], first), anchorBottomRight(sources[1], second)}
	case ArchetypeThreeFeature:
		return planThree(W, H, sources)
	default:
		return planGrid(W, H, sources)
	}
}

// planThree stacks two images on the left and puts a wide feature image top right.
func planThree(W, H float64, sources []Source) []Placement {
	innerW := W - 2*pairPadding - pairGap
	innerH := H - 2*pairPadding - pairGap
	leftW := innerW * tripleLeftShare
	upper := Rect{X: pairPadding, Y: pairPadding, Width: leftW, Height: innerH / 2}
	lower := Rect{X: pairPadding, Y: pairPadding + innerH/2 + pairGap, Width: leftW, Height: innerH / 2}
	feature := Rect{
		X:      pairPadding + leftW + pairGap,
		Y:      pairPadding,
		Width:  innerW - leftW,
		Height: (H - 2*pairPadding) * tripleFeatureShare,
	}
	return []Placement{
		center(sources[0], upper),
		center(sources[1], lower),
		anchorTopLeft(sources[2], feature),
	}
}

func planGrid(W, H float64, sources []Source) []Placement {
	n := len(sources)
	cols := 2
	if n > 4 {
		cols = 3
	}
	rows := (n + cols - 1) / cols
	cellW := (W - float64(cols+1)*gridGap) / float64(cols)
	cellH := (H - float64(rows+1)*gridGap) / float64(rows)
	out := make([]Placement, 0, n)
	for i, s := range sources {
		col, row := i%cols, i/cols
		cell := Rect{
			X:      gridGap + float64(col)*(cellW+gridGap),
			Y:      gridGap + float64(row)*(cellH+gridGap),
			Width:  cellW,
			Height: cellH,
		}
		out = append(out, center(s, cell.inset(gridCellPadding)))
	}
	return out
}

// fit scales s into a boxW x boxH box keeping its aspect ratio: it fills the
// width, then clamps the height when it would overflow and re-derives the width.
func fit(s Source, boxW, boxH float64) (float64, float64) {
	if boxW <= 0 || boxH <= 0 {
		return 0, 0
	}
	r := s.ratio()
	w := boxW
	h := w / r
	if h > boxH {
		h = boxH
		w = h * r
	}
	return w, h
}

func place(s Source, x, y, w, h float64) Placement {
	return Placement{X: x, Y: y, Width: w, Height: h, Ref: s.Ref}
}

func center(s Source, box Rect) Placement {
	w, h := fit(s, box.Width, box.Height)
	return place(s, box.X+(box.Width-w)/2, box.Y+(box.Height-h)/2, w, h)
}

func anchorTopLeft(s Source, box Rect) Placement {
	w, h := fit(s, box.Width, box.Height)
	return place(s, box.X, box.Y, w, h)
}

func anchorBottomRight(s Source, box Rect) Placement {
	w, h := fit(s, box.Width, box.Height)
	return place(s, box.X+box.Width-w, box.Y+box.Height-h, w, h)
}

func mod4(v int) int {
	m := v % 4
	if m < 0 {
		m += 4
	}
	return m
}
