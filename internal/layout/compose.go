package layout

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

// Image is an encoded source image (JPEG, PNG or WebP).
type Image struct {
	Ref  string
	Data []byte
}

const (
	// MaxCanvasSide bounds the long side of a composed canvas in pixels.
	MaxCanvasSide = 4096
	// MaxSourcePixels bounds the decoded size of one source image.
	MaxSourcePixels = 40_000_000
)

var background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// FitCanvas scales w x h down so the long side is at most MaxCanvasSide,
// keeping the aspect ratio. Sides are at least 1.
func FitCanvas(w, h int) (int, int) {
	w, h = max(w, 1), max(h, 1)
	long := max(w, h)
	if long <= MaxCanvasSide {
		return w, h
	}
	scale := float64(MaxCanvasSide) / float64(long)
	return max(int(math.Round(float64(w)*scale)), 1), max(int(math.Round(float64(h)*scale)), 1)
}

// Composer renders planned layouts onto a canvas.
type Composer struct {
	logger zerolog.Logger
}

// NewComposer returns a Composer that logs skipped images to logger.
func NewComposer(logger zerolog.Logger) *Composer {
	return &Composer{logger: logger}
}

type decoded struct {
	ref string
	img image.Image
}

// Compose decodes images, plans their placement for variation and draws
// shadow, image and frame for each. Images that cannot be decoded, or that
// exceed MaxSourcePixels, are skipped; when none remain it returns an empty
// placement list and ErrCompositionEmpty. Canvases larger than MaxCanvasSide
// are rejected with ErrInvalidInput; see FitCanvas.
func (c *Composer) Compose(ctx context.Context, canvasW, canvasH int, images []Image, variation int) (*image.NRGBA, []Placement, error) {
	if canvasW > MaxCanvasSide || canvasH > MaxCanvasSide {
		return nil, []Placement{}, fmt.Errorf("canvas %dx%d exceeds %d px: %w", canvasW, canvasH, MaxCanvasSide, domain.ErrInvalidInput)
	}
	srcs := make([]decoded, 0, len(images))
	defer func() {
		for i := range srcs {
			srcs[i].img = nil
		}
	}()
	for _, in := range images {
		if err := ctx.Err(); err != nil {
			return nil, []Placement{}, err
		}
		img, err := decodeBounded(in.Data)
		if err != nil {
			c.logger.Warn().Err(&domain.DecodeError{Ref: in.Ref, Err: err}).Str("ref", in.Ref).Msg("skipping undecodable image")
			continue
		}
		srcs = append(srcs, decoded{ref: in.Ref, img: img})
	}
	if len(srcs) == 0 || canvasW <= 0 || canvasH <= 0 {
		return nil, []Placement{}, domain.ErrCompositionEmpty
	}

	sources := make([]Source, len(srcs))
	for i, s := range srcs {
		b := s.img.Bounds()
		sources[i] = Source{Ref: s.ref, Width: b.Dx(), Height: b.Dy()}
	}
	placements := Plan(canvasW, canvasH, sources, variation)

	canvas := imaging.New(canvasW, canvasH, background)
	for i, p := range placements {
		if err := ctx.Err(); err != nil {
			return nil, []Placement{}, err
		}
		drawPlacement(canvas, srcs[i].img, p)
	}
	return canvas, placements, nil
}

// ComposePNG runs Compose and encodes the canvas as PNG.
func (c *Composer) ComposePNG(ctx context.Context, canvasW, canvasH int, images []Image, variation int) ([]byte, []Placement, error) {
	canvas, placements, err := c.Compose(ctx, canvasW, canvasH, images, variation)
	if err != nil {
		return nil, placements, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, placements, err
	}
	return buf.Bytes(), placements, nil
}

func decodeBounded(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// drawPlacement paints shadow, image and frame for p directly onto canvas.
func drawPlacement(canvas *image.NRGBA, img image.Image, p Placement) {
	deco := Decorations(p)
	for _, layer := range deco.Shadow {
		fill(canvas, layer)
	}
	b := p.Rect().Bounds()
	if b.Dx() > 0 && b.Dy() > 0 {
		resized := imaging.Resize(img, b.Dx(), b.Dy(), imaging.Lanczos)
		draw.Draw(canvas, b, resized, image.Point{}, draw.Over)
	}
	for _, layer := range deco.Frame {
		fill(canvas, layer)
	}
}

func fill(canvas *image.NRGBA, layer Layer) {
	src := image.NewUniform(layer.Color)
	for _, r := range layer.edges() {
		b := r.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			continue
		}
		draw.Draw(canvas, b, src, image.Point{}, draw.Over)
	}
}
