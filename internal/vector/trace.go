package vector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os/exec"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

// TraceRequest is one raster to convert.
type TraceRequest struct {
	Ref      string
	Raster   []byte
	MIME     string
	Viewport dimension.ViewportSpec
}

// Tracer converts raster artwork to an SVG document.
type Tracer interface {
	Trace(ctx context.Context, req TraceRequest) ([]byte, error)
}

// WrapTracer only embeds the raster.
type WrapTracer struct{}

func (WrapTracer) Trace(_ context.Context, req TraceRequest) ([]byte, error) {
	return Wrap(req.Raster, req.MIME, req.Viewport)
}

const (
	defaultPotraceTimeout = 60 * time.Second
	// luminance below which a pixel becomes black in the bitmap handed to potrace
	bitmapThreshold = 128
)

// PotraceTracer thresholds the raster to a PBM bitmap and runs potrace on it.
// When potrace is missing or fails the raster is wrapped instead.
type PotraceTracer struct {
	Path    string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewPotraceTracer returns a tracer using the potrace binary at path, or
// "potrace" from PATH when path is empty.
func NewPotraceTracer(path string, logger zerolog.Logger) *PotraceTracer {
	if path == "" {
		path = "potrace"
	}
	return &PotraceTracer{Path: path, Timeout: defaultPotraceTimeout, Logger: logger}
}

func (t *PotraceTracer) Trace(ctx context.Context, req TraceRequest) ([]byte, error) {
	doc, err := t.trace(ctx, req)
	if err == nil {
		return Optimize(UpdateDimensions(doc, req.Viewport)), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	t.Logger.Warn().Err(&domain.TracingError{Err: err}).Str("ref", req.Ref).Msg("potrace unavailable, embedding raster")
	return Wrap(req.Raster, req.MIME, req.Viewport)
}

func (t *PotraceTracer) trace(ctx context.Context, req TraceRequest) ([]byte, error) {
	bin, err := exec.LookPath(t.Path)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(req.Raster))
	if err != nil {
		return nil, &domain.DecodeError{Ref: req.Ref, Err: err}
	}
	pbm, err := encodePBM(img)
	if err != nil {
		return nil, err
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultPotraceTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--svg", "--output", "-", "-")
	cmd.Stdin = bytes.NewReader(pbm)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("potrace: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if !bytes.Contains(stdout.Bytes(), []byte("<svg")) {
		return nil, errors.New("potrace produced no svg")
	}
	return stdout.Bytes(), nil
}

// encodePBM flattens img onto white, thresholds it at 50% luminance and
// writes a binary (P4) portable bitmap.
func encodePBM(img image.Image) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("empty image")
	}
	flat := imaging.Overlay(imaging.New(w, h, color.White), img, image.Pt(0, 0), 1.0)
	gray := imaging.Grayscale(flat)

	var buf bytes.Buffer
	out := bufio.NewWriter(&buf)
	fmt.Fprintf(out, "P4\n%d %d\n", w, h)
	row := make([]byte, (w+7)/8)
	for y := 0; y < h; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < w; x++ {
			if gray.Pix[y*gray.Stride+x*4] < bitmapThreshold {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
		out.Write(row)
	}
	if err := out.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
