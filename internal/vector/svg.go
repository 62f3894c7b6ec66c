// Package vector turns raster artwork into dimensioned SVG documents.
package vector

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

var (
	rootTagPattern  = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	widthPattern    = regexp.MustCompile(`(\s)width="[^"]*"`)
	heightPattern   = regexp.MustCompile(`(\s)height="[^"]*"`)
	viewBoxPattern  = regexp.MustCompile(`(\s)viewBox="[^"]*"`)
	commentPattern  = regexp.MustCompile(`(?s)<!--.*?-->`)
	spacePattern    = regexp.MustCompile(`\s+`)
	interTagPattern = regexp.MustCompile(`>\s+<`)
)

// Wrap embeds raster as a base64 data URI inside an SVG sized to vp. A zero
// viewport falls back to 800x600. An empty mime is sniffed from the data.
func Wrap(raster []byte, mime string, vp dimension.ViewportSpec) ([]byte, error) {
	if len(raster) == 0 {
		return nil, fmt.Errorf("wrap: empty raster")
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = dimension.ViewportFromPixels(defaultWidth, defaultHeight)
	}
	if mime == "" {
		mime = http.DetectContentType(raster)
	}
	href := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raster)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startraw(
		fmt.Sprintf(`width="%s"`, formatFloat(vp.Width)),
		fmt.Sprintf(`height="%s"`, formatFloat(vp.Height)),
		fmt.Sprintf(`viewBox="%s"`, viewBox(vp)),
	)
	canvas.Image(0, 0, ceil(vp.RawWidth, vp.Width), ceil(vp.RawHeight, vp.Height), href, `preserveAspectRatio="xMidYMid meet"`)
	canvas.End()
	return buf.Bytes(), nil
}

// UpdateDimensions rewrites the width, height and viewBox attributes of the
// root svg element, adding viewBox when it is missing. Nested elements are
// left alone.
func UpdateDimensions(doc []byte, vp dimension.ViewportSpec) []byte {
	loc := rootTagPattern.FindIndex(doc)
	if loc == nil {
		return doc
	}
	tag := doc[loc[0]:loc[1]]
	tag = widthPattern.ReplaceAll(tag, []byte(`${1}width="`+formatFloat(vp.Width)+`"`))
	tag = heightPattern.ReplaceAll(tag, []byte(`${1}height="`+formatFloat(vp.Height)+`"`))
	vb := []byte(`${1}viewBox="` + viewBox(vp) + `"`)
	if viewBoxPattern.Match(tag) {
		tag = viewBoxPattern.ReplaceAll(tag, vb)
	} else {
		tag = append([]byte(`<svg viewBox="`+viewBox(vp)+`"`), tag[len("<svg"):]...)
	}
	out := make([]byte, 0, len(doc)+len(tag))
	out = append(out, doc[:loc[0]]...)
	out = append(out, tag...)
	return append(out, doc[loc[1]:]...)
}

// Optimize strips comments and collapses whitespace.
func Optimize(doc []byte) []byte {
	doc = commentPattern.ReplaceAll(doc, nil)
	doc = spacePattern.ReplaceAll(doc, []byte(" "))
	doc = interTagPattern.ReplaceAll(doc, []byte("><"))
	return bytes.TrimSpace(doc)
}

func viewBox(vp dimension.ViewportSpec) string {
	if vp.ViewBox != "" {
		return vp.ViewBox
	}
	return "0 0 " + formatFloat(vp.Width) + " " + formatFloat(vp.Height)
}

func ceil(raw, rounded float64) int {
	if raw <= 0 {
		raw = rounded
	}
	return int(math.Ceil(raw))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
