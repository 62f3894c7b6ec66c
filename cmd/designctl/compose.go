package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
	"github.com/juliusiqbal/ai-img-gen/internal/generation"
	"github.com/juliusiqbal/ai-img-gen/internal/layout"
	"github.com/juliusiqbal/ai-img-gen/internal/vector"
)

const defaultCanvas = 1024

func newComposeCmd(root *rootOptions) *cobra.Command {
	var (
		width, height float64
		unit, size    string
		variation     int
		out           string
	)
	cmd := &cobra.Command{
		Use:   "compose [images...]",
		Short: "Compose reference images into a local layout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			images := make([]layout.Image, 0, len(args))
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("read %s: %w", p, err)
				}
				images = append(images, layout.Image{Ref: p, Data: data})
			}

			spec, ok, err := generation.ResolveDimensions(width, height, unit, size)
			if err != nil {
				return err
			}
			canvasW, canvasH := defaultCanvas, defaultCanvas
			var vp dimension.ViewportSpec
			if ok {
				vp = dimension.ComputeViewport(spec, nil)
				canvasW, canvasH = layout.FitCanvas(ceilPixels(vp.RawWidth), ceilPixels(vp.RawHeight))
			} else {
				vp = dimension.ViewportFromPixels(canvasW, canvasH)
			}

			raster, placements, err := layout.NewComposer(root.logger).ComposePNG(cmd.Context(), canvasW, canvasH, images, variation)
			if err != nil {
				return err
			}
			data := raster
			if strings.EqualFold(filepath.Ext(out), ".svg") {
				if data, err = vector.Wrap(raster, "image/png", vp); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %d placements, %s)\n",
				out, canvasW, canvasH, len(placements), layout.Choose(len(placements), variation))
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "print width")
	cmd.Flags().Float64Var(&height, "height", 0, "print height")
	cmd.Flags().StringVar(&unit, "unit", "mm", "mm, cm, in or px")
	cmd.Flags().StringVar(&size, "size", "", "named paper size such as A4")
	cmd.Flags().IntVar(&variation, "variation", 0, "variation index selecting the archetype")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.png or .svg)")
	return cmd
}

func ceilPixels(v float64) int {
	n := int(math.Ceil(v))
	if n < 1 {
		return 1
	}
	return n
}
