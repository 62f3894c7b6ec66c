package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
	"github.com/juliusiqbal/ai-img-gen/internal/generation"
)

type viewportOutput struct {
	Printing *dimension.DimensionSpec `json:"printing"`
	Viewport dimension.ViewportSpec   `json:"viewport"`
}

func newViewportCmd() *cobra.Command {
	var (
		width, height, ratio float64
		unit, size           string
	)
	cmd := &cobra.Command{
		Use:   "viewport",
		Short: "Compute the SVG viewport for a print size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, ok, err := generation.ResolveDimensions(width, height, unit, size)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("either --size or --width and --height are required")
			}
			var r *float64
			if ratio > 0 {
				r = &ratio
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(viewportOutput{Printing: &spec, Viewport: dimension.ComputeViewport(spec, r)})
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "print width")
	cmd.Flags().Float64Var(&height, "height", 0, "print height")
	cmd.Flags().StringVar(&unit, "unit", "mm", "mm, cm, in or px")
	cmd.Flags().StringVar(&size, "size", "", "named paper size such as A4")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "aspect ratio of the artwork to fit")
	return cmd
}
