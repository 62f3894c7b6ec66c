package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/juliusiqbal/ai-img-gen/internal/dimension"
)

func newSizesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sizes",
		Short: "List the named paper sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tWIDTH_MM\tHEIGHT_MM")
			for _, s := range dimension.NamedSizes() {
				fmt.Fprintf(tw, "%s\t%g\t%g\n", s.Name, s.Width, s.Height)
			}
			return tw.Flush()
		},
	}
}
