// Command designctl runs the print template engine offline: prompt synthesis,
// viewport math and local layout composition.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/juliusiqbal/ai-img-gen/internal/infra"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	verbose bool
	logger  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "designctl",
		Short:         "Offline tools for the print template engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				opts.logger = infra.NewLogger("development")
			}
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stdout at debug level")
	root.AddCommand(
		newPromptCmd(opts),
		newViewportCmd(),
		newComposeCmd(opts),
		newSizesCmd(),
	)
	return root
}
