package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/store"
)

func newInspectCmd() *cobra.Command {
	threshold := st.Sketch.Threshold
	c := &cobra.Command{
		Use:   "inspect SKETCH...",
		Short: "Print the params and fill of sketches as JSON",
		Long: `Writes a JSON array to stdout with one entry per sketch found in the inputs:
its params, how many counters are in use or saturated and the estimated false
positive rate of filtering with --threshold.

A fill ratio approaching 1 means the sketch is too small for the input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := stdinOnce(args); err != nil {
				return err
			}
			ctx := c.Context()
			resolver := store.NewResolver(c.InOrStdin(), c.OutOrStdout())
			inputs := make([]modes.Input, 0, len(args))
			for _, loc := range args {
				r := &lazyReader{ctx: ctx, resolver: resolver, loc: loc}
				defer r.Close()
				inputs = append(inputs, modes.Input{Name: loc, R: r})
			}
			_, err := modes.Inspect(inputs, c.OutOrStdout(), threshold)
			return err
		},
	}
	c.Flags().Uint8VarP(&threshold, "threshold", "t", threshold, "count used for the false positive estimate")
	return c
}
