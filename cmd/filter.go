package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/store"
)

func newFilterCmd() *cobra.Command {
	var lf lineFlags
	var sketches []string
	threshold := st.Sketch.Threshold
	c := &cobra.Command{
		Use:   "filter --sketch LOCATION [INPUT...]",
		Short: "Emit the lines of the inputs that are probable duplicates",
		Long: `Replays the inputs (stdin if none are given) against a sketch and writes each
line whose estimated count is at least --threshold to stdout, unchanged and in
input order. Every emitted line is followed by the delimiter.

--sketch may be repeated, and a sketch location may hold several concatenated
sketches. All of them are merged before filtering and must share params.`,
		Example: `dupsketch filter --sketch combined.sketch shard1.log > shard1.dups
dupsketch filter -S shard1.sketch -S shard2.sketch shard1.log`,
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{store.SchemeStdio}
			}
			if err := stdinOnce(args, sketches); err != nil {
				return err
			}
			if threshold == 0 {
				return sketch.ErrBadThreshold
			}
			ctx := c.Context()
			resolver := store.NewResolver(c.InOrStdin(), c.OutOrStdout())

			inputs := make([]modes.Input, 0, len(sketches))
			for _, loc := range sketches {
				r := &lazyReader{ctx: ctx, resolver: resolver, loc: loc}
				defer r.Close()
				inputs = append(inputs, modes.Input{Name: loc, R: r})
			}
			sk, err := modes.LoadSketch(inputs...)
			if err != nil {
				return err
			}

			opts := modes.FilterOptions{Threshold: threshold, Delimiter: lf.delimiter()}
			total := modes.FilterStats{}
			for _, loc := range args {
				in := &lazyReader{ctx: ctx, resolver: resolver, loc: loc}
				if lf.progress {
					in.progress = c.ErrOrStderr()
				}
				stats, err := modes.Filter(sk, in, c.OutOrStdout(), opts)
				in.Close()
				total.Lines += stats.Lines
				total.Emitted += stats.Emitted
				if err != nil {
					return fmt.Errorf("%s: %w", loc, err)
				}
			}
			st.Logger.Debug().
				Int("inputs", len(args)).
				Uint64("lines", total.Lines).
				Uint64("emitted", total.Emitted).
				Msg("filter finished")
			return nil
		},
	}
	lf.register(c)
	c.Flags().StringArrayVarP(&sketches, "sketch", "S", nil, "sketch location to filter against, may be repeated")
	c.Flags().Uint8VarP(&threshold, "threshold", "t", threshold, "minimum estimated count for a line to be emitted")
	c.MarkFlagRequired("sketch")
	return c
}
