package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/store"
)

func newCombineCmd() *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "combine SKETCH...",
		Short: "Merge shard sketches into one",
		Long: `Adds the counters of every input sketch together and writes the result to
--output. An input may hold several concatenated sketches; at least two
sketches are required in total.

Every sketch must share size, probes and hash. The first that does not is
reported by name and nothing is written.`,
		Example: `dupsketch combine -o combined.sketch shard1.sketch shard2.sketch
cat shard*.sketch | dupsketch combine -o s3://sketches/day1/combined.sketch -`,
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
			_, err := modes.CombineTo(inputs, func(src io.WriterTo, size int64) error {
				return resolver.Save(ctx, output, src, size)
			})
			if err != nil {
				return err
			}
			st.Logger.Debug().Str("output", output).Msg("saved sketch")
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", store.SchemeStdio, "sketch location to write")
	return c
}
