package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/store"
)

func newBuildCmd() *cobra.Command {
	var sf sketchFlags
	var lf lineFlags
	var output string
	c := &cobra.Command{
		Use:   "build [INPUT...]",
		Short: "Count the lines of the inputs into a new sketch",
		Long: `Reads every line of the inputs (stdin if none are given) and writes a sketch
of their counts to --output.

All sketches that will later be combined must be built with the same --size,
--probes and --hash.`,
		Example: `dupsketch build --size 64Mi -o shard1.sketch shard1.log
cat shard2.log | dupsketch build --size 64Mi -o s3://sketches/day1/shard2.sketch`,
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{store.SchemeStdio}
			}
			if err := stdinOnce(args); err != nil {
				return err
			}
			opts, err := sf.options(lf.delimiter())
			if err != nil {
				return err
			}
			b, err := modes.NewBuilder(opts)
			if err != nil {
				return err
			}
			ctx := c.Context()
			resolver := store.NewResolver(c.InOrStdin(), c.OutOrStdout())
			for _, loc := range args {
				in := &lazyReader{ctx: ctx, resolver: resolver, loc: loc}
				if lf.progress {
					in.progress = c.ErrOrStderr()
				}
				_, err := b.ReadFrom(in)
				in.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", loc, err)
				}
			}

			_, err = b.Save(func(src io.WriterTo, size int64) error {
				return resolver.Save(ctx, output, src, size)
			})
			if err != nil {
				return err
			}
			st.Logger.Debug().Int("inputs", len(args)).Str("output", output).Msg("saved sketch")
			return nil
		},
	}
	sf.register(c)
	lf.register(c)
	c.Flags().StringVarP(&output, "output", "o", store.SchemeStdio, "sketch location to write")
	return c
}
