package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/prom"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
)

// newRootCmd builds the command tree. Flag defaults come from the current settings.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dupsketch",
		Short: "Find probable duplicate lines in streams too large to hold in memory",
		Long: `dupsketch records how often each line of a stream occurs in a fixed size
counting sketch, then replays a stream and emits only the lines that probably
occurred more than once.

Lines are never emitted falsely absent: every real duplicate is reported.
A small fraction of unique lines may be reported too, depending on the sketch
size and how many distinct lines were inserted.

Work can be split across machines: build a sketch per shard, combine the
shard sketches (they must share size, probes and hash) and filter each shard
against the combined sketch.

Defaults are read from DS__* environment variables, e.g. DS__SKETCH__SIZE_BYTES=64Mi.
Sketch locations may be local paths, '-' for stdin/stdout, s3://bucket/key,
azblob://container/blob or redis://key.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newBuildCmd(), newFilterCmd(), newCombineCmd(), newInspectCmd(), newServeCmd())
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	exportMetrics()
	if err != nil {
		st.Logger.Error().Err(err).Msg("dupsketch failed")
		os.Exit(1)
	}
}

// exportMetrics publishes the run's metrics if a textfile or pushgateway is configured.
func exportMetrics() {
	m := st.Settings.Metrics
	if err := prom.Export(prometheus.DefaultGatherer, m.Textfile, m.PushURL, m.Job); err != nil {
		st.Logger.Warn().Err(err).Msg("could not export metrics")
	}
}
