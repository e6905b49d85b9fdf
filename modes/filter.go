package modes

import (
	"bufio"
	"fmt"
	"io"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/lines"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/prom"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

type FilterOptions struct {
	// Estimate at which a line is emitted, at least 1.
	Threshold uint8
	Delimiter byte
}

type FilterStats struct {
	Lines   uint64
	Emitted uint64
}

// Filter copies to out each line of in whose estimate in sk reaches the
// threshold, in input order. Each emitted line is terminated by the
// delimiter, including a final line that had none. sk is not modified.
// Output still buffered when reading in fails is discarded.
func Filter(sk *sketch.Sketch, in io.Reader, out io.Writer, opts FilterOptions) (FilterStats, error) {
	stats := FilterStats{}
	if opts.Threshold == 0 {
		return stats, sketch.ErrBadThreshold
	}
	w := bufio.NewWriterSize(out, outputBufferBytes)
	sp := lines.NewSplitter(in, opts.Delimiter)
	for sp.Next() {
		line := sp.Line()
		if !sk.Exceeds(line, opts.Threshold) {
			continue
		}
		if _, err := w.Write(line); err != nil {
			return stats, fmt.Errorf("writing output: %w", err)
		}
		if err := w.WriteByte(opts.Delimiter); err != nil {
			return stats, fmt.Errorf("writing output: %w", err)
		}
		stats.Emitted++
	}
	stats.Lines = sp.Count()
	prom.LinesRead.WithLabelValues("filter").Add(float64(stats.Lines))
	prom.LinesEmitted.Add(float64(stats.Emitted))
	if err := sp.Err(); err != nil {
		// buffered output is dropped
		return stats, fmt.Errorf("reading lines: %w", err)
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("writing output: %w", err)
	}
	st.Logger.Info().
		Str("mode", "filter").
		Uint64("lines", stats.Lines).
		Uint64("emitted", stats.Emitted).
		Uint8("threshold", opts.Threshold).
		Msg("filtered lines")
	return stats, nil
}
