package modes

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

type CombineStats struct {
	Inputs   int
	Sketches int
	Params   sketch.Params
	Written  int64
}

// CombineSketches merges every sketch of inputs, left to right.
// The first mismatching header fails the whole combine and names its input.
func CombineSketches(inputs []Input) (*sketch.Sketch, CombineStats, error) {
	stats := CombineStats{Inputs: len(inputs)}
	sk, n, err := foldSketches("combine", inputs)
	stats.Sketches = n
	if err != nil {
		return nil, stats, err
	}
	if n < 2 {
		return nil, stats, fmt.Errorf("%w, got %d", ErrTooFewSketches, n)
	}
	stats.Params = sk.Params()
	observe(sk)
	return sk, stats, nil
}

// CombineTo hands the merge of every sketch of inputs to save.
// save is not called if any input fails.
func CombineTo(inputs []Input, save Saver) (CombineStats, error) {
	sk, stats, err := CombineSketches(inputs)
	if err != nil {
		return stats, err
	}
	stats.Written, err = saveSketch(sk, save)
	if err != nil {
		return stats, err
	}
	st.Logger.Info().
		Str("mode", "combine").
		Int("inputs", stats.Inputs).
		Int("sketches", stats.Sketches).
		Stringer("params", stats.Params).
		Str("written", humanize.IBytes(uint64(stats.Written))).
		Msg("combined sketches")
	return stats, nil
}

// Combine writes the merge of every sketch of inputs to out.
func Combine(inputs []Input, out io.Writer) (CombineStats, error) {
	return CombineTo(inputs, WriterSaver(out))
}
