package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/lines"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

// sizeValue is a byte count flag accepting suffixes such as 64Mi or 1G.
type sizeValue uint64

func (s *sizeValue) String() string {
	return humanize.IBytes(uint64(*s))
}

func (s *sizeValue) Set(v string) error {
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return err
	}
	*s = sizeValue(n)
	return nil
}

func (s *sizeValue) Type() string {
	return "size"
}

// sketchFlags are the params every sketch of a workflow must share.
type sketchFlags struct {
	size   sizeValue
	probes uint32
	hash   string
}

func (f *sketchFlags) register(c *cobra.Command) {
	f.size = sizeValue(st.Sketch.SizeBytes)
	f.probes = st.Sketch.Probes
	f.hash = st.Sketch.Hash
	c.Flags().VarP(&f.size, "size", "s", "sketch size in bytes, rounded up to a power of two (e.g. 64Mi)")
	c.Flags().Uint32VarP(&f.probes, "probes", "k", f.probes, "number of counters probed per line")
	c.Flags().StringVar(&f.hash, "hash", f.hash, "probe hash family: metro or xxhash")
}

func (f *sketchFlags) options(delim byte) (modes.BuildOptions, error) {
	hash, err := sketch.ParseHashFamily(f.hash)
	if err != nil {
		return modes.BuildOptions{}, err
	}
	return modes.BuildOptions{SizeBytes: uint64(f.size), Probes: f.probes, Hash: hash, Delimiter: delim}, nil
}

// lineFlags control how line inputs are split and read.
type lineFlags struct {
	zeroTerminated bool
	progress       bool
}

func (f *lineFlags) register(c *cobra.Command) {
	f.zeroTerminated = st.Sketch.ZeroTerminated
	c.Flags().BoolVarP(&f.zeroTerminated, "zero-terminated", "0", f.zeroTerminated, "lines are terminated by NUL instead of newline")
	c.Flags().BoolVar(&f.progress, "progress", false, "show read progress of line inputs on stderr")
}

func (f *lineFlags) delimiter() byte {
	return lines.Delimiter(f.zeroTerminated)
}
