package modes

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/lines"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/prom"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

type BuildOptions struct {
	// Minimum counter bytes, rounded up to a power of two.
	SizeBytes uint64
	Probes    uint32
	Hash      sketch.HashFamily
	Delimiter byte
}

type BuildStats struct {
	Lines   uint64
	Bytes   uint64
	Params  sketch.Params
	Written int64
}

// Builder inserts the lines of any number of streams into one sketch.
// Each stream is split on its own, so a final line without a delimiter
// never runs into the first line of the next stream.
type Builder struct {
	sk    *sketch.Sketch
	delim byte
	stats BuildStats
}

// NewBuilder allocates the empty sketch described by opts.
func NewBuilder(opts BuildOptions) (*Builder, error) {
	sk, err := sketch.NewForSize(opts.SizeBytes, opts.Probes, opts.Hash)
	if err != nil {
		return nil, err
	}
	return &Builder{sk: sk, delim: opts.Delimiter, stats: BuildStats{Params: sk.Params()}}, nil
}

// ReadFrom inserts every line of r, returning the bytes consumed.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	start := time.Now()
	sp := lines.NewSplitter(r, b.delim)
	for sp.Next() {
		b.sk.Insert(sp.Line())
	}
	b.stats.Lines += sp.Count()
	b.stats.Bytes += sp.Bytes()
	prom.LinesRead.WithLabelValues("build").Add(float64(sp.Count()))
	if err := sp.Err(); err != nil {
		return int64(sp.Bytes()), fmt.Errorf("reading lines: %w", err)
	}
	st.Logger.Debug().
		Str("mode", "build").
		Uint64("lines", sp.Count()).
		Uint64("bytes", sp.Bytes()).
		Dur("elapsed", time.Since(start)).
		Msg("inserted lines")
	return int64(sp.Bytes()), nil
}

// Sketch returns the sketch built so far.
func (b *Builder) Sketch() *sketch.Sketch {
	return b.sk
}

func (b *Builder) Stats() BuildStats {
	return b.stats
}

// BuildSketch inserts every line of in into a new sketch.
func BuildSketch(in io.Reader, opts BuildOptions) (*sketch.Sketch, BuildStats, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, BuildStats{}, err
	}
	if _, err := b.ReadFrom(in); err != nil {
		return nil, b.Stats(), err
	}
	observe(b.sk)
	return b.sk, b.Stats(), nil
}

// Save hands the sketch built so far to save and logs a summary.
func (b *Builder) Save(save Saver) (BuildStats, error) {
	observe(b.sk)
	written, err := saveSketch(b.sk, save)
	if err != nil {
		return b.stats, err
	}
	b.stats.Written = written
	st.Logger.Info().
		Str("mode", "build").
		Uint64("lines", b.stats.Lines).
		Str("read", humanize.IBytes(b.stats.Bytes)).
		Stringer("params", b.stats.Params).
		Str("written", humanize.IBytes(uint64(written))).
		Msg("built sketch")
	return b.stats, nil
}

// Build writes the sketch of every line of in to out.
// Nothing is written unless the whole input was read.
func Build(in io.Reader, out io.Writer, opts BuildOptions) (BuildStats, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return BuildStats{}, err
	}
	if _, err := b.ReadFrom(in); err != nil {
		return b.Stats(), err
	}
	return b.Save(WriterSaver(out))
}
