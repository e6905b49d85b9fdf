/*
Package modes drives the three sketch workflows over streams.

Build turns a line stream into a sketch, Filter replays a line stream
against a finished sketch and Combine merges the partial sketches of
independent shards. Every function makes a single forward pass.
*/
package modes

import (
	"errors"
	"fmt"
	"io"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/prom"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

var (
	ErrNoSketch       = errors.New("no sketch in input")
	ErrTooFewSketches = errors.New("combine needs at least two sketches")
)

// Size of the buffered writer wrapping outputs
const outputBufferBytes = 1024 * 1024

// Input is a named stream holding one or more concatenated sketches.
type Input struct {
	Name string
	R    io.Reader
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// sketchVisitor receives each decoded sketch in stream order.
type sketchVisitor func(in Input, index int, sk *sketch.Sketch) error

// readSketches decodes every sketch of every input in order. Headers after the
// first must match want before the body is read, so a mismatch never costs
// an allocation or a merge.
func readSketches(mode string, inputs []Input, visit sketchVisitor) (int, error) {
	var want *sketch.Params
	total := 0
	for _, in := range inputs {
		cr := &countingReader{r: in.R}
		index := 0
		for {
			p, err := sketch.ReadHeader(cr)
			if errors.Is(err, io.EOF) {
				break
			}
			source := fmt.Sprintf("%s (sketch %d)", in.Name, index)
			if err != nil {
				return total, fmt.Errorf("%s: %w", source, err)
			}
			if want != nil && *want != p {
				return total, &sketch.MismatchError{Source: source, Want: *want, Got: p}
			}
			sk, err := sketch.ReadBody(cr, p)
			if err != nil {
				return total, fmt.Errorf("%s: %w", source, err)
			}
			if want == nil {
				want = &p
			}
			prom.SketchesRead.WithLabelValues(mode).Inc()
			if err := visit(in, index, sk); err != nil {
				return total, err
			}
			index++
			total++
		}
		prom.SketchBytes.WithLabelValues("read").Add(float64(cr.n))
		if index == 0 {
			return total, fmt.Errorf("%s: %w", in.Name, ErrNoSketch)
		}
	}
	return total, nil
}

// foldSketches merges every sketch of inputs into the first one read.
func foldSketches(mode string, inputs []Input) (*sketch.Sketch, int, error) {
	var acc *sketch.Sketch
	n, err := readSketches(mode, inputs, func(in Input, index int, sk *sketch.Sketch) error {
		if acc == nil {
			acc = sk
			return nil
		}
		if err := acc.Merge(sk); err != nil {
			return fmt.Errorf("%s (sketch %d): %w", in.Name, index, err)
		}
		prom.SketchesMerged.Inc()
		return nil
	})
	if err != nil {
		return nil, n, err
	}
	if acc == nil {
		return nil, 0, ErrNoSketch
	}
	return acc, n, nil
}

// LoadSketch reads all sketches from inputs and merges them into one.
func LoadSketch(inputs ...Input) (*sketch.Sketch, error) {
	sk, _, err := foldSketches("load", inputs)
	if err != nil {
		return nil, err
	}
	observe(sk)
	return sk, nil
}

// observe publishes the fill of sk.
func observe(sk *sketch.Sketch) {
	stats := sk.Stats(sketch.DefaultThreshold)
	prom.SketchFillRatio.Set(stats.FillRatio)
	prom.SketchSaturated.Set(float64(stats.Saturated))
}

// Saver stores one encoded sketch of size bytes, produced by src.
type Saver func(src io.WriterTo, size int64) error

// WriterSaver saves straight to w.
func WriterSaver(w io.Writer) Saver {
	return func(src io.WriterTo, _ int64) error {
		_, err := src.WriteTo(w)
		return err
	}
}

// saveSketch hands the encoding of sk to save.
func saveSketch(sk *sketch.Sketch, save Saver) (int64, error) {
	size := sk.Params().EncodedLen()
	if err := save(sk, size); err != nil {
		return 0, fmt.Errorf("writing sketch: %w", err)
	}
	prom.SketchBytes.WithLabelValues("write").Add(float64(size))
	return size, nil
}
