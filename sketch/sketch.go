package sketch

import (
	"bytes"
)

// Sketch is a fixed-size array of saturating counters plus its hashing params.
//
// A Sketch is not safe for concurrent mutation. Estimate and friends only read,
// so a fully built sketch may be queried from many goroutines.
type Sketch struct {
	params   Params
	counters []uint8
}

// New returns an empty sketch. The counter array is allocated up front so an
// oversized configuration fails here rather than part way through a build.
func New(p Params) (*Sketch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Sketch{params: p, counters: make([]uint8, p.Width)}, nil
}

// NewForSize returns an empty sketch using roughly sizeBytes of counters.
func NewForSize(sizeBytes uint64, probes uint32, hash HashFamily) (*Sketch, error) {
	width, err := WidthForSize(sizeBytes)
	if err != nil {
		return nil, err
	}
	return New(Params{Width: width, Probes: probes, Hash: hash})
}

// Params returns the merge key of the sketch.
func (s *Sketch) Params() Params {
	return s.params
}

// Counters exposes the raw counters. Callers must not modify them.
func (s *Sketch) Counters() []uint8 {
	return s.counters
}

// Insert records one occurrence of line.
func (s *Sketch) Insert(line []byte) {
	f := newFingerprint(s.params.Hash, s.params.Width, line)
	for i := uint32(0); i < s.params.Probes; i++ {
		j := f.slot(i)
		if s.counters[j] < CounterMax {
			s.counters[j]++
		}
	}
}

// Estimate returns an upper bound on the number of times line was inserted.
// Collisions only inflate counters, so the minimum over all probes is the
// tightest bound available and is never below the true count (until saturation).
func (s *Sketch) Estimate(line []byte) uint8 {
	f := newFingerprint(s.params.Hash, s.params.Width, line)
	est := uint8(CounterMax)
	for i := uint32(0); i < s.params.Probes; i++ {
		if v := s.counters[f.slot(i)]; v < est {
			est = v
			if est == 0 {
				break
			}
		}
	}
	return est
}

// Exceeds reports whether the estimate for line is at least threshold.
func (s *Sketch) Exceeds(line []byte, threshold uint8) bool {
	f := newFingerprint(s.params.Hash, s.params.Width, line)
	for i := uint32(0); i < s.params.Probes; i++ {
		if s.counters[f.slot(i)] < threshold {
			return false
		}
	}
	return true
}

// IsProbableDuplicate reports whether line was probably inserted more than once.
func (s *Sketch) IsProbableDuplicate(line []byte) bool {
	return s.Exceeds(line, DefaultThreshold)
}

// Compatible reports whether other can be merged into s.
func (s *Sketch) Compatible(other *Sketch) bool {
	return s.params == other.params
}

// Check returns a *MismatchError naming source if p differs from the params of s.
func (s *Sketch) Check(p Params, source string) error {
	if s.params != p {
		return &MismatchError{Source: source, Want: s.params, Got: p}
	}
	return nil
}

// Merge adds the counters of other into s, saturating at CounterMax.
// Nothing is modified if the params differ.
func (s *Sketch) Merge(other *Sketch) error {
	if err := s.Check(other.params, ""); err != nil {
		return err
	}
	mergeCounters(s.counters, other.counters)
	return nil
}

func mergeCounters(dst, src []uint8) {
	for j, b := range src {
		a := dst[j]
		c := a + b
		if c < a {
			c = CounterMax
		}
		dst[j] = c
	}
}

// Clone returns a deep copy of s.
func (s *Sketch) Clone() *Sketch {
	return &Sketch{params: s.params, counters: bytes.Clone(s.counters)}
}

// Equal reports whether both sketches have the same params and counters.
func (s *Sketch) Equal(other *Sketch) bool {
	return s.params == other.params && bytes.Equal(s.counters, other.counters)
}
