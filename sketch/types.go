package sketch

import (
	"errors"
	"fmt"
	"math"
)

const (
	// CounterMax is the value at which counters saturate.
	CounterMax = math.MaxUint8

	// CounterBits is the width of a single counter in the serialized form.
	CounterBits uint8 = 8

	// DefaultThreshold is the estimate at which a line is a probable duplicate.
	DefaultThreshold uint8 = 2

	// DefaultProbes is the probe count used when none is configured.
	DefaultProbes uint32 = 2

	// MaxWidth bounds the counter array so that a bad size or a corrupt
	// header cannot request an absurd allocation (1TiB of counters).
	MaxWidth uint64 = 1 << 40

	// MaxProbes bounds per-line work.
	MaxProbes uint32 = 64
)

var (
	ErrBadWidth      = errors.New("sketch: width must be a non-zero power of two")
	ErrBadProbes     = errors.New("sketch: probes must be between 1 and 64")
	ErrBadHash       = errors.New("sketch: unknown hash family")
	ErrBadThreshold  = errors.New("sketch: threshold must be at least 1")
	ErrSizeOverflow  = errors.New("sketch: size exceeds supported maximum")
	ErrParamMismatch = errors.New("sketch: parameter mismatch")

	ErrBadHeader      = errors.New("sketch: bad header")
	ErrBadMagic       = fmt.Errorf("%w: magic invalid", ErrBadHeader)
	ErrBadVersion     = fmt.Errorf("%w: version unsupported", ErrBadHeader)
	ErrBadCounterBits = fmt.Errorf("%w: counter bits unsupported", ErrBadHeader)
	ErrBadReserved    = fmt.Errorf("%w: reserved byte set", ErrBadHeader)
	ErrTruncated      = errors.New("sketch: truncated input")
)

// Params are the values two sketches must share to be merged.
type Params struct {
	Width  uint64
	Probes uint32
	Hash   HashFamily
}

// Validate checks the params describe a sketch this package can allocate.
func (p Params) Validate() error {
	if p.Width == 0 || p.Width&(p.Width-1) != 0 {
		return ErrBadWidth
	}
	if p.Width > MaxWidth {
		return ErrSizeOverflow
	}
	if p.Probes == 0 || p.Probes > MaxProbes {
		return ErrBadProbes
	}
	if !p.Hash.valid() {
		return ErrBadHash
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("width=%d probes=%d hash=%s", p.Width, p.Probes, p.Hash)
}

// MismatchError reports the sketch that disagreed during a merge.
type MismatchError struct {
	// Source names the offending input, if known.
	Source string
	Want   Params
	Got    Params
}

func (e *MismatchError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%v: want %v, got %v", ErrParamMismatch, e.Want, e.Got)
	}
	return fmt.Sprintf("%v: %s has %v, want %v", ErrParamMismatch, e.Source, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrParamMismatch
}
