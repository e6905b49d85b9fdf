package sketch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Serialized layout, little endian:
//
//	+-------+---------+------+-------------+----------+--------+-------+
//	| magic | version | hash | counterBits | reserved | probes | width |
//	| 4B    | 1B      | 1B   | 1B          | 1B       | u32    | u64   |
//	+-------+---------+------+-------------+----------+--------+-------+
//	| width counter bytes                                              |
//	+------------------------------------------------------------------+
//
// Sketches are self delimiting, so several encodings written back to back
// form a valid multi-sketch stream.
const (
	HeaderBytes = 20

	Magic           = "DUPS"
	Version   uint8 = 1
)

var ErrTrailingData = errors.New("sketch: trailing data after counters")

// EncodeHeader writes the header for p into b, which must hold HeaderBytes.
func EncodeHeader(b []byte, p Params) error {
	if len(b) < HeaderBytes {
		return io.ErrShortBuffer
	}
	if err := p.Validate(); err != nil {
		return err
	}
	copy(b[0:4], Magic)
	b[4] = Version
	b[5] = uint8(p.Hash)
	b[6] = CounterBits
	b[7] = 0
	binary.LittleEndian.PutUint32(b[8:12], p.Probes)
	binary.LittleEndian.PutUint64(b[12:20], p.Width)
	return nil
}

// DecodeHeader parses and validates a header.
func DecodeHeader(b []byte) (Params, error) {
	if len(b) < HeaderBytes {
		return Params{}, ErrTruncated
	}
	if string(b[0:4]) != Magic {
		return Params{}, ErrBadMagic
	}
	if b[4] != Version {
		return Params{}, ErrBadVersion
	}
	if b[6] != CounterBits {
		return Params{}, ErrBadCounterBits
	}
	if b[7] != 0 {
		return Params{}, ErrBadReserved
	}
	p := Params{
		Hash:   HashFamily(b[5]),
		Probes: binary.LittleEndian.Uint32(b[8:12]),
		Width:  binary.LittleEndian.Uint64(b[12:20]),
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	return p, nil
}

// ReadHeader reads one header from r.
//
// io.EOF is returned only if r was already exhausted, which marks the clean
// end of a multi-sketch stream. A partial header is ErrTruncated.
func ReadHeader(r io.Reader) (Params, error) {
	var hdr [HeaderBytes]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Params{}, fmt.Errorf("%w: header", ErrTruncated)
		}
		return Params{}, err
	}
	return DecodeHeader(hdr[:])
}

// Counters are read in chunks of at most this many bytes, so a header
// claiming a huge width only costs memory once the body actually arrives.
const bodyChunkBytes = 16 * 1024 * 1024

// ReadBody fills the counters of a sketch for p from r.
func ReadBody(r io.Reader, p Params) (*Sketch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	counters := make([]uint8, 0, min(p.Width, bodyChunkBytes))
	for uint64(len(counters)) < p.Width {
		start := len(counters)
		n := int(min(p.Width-uint64(start), bodyChunkBytes))
		counters = slices.Grow(counters, n)[:start+n]
		if _, err := io.ReadFull(r, counters[start:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: expected %d counters", ErrTruncated, p.Width)
			}
			return nil, err
		}
	}
	return &Sketch{params: p, counters: counters}, nil
}

// ReadFrom decodes the next sketch in r. See ReadHeader for io.EOF handling.
func ReadFrom(r io.Reader) (*Sketch, error) {
	p, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	return ReadBody(r, p)
}

// WriteTo serializes s to w.
func (s *Sketch) WriteTo(w io.Writer) (int64, error) {
	var hdr [HeaderBytes]byte
	if err := EncodeHeader(hdr[:], s.params); err != nil {
		return 0, err
	}
	n, err := w.Write(hdr[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(s.counters)
	total += int64(n)
	return total, err
}

// MarshalBinary returns the serialized sketch.
func (s *Sketch) MarshalBinary() ([]byte, error) {
	buf := make([]byte, s.params.EncodedLen())
	if err := EncodeHeader(buf, s.params); err != nil {
		return nil, err
	}
	copy(buf[HeaderBytes:], s.counters)
	return buf, nil
}

// UnmarshalBinary replaces s with the single sketch encoded in data.
// data must hold exactly one sketch.
func (s *Sketch) UnmarshalBinary(data []byte) error {
	p, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	want := p.EncodedLen()
	if int64(len(data)) < want {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrTruncated, want, len(data))
	}
	if int64(len(data)) > want {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrTrailingData, want, len(data))
	}
	counters := make([]uint8, p.Width)
	copy(counters, data[HeaderBytes:])
	s.params = p
	s.counters = counters
	return nil
}
