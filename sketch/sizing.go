package sketch

import "math/bits"

// WidthForSize returns the counter width for a sketch of sizeBytes.
// One counter is one byte; the width is rounded up to a power of two.
func WidthForSize(sizeBytes uint64) (uint64, error) {
	if sizeBytes == 0 {
		return 0, ErrBadWidth
	}
	if sizeBytes > MaxWidth {
		return 0, ErrSizeOverflow
	}
	// round up
	width := uint64(1) << bits.Len64(sizeBytes-1)
	if width > MaxWidth {
		return 0, ErrSizeOverflow
	}
	return width, nil
}

// EncodedLen returns the serialized size of a sketch with params p.
func (p Params) EncodedLen() int64 {
	return HeaderBytes + int64(p.Width)
}
