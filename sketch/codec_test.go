package sketch

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func encoded(t *testing.T, s *Sketch) []byte {
	raw, err := s.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestHeaderLayout(t *testing.T) {
	s := newTestSketch(t, 16, 2, HashXX)
	raw := encoded(t, s)
	require.Len(t, raw, HeaderBytes+16)
	require.Equal(t, []byte("DUPS"), raw[0:4])
	require.Equal(t, Version, raw[4])
	require.Equal(t, uint8(HashXX), raw[5])
	require.Equal(t, CounterBits, raw[6])
	require.Equal(t, uint8(0), raw[7])
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(raw[8:12]))
	require.Equal(t, uint64(16), binary.LittleEndian.Uint64(raw[12:20]))
	require.Equal(t, make([]byte, 16), raw[HeaderBytes:])
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, hash := range []HashFamily{HashMetro, HashXX} {
		s := newTestSketch(t, 1024, 4, hash)
		for _, l := range duplicatedLines(rng, 50, 500) {
			s.Insert(l)
		}

		raw := encoded(t, s)
		var decoded Sketch
		require.NoError(t, decoded.UnmarshalBinary(raw))
		require.True(t, s.Equal(&decoded))

		// serialize(deserialize(bytes)) == bytes
		again := encoded(t, &decoded)
		require.Equal(t, raw, again)

		// streaming form matches the buffered form
		buf := &bytes.Buffer{}
		n, err := s.WriteTo(buf)
		require.NoError(t, err)
		require.Equal(t, s.Params().EncodedLen(), n)
		require.Equal(t, raw, buf.Bytes())

		streamed, err := ReadFrom(bytes.NewReader(raw))
		require.NoError(t, err)
		require.True(t, s.Equal(streamed))
	}
}

func TestReadConcatenated(t *testing.T) {
	a := newTestSketch(t, 16, 2, HashMetro)
	a.Insert([]byte("a"))
	b := newTestSketch(t, 32, 3, HashMetro)
	b.Insert([]byte("b"))

	stream := bytes.NewReader(append(encoded(t, a), encoded(t, b)...))
	first, err := ReadFrom(stream)
	require.NoError(t, err)
	require.True(t, a.Equal(first))
	second, err := ReadFrom(stream)
	require.NoError(t, err)
	require.True(t, b.Equal(second))
	_, err = ReadFrom(stream)
	require.ErrorIs(t, err, io.EOF)
}

func TestDecodeErrors(t *testing.T) {
	good := encoded(t, newTestSketch(t, 16, 2, HashMetro))
	mutate := func(f func(b []byte) []byte) []byte {
		return f(bytes.Clone(good))
	}
	tables := []struct {
		test string
		raw  []byte
		err  error
	}{
		{"empty", []byte{}, ErrTruncated},
		{"short header", good[:HeaderBytes-1], ErrTruncated},
		{"short body", good[:len(good)-1], ErrTruncated},
		{"header only", good[:HeaderBytes], ErrTruncated},
		{"trailing", append(bytes.Clone(good), 0), ErrTrailingData},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), ErrBadMagic},
		{"version", mutate(func(b []byte) []byte { b[4] = 9; return b }), ErrBadVersion},
		{"hash", mutate(func(b []byte) []byte { b[5] = 0; return b }), ErrBadHash},
		{"counter bits", mutate(func(b []byte) []byte { b[6] = 2; return b }), ErrBadCounterBits},
		{"reserved", mutate(func(b []byte) []byte { b[7] = 1; return b }), ErrBadReserved},
		{"zero probes", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[8:12], 0); return b }), ErrBadProbes},
		{"width not power of two", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[12:20], 15); return b }), ErrBadWidth},
		{"zero width", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[12:20], 0); return b }), ErrBadWidth},
		{"width mismatch", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[12:20], 32); return b }), ErrTruncated},
	}
	for _, table := range tables {
		var s Sketch
		err := s.UnmarshalBinary(table.raw)
		require.ErrorIs(t, err, table.err, "Test: %s", table.test)
	}
}

func TestStreamDecodeErrors(t *testing.T) {
	good := encoded(t, newTestSketch(t, 16, 2, HashMetro))

	_, err := ReadFrom(bytes.NewReader(good[:5]))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = ReadFrom(bytes.NewReader(good[:HeaderBytes+3]))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = ReadFrom(bytes.NewReader(good[:HeaderBytes]))
	require.ErrorIs(t, err, ErrTruncated)

	bad := bytes.Clone(good)
	bad[4] = 2
	_, err = ReadFrom(bytes.NewReader(bad))
	require.ErrorIs(t, err, ErrBadHeader)

	// a header error is never reported as a clean end of stream
	require.NotErrorIs(t, err, io.EOF)
}

func TestHugeWidthHeaderIsTruncated(t *testing.T) {
	var hdr [HeaderBytes]byte
	require.NoError(t, EncodeHeader(hdr[:], Params{Width: MaxWidth, Probes: 2, Hash: HashMetro}))

	tables := []struct {
		test string
		body []byte
	}{
		{"no body", nil},
		{"a few counters", []byte{1, 2, 3}},
		{"more than one chunk", make([]byte, bodyChunkBytes+10)},
	}
	for _, table := range tables {
		t.Run(table.test, func(t *testing.T) {
			raw := append(bytes.Clone(hdr[:]), table.body...)
			_, err := ReadFrom(bytes.NewReader(raw))
			require.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestReadBodySpanningChunks(t *testing.T) {
	s := newTestSketch(t, 2*bodyChunkBytes, 2, HashXX)
	s.Insert([]byte("first"))
	s.Insert([]byte("first"))
	s.Insert([]byte("second"))

	got, err := ReadFrom(bytes.NewReader(encoded(t, s)))
	require.NoError(t, err)
	require.True(t, s.Equal(got))
	require.Equal(t, uint8(2), got.Estimate([]byte("first")))
}

func TestEncodeHeaderRejectsInvalidParams(t *testing.T) {
	var hdr [HeaderBytes]byte
	require.ErrorIs(t, EncodeHeader(hdr[:], Params{Width: 3, Probes: 1, Hash: HashMetro}), ErrBadWidth)
	require.ErrorIs(t, EncodeHeader(hdr[:4], Params{Width: 4, Probes: 1, Hash: HashMetro}), io.ErrShortBuffer)
}
