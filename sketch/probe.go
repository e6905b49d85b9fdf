package sketch

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-metro"
)

// HashFamily selects the pair of base hashes a sketch probes with.
// Its numeric value is persisted in the sketch header.
type HashFamily uint8

const (
	// HashMetro uses the two halves of MetroHash128.
	HashMetro HashFamily = 1
	// HashXX uses XXH64 unseeded for h1 and XXH64 seeded for h2.
	HashXX HashFamily = 2

	DefaultHash = HashMetro
)

// xxSeed is the fixed seed of the second xxhash pass. Changing it breaks
// every persisted xxhash sketch.
const xxSeed = 0x9e3779b97f4a7c15

func (h HashFamily) valid() bool {
	return h == HashMetro || h == HashXX
}

func (h HashFamily) String() string {
	switch h {
	case HashMetro:
		return "metro"
	case HashXX:
		return "xxhash"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(h))
	}
}

// ParseHashFamily converts a configured hash name to a HashFamily.
func ParseHashFamily(name string) (HashFamily, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "metro", "metrohash", "metro128":
		return HashMetro, nil
	case "xx", "xxhash", "xxh64":
		return HashXX, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadHash, name)
}

// fingerprint holds everything needed to derive the probe slots of one line.
type fingerprint struct {
	h1, h2, mask uint64
}

func newFingerprint(h HashFamily, width uint64, line []byte) fingerprint {
	var h1, h2 uint64
	switch h {
	case HashXX:
		h1 = xxhash.Sum64(line)
		d := xxhash.NewWithSeed(xxSeed)
		_, _ = d.Write(line)
		h2 = d.Sum64()
	default:
		h1, h2 = metro.Hash128(line, 0)
	}
	// width is a power of two, so any odd stride visits every slot before repeating
	h2 |= 1
	return fingerprint{h1: h1, h2: h2, mask: width - 1}
}

func (f fingerprint) slot(i uint32) uint64 {
	return (f.h1 + uint64(i)*f.h2) & f.mask
}

// Probe returns the counter slot of probe i for line.
func (p Params) Probe(line []byte, i uint32) uint64 {
	return newFingerprint(p.Hash, p.Width, line).slot(i)
}

// Slots appends all probe slots for line to dst.
func (p Params) Slots(dst []uint64, line []byte) []uint64 {
	f := newFingerprint(p.Hash, p.Width, line)
	for i := uint32(0); i < p.Probes; i++ {
		dst = append(dst, f.slot(i))
	}
	return dst
}
