package sketch

import "math"

// Stats summarises how full a sketch is.
type Stats struct {
	Width     uint64 `json:"width"`
	Probes    uint32 `json:"probes"`
	Hash      string `json:"hash"`
	Nonzero   uint64 `json:"nonzero_counters"`
	Saturated uint64 `json:"saturated_counters"`
	// AtThreshold counts counters >= the threshold used to compute the stats.
	AtThreshold uint64  `json:"threshold_counters"`
	Threshold   uint8   `json:"threshold"`
	FillRatio   float64 `json:"fill_ratio"`
	// FalsePositiveRate is the chance that a line inserted exactly once is
	// still reported as a duplicate: every probe must land on a counter that
	// some other line also hit.
	FalsePositiveRate float64 `json:"estimated_false_positive_rate"`
	// AbsentPositiveRate is the same for a line that was never inserted.
	AbsentPositiveRate float64 `json:"estimated_absent_positive_rate"`
}

// Stats scans the counters. It is O(width).
func (s *Sketch) Stats(threshold uint8) Stats {
	st := Stats{
		Width:     s.params.Width,
		Probes:    s.params.Probes,
		Hash:      s.params.Hash.String(),
		Threshold: threshold,
	}
	for _, c := range s.counters {
		if c == 0 {
			continue
		}
		st.Nonzero++
		if c >= threshold {
			st.AtThreshold++
		}
		if c == CounterMax {
			st.Saturated++
		}
	}
	w := float64(s.params.Width)
	k := float64(s.params.Probes)
	st.FillRatio = float64(st.Nonzero) / w
	st.FalsePositiveRate = math.Pow(st.FillRatio, k)
	st.AbsentPositiveRate = math.Pow(float64(st.AtThreshold)/w, k)
	return st
}
