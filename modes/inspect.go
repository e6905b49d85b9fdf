package modes

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

// Report describes one serialized sketch.
type Report struct {
	Input string `json:"input"`
	Index int    `json:"index"`
	Bytes int64  `json:"encoded_bytes"`
	sketch.Stats
}

// Inspect writes a JSON array with one Report per sketch found in inputs.
// Sketches with different params may be inspected together.
func Inspect(inputs []Input, out io.Writer, threshold uint8) ([]Report, error) {
	if threshold == 0 {
		return nil, sketch.ErrBadThreshold
	}
	reports := []Report{}
	for _, in := range inputs {
		// each input is read on its own so differing params are allowed
		_, err := readSketches("inspect", []Input{in}, func(in Input, index int, sk *sketch.Sketch) error {
			reports = append(reports, Report{
				Input: in.Name,
				Index: index,
				Bytes: sk.Params().EncodedLen(),
				Stats: sk.Stats(threshold),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	raw, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, err
	}
	raw = append(raw, '\n')
	if _, err := out.Write(raw); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	return reports, nil
}
