// Package geometry offers a small, informational registry of well-known FAT32 volume
// sizes, used by Volume.SizeLabel to describe a mounted volume; neither the shell nor
// the CLI prints that label. It never feeds back
// into parsed BPB geometry -- the label is a hint for humans, not a validation source.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Preset describes one well-known FAT32-formatted media size.
type Preset struct {
	Label        string `csv:"label"`
	SizeBytes    int64  `csv:"size_bytes"`
	TypicalMedia string `csv:"typical_media"`
}

//go:embed presets.csv
var presetsCSV string

var presets []Preset

func init() {
	reader := strings.NewReader(presetsCSV)
	if err := gocsv.UnmarshalToCallback(reader, func(row Preset) error {
		presets = append(presets, row)
		return nil
	}); err != nil && err != io.EOF {
		panic(fmt.Sprintf("geometry: malformed embedded presets.csv: %s", err))
	}
}

// Describe returns an advisory label for a volume of the given size, or ok=false if
// no known preset is within 1% of it.
func Describe(sizeBytes int64) (label string, ok bool) {
	for _, p := range presets {
		delta := p.SizeBytes - sizeBytes
		if delta < 0 {
			delta = -delta
		}
		if delta*100 <= p.SizeBytes {
			return fmt.Sprintf("%s (%s)", p.Label, p.TypicalMedia), true
		}
	}
	return "", false
}
