package click

import "fmt"

// Preset is a named subdivision
type Preset int

const (
	Quarter    Preset = 1
	Eighth     Preset = 2
	Triplet    Preset = 3
	Sixteenth  Preset = 4
	Quintuplet Preset = 5
	Sextuplet  Preset = 6
)

// MaxPresetSubdivision is the largest subdivision the UI offers
const MaxPresetSubdivision = int(Sextuplet)

// Presets lists all presets in ascending order
var Presets = []Preset{Quarter, Eighth, Triplet, Sixteenth, Quintuplet, Sextuplet}

// Subdivision returns clicks per beat
func (p Preset) Subdivision() int {
	return int(p)
}

func (p Preset) String() string {
	switch p {
	case Quarter:
		return "Quarter Notes"
	case Eighth:
		return "Eighth Notes"
	case Triplet:
		return "Triplets"
	case Sixteenth:
		return "Sixteenth Notes"
	case Quintuplet:
		return "Quintuplets"
	case Sextuplet:
		return "Sextuplets"
	}
	return fmt.Sprintf("%d per beat", int(p))
}

// PresetFor returns the preset matching n clicks per beat, if any
func PresetFor(n int) (Preset, bool) {
	for _, p := range Presets {
		if p.Subdivision() == n {
			return p, true
		}
	}
	return 0, false
}

// Describe names a subdivision for display
func Describe(n int) string {
	if p, ok := PresetFor(n); ok {
		return p.String()
	}
	return Preset(n).String()
}
