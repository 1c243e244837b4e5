package click

import (
	"errors"
	"fmt"
)

// Tempo range offered by the UI. The core only requires a positive tempo.
const (
	MinTempo     = 40.0
	MaxTempo     = 240.0
	DefaultTempo = 120.0
)

// Loop length of a generated sequence, in beats
const BeatLength = 1.0

// ErrInvalidSubdivision is returned when a sequence is requested for fewer than one click per beat.
var ErrInvalidSubdivision = errors.New("invalid subdivision")

// Note identifies which click sound an event plays
type Note int

const (
	Accent  Note = iota // downbeat
	Regular             // subdivision click
)

func (n Note) String() string {
	switch n {
	case Accent:
		return "accent"
	case Regular:
		return "regular"
	}
	return fmt.Sprintf("note(%d)", int(n))
}

// Event is a single click inside the one-beat loop.
// Position and Duration are in beats.
type Event struct {
	Position float64
	Note     Note
	Velocity uint8
	Duration float64
}

// Sequence is one beat worth of clicks, ordered by position
type Sequence struct {
	Events []Event
	Length float64
	Loop   bool
}

// ClampSubdivision returns n, or 1 if n is below 1
func ClampSubdivision(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Generate builds the click sequence for n clicks per beat using DefaultVoicing.
func Generate(n int) (Sequence, error) {
	return GenerateWith(n, DefaultVoicing)
}

// GenerateWith builds the click sequence for n clicks per beat: an accent on
// the downbeat followed by n-1 evenly spaced regular clicks.
func GenerateWith(n int, v Voicing) (Sequence, error) {
	if n < 1 {
		return Sequence{}, fmt.Errorf("%w: %d", ErrInvalidSubdivision, n)
	}

	events := make([]Event, 0, n)
	events = append(events, Event{
		Position: 0,
		Note:     Accent,
		Velocity: v.Accent.Velocity,
		Duration: v.Accent.Duration,
	})

	for i := 1; i < n; i++ {
		events = append(events, Event{
			// i/n rather than i*(1/n) so 1/3, 2/3 come out exact
			Position: float64(i) / float64(n),
			Note:     Regular,
			Velocity: v.Regular.Velocity,
			Duration: v.Regular.Duration,
		})
	}

	return Sequence{
		Events: events,
		Length: BeatLength,
		Loop:   true,
	}, nil
}
