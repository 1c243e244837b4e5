package click

// Click voicing constants. Durations are in beats.
const (
	AccentVelocity  uint8 = 100
	AccentDuration        = 0.5
	RegularVelocity uint8 = 127
	RegularDuration       = 0.7

	SoftRegularVelocity uint8 = 100
	SoftRegularDuration       = 0.5
)

// Voice is the velocity and length used for one kind of click
type Voice struct {
	Velocity uint8
	Duration float64
}

// Voicing holds the voice for each click identity
type Voicing struct {
	Accent  Voice
	Regular Voice
}

// DefaultVoicing plays subdivision clicks at full velocity
var DefaultVoicing = Voicing{
	Accent:  Voice{Velocity: AccentVelocity, Duration: AccentDuration},
	Regular: Voice{Velocity: RegularVelocity, Duration: RegularDuration},
}

// SoftVoicing plays subdivision clicks at the same level as the accent
var SoftVoicing = Voicing{
	Accent:  Voice{Velocity: AccentVelocity, Duration: AccentDuration},
	Regular: Voice{Velocity: SoftRegularVelocity, Duration: SoftRegularDuration},
}

// For returns the voice for a note
func (v Voicing) For(n Note) Voice {
	if n == Accent {
		return v.Accent
	}
	return v.Regular
}
