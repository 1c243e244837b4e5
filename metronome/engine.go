package metronome

import "go-metronome/click"

// Engine is the audio backend that must be running before clicks can sound
type Engine interface {
	Start() error
}

// Sampler plays click sounds
type Sampler interface {
	SetVolume(v float64) // 0.0 to 1.0
	LoadSounds(names []string) error
}

// Track is a loopable container of timed click events
type Track interface {
	Clear()
	Add(note click.Note, velocity uint8, position, duration float64)
	SetLength(beats float64)
	SetLoopEnabled(loop bool)
}

// Sequencer plays tracks at a tempo
type Sequencer interface {
	SetTempo(bpm float64)
	AddTrack(s Sampler) Track
	PlayFromStart()
	Stop()
}

// ClickSounds are the sample names for the regular (C1) and accent (D1) clicks
var ClickSounds = []string{"click_C1", "click_D1"}
