package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"go-metronome/debug"
)

const DefaultSampleRate = 44100

// Engine owns the speaker and a mixer that click streams are added to
type Engine struct {
	sampleRate beep.SampleRate
	mixer      *beep.Mixer

	mu      sync.Mutex
	started bool

	// speaker hooks, replaced for offline use
	initSpeaker func(beep.SampleRate, int) error
	play        func(...beep.Streamer)
	lock        func()
	unlock      func()
	closeOutput func()
}

// NewEngine creates an engine for the system speaker
func NewEngine(sampleRate int) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Engine{
		sampleRate:  beep.SampleRate(sampleRate),
		mixer:       &beep.Mixer{},
		initSpeaker: speaker.Init,
		play:        speaker.Play,
		lock:        speaker.Lock,
		unlock:      speaker.Unlock,
		closeOutput: speaker.Close,
	}
}

// SampleRate returns the output rate
func (e *Engine) SampleRate() beep.SampleRate {
	return e.sampleRate
}

// Start opens the speaker with a 10ms buffer. Calling it again does nothing.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	if err := e.initSpeaker(e.sampleRate, e.sampleRate.N(time.Second/100)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	e.play(e.mixer)
	e.started = true
	debug.Log("audio", "speaker started at %d Hz", e.sampleRate)
	return nil
}

// Close releases the speaker
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		e.closeOutput()
		e.started = false
	}
}

// add mixes s into the output. Dropped if the engine is not running.
func (e *Engine) add(s beep.Streamer) {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return
	}

	e.lock()
	e.mixer.Add(s)
	e.unlock()
}
