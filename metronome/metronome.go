package metronome

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go-metronome/click"
	"go-metronome/debug"
)

var (
	ErrInvalidTempo = errors.New("invalid tempo")
	ErrEngineStart  = errors.New("engine start failed")
	ErrSoundLoad    = errors.New("sound load failed")
)

// State is a snapshot of the controller for display
type State struct {
	Tempo       float64
	Subdivision int
	Volume      float64
	Playing     bool
}

// Controller owns play/stop state and keeps the sequencer's click track in
// sync with tempo and subdivision.
type Controller struct {
	engine    Engine
	sequencer Sequencer
	sampler   Sampler

	mu          sync.Mutex
	track       Track
	installed   click.Sequence
	tempo       float64
	subdivision int
	volume      float64
	voicing     click.Voicing
	playing     bool

	updates chan struct{}
}

// New creates a stopped controller at the default tempo, one click per beat
// and full volume, and pushes those values to the collaborators.
func New(engine Engine, sequencer Sequencer, sampler Sampler) *Controller {
	c := &Controller{
		engine:      engine,
		sequencer:   sequencer,
		sampler:     sampler,
		tempo:       click.DefaultTempo,
		subdivision: 1,
		volume:      1.0,
		voicing:     click.DefaultVoicing,
		updates:     make(chan struct{}, 1),
	}
	sequencer.SetTempo(c.tempo)
	sampler.SetVolume(c.volume)
	return c
}

// LoadSounds loads the click sounds into the sampler. The controller stays
// usable when this fails, but clicks may be silent.
func (c *Controller) LoadSounds(names ...string) error {
	if len(names) == 0 {
		names = ClickSounds
	}
	if err := c.sampler.LoadSounds(names); err != nil {
		debug.Log("metronome", "load sounds %v: %v", names, err)
		return fmt.Errorf("%w: %w", ErrSoundLoad, err)
	}
	return nil
}

// Updates delivers a signal after every state change. Signals coalesce.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Tempo:       c.tempo,
		Subdivision: c.subdivision,
		Volume:      c.volume,
		Playing:     c.playing,
	}
}

// IsPlaying reports whether the metronome is running
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Sequence returns a copy of the events currently installed in the track.
func (c *Controller) Sequence() click.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.installed
	seq.Events = append([]click.Event(nil), c.installed.Events...)
	return seq
}

// Start starts the engine and loops the click track from the beginning.
// Starting while already playing does nothing.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

// Stop halts the sequencer. Stopping while stopped does nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Toggle stops if playing, otherwise starts
func (c *Controller) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		c.stopLocked()
		return nil
	}
	return c.startLocked()
}

func (c *Controller) startLocked() error {
	if c.playing {
		return nil
	}

	if err := c.engine.Start(); err != nil {
		debug.Log("metronome", "engine start: %v", err)
		return fmt.Errorf("%w: %w", ErrEngineStart, err)
	}

	if err := c.install(); err != nil {
		return err
	}
	c.sequencer.PlayFromStart()
	c.playing = true

	debug.Log("metronome", "started tempo=%.1f subdivision=%d", c.tempo, c.subdivision)
	c.notify()
	return nil
}

func (c *Controller) stopLocked() {
	if !c.playing {
		return
	}
	c.sequencer.Stop()
	c.playing = false

	debug.Log("metronome", "stopped")
	c.notify()
}

// SetTempo forwards a new tempo to the sequencer. The click layout does not
// depend on tempo so the track is left alone.
func (c *Controller) SetTempo(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTempo, bpm)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tempo = bpm
	c.sequencer.SetTempo(bpm)
	c.notify()
	return nil
}

// SetSubdivision sets clicks per beat, clamped to at least 1. While playing
// the track is rebuilt before returning; the sequencer keeps running.
func (c *Controller) SetSubdivision(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subdivision = click.ClampSubdivision(n)
	if c.playing {
		c.reinstall()
	}
	c.notify()
}

// SetPreset applies a named subdivision
func (c *Controller) SetPreset(p click.Preset) {
	c.SetSubdivision(p.Subdivision())
}

// SetVoicing changes click velocities and durations
func (c *Controller) SetVoicing(v click.Voicing) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.voicing = v
	if c.playing {
		c.reinstall()
	}
	c.notify()
}

// SetVolume forwards the level (clamped to 0.0-1.0) to the sampler
func (c *Controller) SetVolume(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	} else if v > 1 {
		v = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = v
	c.sampler.SetVolume(v)
	c.notify()
}

// Configure sets tempo and subdivision in one call
func (c *Controller) Configure(bpm float64, subdivision int) error {
	if err := c.SetTempo(bpm); err != nil {
		return err
	}
	c.SetSubdivision(subdivision)
	return nil
}

// install regenerates the sequence and replaces the track contents.
// Caller must hold c.mu.
func (c *Controller) install() error {
	seq, err := click.GenerateWith(c.subdivision, c.voicing)
	if err != nil {
		return err
	}

	if c.track == nil {
		c.track = c.sequencer.AddTrack(c.sampler)
	}

	c.track.Clear()
	for _, e := range seq.Events {
		c.track.Add(e.Note, e.Velocity, e.Position, e.Duration)
	}
	c.track.SetLength(seq.Length)
	c.track.SetLoopEnabled(seq.Loop)
	c.installed = seq

	debug.Log("metronome", "installed %d clicks per beat", c.subdivision)
	debug.Dump("sequence", seq)
	return nil
}

// reinstall rebuilds the playing track. Subdivision is always clamped, so
// install only fails if the generator changes. Caller must hold c.mu.
func (c *Controller) reinstall() {
	if err := c.install(); err != nil {
		debug.Log("metronome", "reinstall: %v", err)
	}
}

// notify signals observers without blocking
func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
