package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/wav"

	"go-metronome/click"
	"go-metronome/debug"
	"go-metronome/midi"
)

// Sampler plays WAV click samples through an Engine. Samples are looked up
// by name in fsys as "<name>.wav"; the note suffix of the name (click_D1)
// decides which click the sample plays.
type Sampler struct {
	engine *Engine
	fsys   fs.FS

	mu      sync.RWMutex
	buffers map[click.Note]*beep.Buffer
	volume  float64
}

// NewSampler creates a sampler reading samples from fsys (may be nil when
// only synthesized clicks are used).
func NewSampler(engine *Engine, fsys fs.FS) *Sampler {
	return &Sampler{
		engine:  engine,
		fsys:    fsys,
		buffers: make(map[click.Note]*beep.Buffer),
		volume:  1.0,
	}
}

// SetVolume sets the output level (0.0 to 1.0)
func (s *Sampler) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

// LoadSounds decodes the named samples. Missing files are skipped with a
// log line; it fails if a file cannot be decoded or nothing was loaded.
func (s *Sampler) LoadSounds(names []string) error {
	if s.fsys == nil {
		return errors.New("no sample directory")
	}

	loaded := make(map[click.Note]*beep.Buffer)
	for _, name := range names {
		n, err := midi.SoundNote(name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		note, ok := midi.ClickFor(n)
		if !ok {
			return fmt.Errorf("%s: note %s is not a click note", name, midi.NoteName(n))
		}

		buf, err := s.decode(name + ".wav")
		if errors.Is(err, fs.ErrNotExist) {
			debug.Log("audio", "warning: could not find %s.wav", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		loaded[note] = buf
	}

	if len(loaded) == 0 {
		return fmt.Errorf("none of %v found", names)
	}

	s.mu.Lock()
	for note, buf := range loaded {
		s.buffers[note] = buf
	}
	s.mu.Unlock()
	return nil
}

func (s *Sampler) decode(path string) (*beep.Buffer, error) {
	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	return buf, nil
}

// LoadSynth installs generated clicks for both notes
func (s *Sampler) LoadSynth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, note := range []click.Note{click.Accent, click.Regular} {
		s.buffers[note] = SynthClick(note, s.engine.SampleRate())
	}
}

// Loaded reports whether a sound is available for note
func (s *Sampler) Loaded(note click.Note) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffers[note] != nil
}

// Play mixes the click for note into the engine output, cut off after length
func (s *Sampler) Play(note click.Note, velocity uint8, length time.Duration) {
	s.mu.RLock()
	buf := s.buffers[note]
	gain := s.volume * float64(velocity) / 127
	s.mu.RUnlock()

	if buf == nil {
		return
	}

	var st beep.Streamer = buf.Streamer(0, buf.Len())
	if rate := buf.Format().SampleRate; rate != s.engine.SampleRate() {
		st = beep.Resample(4, rate, s.engine.SampleRate(), st)
	}
	st = &effects.Gain{Streamer: st, Gain: gain - 1}
	if n := s.engine.SampleRate().N(length); n > 0 {
		st = beep.Take(n, st)
	}
	s.engine.add(st)
}
