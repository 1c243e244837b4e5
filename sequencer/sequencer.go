package sequencer

import (
	"math"
	"runtime"
	"sync"
	"time"

	"go-metronome/click"
	"go-metronome/debug"
	"go-metronome/metronome"
)

// Voice sounds a click right away
type Voice interface {
	Play(note click.Note, velocity uint8, length time.Duration)
}

// Events later than this are dropped instead of played in a burst
const lateTolerance = 25 * time.Millisecond

// Sequencer loops tracks of click events against a beat clock
type Sequencer struct {
	mu      sync.RWMutex
	tracks  []*Track
	clock   clock
	playing bool
	gen     uint64 // bumped on every change the dispatch loop must see

	now       func() time.Time
	interrupt chan struct{} // wake dispatch loop to recalculate
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a stopped sequencer at 120 BPM and starts its dispatch loop.
func New() *Sequencer {
	s := &Sequencer{
		clock:     clock{tempo: click.DefaultTempo},
		now:       time.Now,
		interrupt: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Close stops the dispatch loop
func (s *Sequencer) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// NewTrack adds an empty track played through v
func (s *Sequencer) NewTrack(v Voice) *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Track{seq: s, voice: v, length: click.BeatLength}
	s.tracks = append(s.tracks, t)
	return t
}

// AddTrack adds a track for a sampler. Samplers that cannot play notes
// get a silent track.
func (s *Sequencer) AddTrack(smp metronome.Sampler) metronome.Track {
	v, ok := smp.(Voice)
	if !ok {
		debug.Log("seq", "sampler %T cannot play notes, track will be silent", smp)
	}
	return s.NewTrack(v)
}

// SetTempo changes BPM without moving the playhead. Non-positive values are ignored.
func (s *Sequencer) SetTempo(bpm float64) {
	if bpm <= 0 {
		return
	}
	s.mu.Lock()
	s.clock.setTempo(bpm, s.now())
	s.changedLocked()
	s.mu.Unlock()
}

// Tempo returns the current BPM
func (s *Sequencer) Tempo() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock.tempo
}

// PlayFromStart rewinds every track to beat zero and starts playback
func (s *Sequencer) PlayFromStart() {
	s.mu.Lock()
	s.clock.reset(s.now())
	for _, t := range s.tracks {
		t.cursor = 0
	}
	s.playing = true
	s.changedLocked()
	s.mu.Unlock()
	debug.Log("seq", "play from start tempo=%.1f", s.Tempo())
}

// Stop halts playback
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	s.playing = false
	s.changedLocked()
}

// Playing reports whether the sequencer is running
func (s *Sequencer) Playing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// Position returns the playhead in beats since PlayFromStart
func (s *Sequencer) Position() (beat float64, playing bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.playing {
		return 0, false
	}
	return s.clock.beatAt(s.now()), true
}

// changedLocked records a change and wakes the dispatch loop. Caller holds mu.
func (s *Sequencer) changedLocked() {
	s.gen++
	select {
	case s.interrupt <- struct{}{}:
	default:
	}
}

// nextLocked finds the earliest due event across tracks. Events already
// further behind than lateTolerance are skipped. Caller holds mu.
func (s *Sequencer) nextLocked(now time.Time) (tr *Track, ev click.Event, at float64, ok bool) {
	lateBeat := s.clock.beatAt(now.Add(-lateTolerance))
	for _, t := range s.tracks {
		if t.cursor < lateBeat {
			t.cursor = lateBeat
		}
		e, b, found := t.next(t.cursor)
		if !found {
			continue
		}
		if !ok || b < at {
			tr, ev, at, ok = t, e, b, true
		}
	}
	return tr, ev, at, ok
}

// run dispatches events at their wall-clock time
func (s *Sequencer) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		s.mu.Lock()
		var (
			tr  *Track
			ev  click.Event
			at  float64
			ok  bool
			due time.Time
		)
		if s.playing {
			tr, ev, at, ok = s.nextLocked(s.now())
			if ok {
				due = s.clock.timeAt(at)
			}
		}
		gen := s.gen
		tempo := s.clock.tempo
		s.mu.Unlock()

		if !ok {
			// nothing to play until something changes
			select {
			case <-s.done:
				return
			case <-s.interrupt:
			}
			continue
		}

		if wait := due.Sub(s.now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-s.done:
				timer.Stop()
				return
			case <-s.interrupt:
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		s.mu.Lock()
		if s.gen != gen {
			// tracks or tempo changed while waiting
			s.mu.Unlock()
			continue
		}
		tr.cursor = math.Nextafter(at, math.Inf(1))
		voice := tr.voice
		s.mu.Unlock()

		if voice != nil {
			voice.Play(ev.Note, ev.Velocity, beatsToDuration(ev.Duration, tempo))
		}
		debug.LogEvery(64, "seq", "dispatch note=%s beat=%.3f", ev.Note, at)
	}
}
