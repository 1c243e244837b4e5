package sequencer

import (
	"math"
	"sort"

	"go-metronome/click"
)

// Track is a loop of click events played through one voice.
// Positions and lengths are in beats.
type Track struct {
	seq    *Sequencer
	voice  Voice
	events []click.Event // sorted by position
	length float64
	loop   bool

	cursor float64 // absolute beat to search from for the next event
}

// Clear removes all events
func (t *Track) Clear() {
	t.seq.mu.Lock()
	t.events = nil
	t.seq.changedLocked()
	t.seq.mu.Unlock()
}

// Add inserts an event, keeping events ordered by position
func (t *Track) Add(note click.Note, velocity uint8, position, duration float64) {
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()

	e := click.Event{Position: position, Note: note, Velocity: velocity, Duration: duration}
	i := sort.Search(len(t.events), func(i int) bool {
		return t.events[i].Position > position
	})
	t.events = append(t.events, click.Event{})
	copy(t.events[i+1:], t.events[i:])
	t.events[i] = e
	t.seq.changedLocked()
}

// SetLength sets the loop length
func (t *Track) SetLength(beats float64) {
	t.seq.mu.Lock()
	t.length = beats
	t.seq.changedLocked()
	t.seq.mu.Unlock()
}

// SetLoopEnabled turns looping on or off. A track that does not loop plays
// its events once after PlayFromStart.
func (t *Track) SetLoopEnabled(loop bool) {
	t.seq.mu.Lock()
	t.loop = loop
	t.seq.changedLocked()
	t.seq.mu.Unlock()
}

// Events returns a copy of the track's events
func (t *Track) Events() []click.Event {
	t.seq.mu.RLock()
	defer t.seq.mu.RUnlock()
	return append([]click.Event(nil), t.events...)
}

// next finds the first event at or after absolute beat from.
// Caller holds seq.mu.
func (t *Track) next(from float64) (click.Event, float64, bool) {
	if len(t.events) == 0 || t.length <= 0 {
		return click.Event{}, 0, false
	}

	if !t.loop {
		for _, e := range t.events {
			if e.Position >= from && e.Position < t.length {
				return e, e.Position, true
			}
		}
		return click.Event{}, 0, false
	}

	// current pass, then the following one
	k := math.Floor(from / t.length)
	for pass := 0.0; pass < 2; pass++ {
		base := (k + pass) * t.length
		for _, e := range t.events {
			if e.Position < 0 || e.Position >= t.length {
				continue
			}
			if at := base + e.Position; at >= from {
				return e, at, true
			}
		}
	}
	return click.Event{}, 0, false
}
