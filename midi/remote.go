package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Sustain pedal controller number
const ccSustain uint8 = 64

// Remote turns presses on a MIDI input (pads, keys, foot switch) into
// toggle requests.
type Remote struct {
	id       string
	stopFunc func()
	presses  chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func newRemote(id string) *Remote {
	return &Remote{
		id:      id,
		presses: make(chan struct{}, 8),
		done:    make(chan struct{}),
	}
}

// OpenRemote listens on the named input port
func OpenRemote(portName string) (*Remote, error) {
	in, err := gomidi.FindInPort(portName)
	if err != nil {
		return nil, fmt.Errorf("find input %q: %w", portName, err)
	}

	r := newRemote(portName)
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		r.handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r.stopFunc = stop
	return r, nil
}

func (r *Remote) ID() string {
	return r.id
}

// Presses delivers one value per press. It is never closed; presses stop
// arriving after Close.
func (r *Remote) Presses() <-chan struct{} {
	return r.presses
}

// Close stops listening. Safe to call more than once.
func (r *Remote) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		if r.stopFunc != nil {
			r.stopFunc()
		}
	})
	return nil
}

// handle runs on the driver's callback goroutine
func (r *Remote) handle(msg gomidi.Message) {
	if !isPress(msg) {
		return
	}
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.presses <- struct{}{}:
	default:
	}
}

// isPress is true for note on and for a pedal going down
func isPress(msg gomidi.Message) bool {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		return true
	}
	var cc, value uint8
	if msg.GetControlChange(&channel, &cc, &value) && cc == ccSustain && value >= 64 {
		return true
	}
	return false
}
