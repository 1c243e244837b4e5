package midi

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go-metronome/click"
	"go-metronome/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

var ErrNoPort = errors.New("no MIDI output port")

// Output sends clicks as note on/off to a MIDI port. It is both the engine
// (Start opens the port) and the sampler (notes are the "sounds").
type Output struct {
	portName string
	channel  uint8 // 1-16

	mu     sync.Mutex
	send   func(gomidi.Message) error
	volume float64
	notes  map[click.Note]uint8
}

// NewOutput creates an output for portName ("" = first port) on a 1-16 channel.
func NewOutput(portName string, channel uint8) *Output {
	if channel < 1 || channel > 16 {
		channel = 10 // GM percussion
	}
	return &Output{
		portName: portName,
		channel:  channel,
		volume:   1.0,
		notes: map[click.Note]uint8{
			click.Accent:  AccentNote,
			click.Regular: RegularNote,
		},
	}
}

// NewOutputFunc sends through an already open sender
func NewOutputFunc(send func(gomidi.Message) error, channel uint8) *Output {
	o := NewOutput("", channel)
	o.send = send
	return o
}

// Start opens the port. Calling it again keeps the open port.
func (o *Output) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.send != nil {
		return nil
	}

	name := o.portName
	if name == "" {
		outs := gomidi.GetOutPorts()
		if len(outs) == 0 {
			return ErrNoPort
		}
		name = outs[0].String()
	}

	port, err := gomidi.FindOutPort(name)
	if err != nil {
		return fmt.Errorf("find port %q: %w", name, err)
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	o.send = send
	debug.Log("midi", "opened %q channel %d", name, o.channel)
	return nil
}

// Close forgets the port; the next Start reopens it
func (o *Output) Close() {
	o.mu.Lock()
	o.send = nil
	o.mu.Unlock()
}

// SetVolume scales outgoing velocities
func (o *Output) SetVolume(v float64) {
	o.mu.Lock()
	o.volume = v
	o.mu.Unlock()
}

// SetNotes changes the note numbers used for each click
func (o *Output) SetNotes(accent, regular uint8) {
	o.mu.Lock()
	o.notes[click.Accent] = accent & 0x7f
	o.notes[click.Regular] = regular & 0x7f
	o.mu.Unlock()
}

// LoadSounds checks that each name ends in one of the click notes
// (click_D1, click_C1). There is nothing to load for MIDI.
func (o *Output) LoadSounds(names []string) error {
	var errs []error
	for _, name := range names {
		n, err := SoundNote(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := ClickFor(n); !ok {
			errs = append(errs, fmt.Errorf("%s: note %s is not a click note", name, NoteName(n)))
		}
	}
	return errors.Join(errs...)
}

// Play sends note on now and note off after length
func (o *Output) Play(note click.Note, velocity uint8, length time.Duration) {
	o.mu.Lock()
	send := o.send
	key := o.notes[note]
	vel := scaleVelocity(velocity, o.volume)
	o.mu.Unlock()

	if send == nil || vel == 0 {
		return
	}

	ch := o.channel - 1
	if err := send(gomidi.NoteOn(ch, key, vel)); err != nil {
		debug.Log("midi", "note on: %v", err)
		return
	}
	time.AfterFunc(length, func() {
		send(gomidi.NoteOff(ch, key))
	})
}

func scaleVelocity(v uint8, volume float64) uint8 {
	scaled := math.Round(float64(v) * volume)
	if scaled <= 0 {
		return 0
	}
	if scaled > 127 {
		return 127
	}
	return uint8(scaled)
}
