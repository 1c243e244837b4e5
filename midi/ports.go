package midi

import (
	"context"
	"errors"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Ports lists port names by direction
type Ports struct {
	In  []string
	Out []string
}

// ErrDriverHung is returned when the MIDI driver does not answer
var ErrDriverHung = errors.New("MIDI driver did not respond")

// scanTimeout bounds a port scan (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// ListPorts returns the current MIDI ports
func ListPorts(ctx context.Context) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		var p Ports
		for _, in := range gomidi.GetInPorts() {
			p.In = append(p.In, in.String())
		}
		for _, out := range gomidi.GetOutPorts() {
			p.Out = append(p.Out, out.String())
		}
		ch <- p
	}()

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	select {
	case p := <-ch:
		return p, nil
	case <-ctx.Done():
		// User needs to run: sudo killall coreaudiod midiserver
		return Ports{}, ErrDriverHung
	}
}

// PortEvent is emitted when the watched output port appears or disappears
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// Watcher polls for a named output port (hot-plug)
type Watcher struct {
	name     string
	list     func(context.Context) (Ports, error)
	pollRate time.Duration

	mu        sync.RWMutex
	connected bool
	events    chan PortEvent
}

// NewWatcher watches for an output port by name ("" = any port)
func NewWatcher(name string) *Watcher {
	return &Watcher{
		name:     name,
		list:     ListPorts,
		pollRate: time.Second,
		events:   make(chan PortEvent, 16),
	}
}

// Events returns connect/disconnect events. Closed when Run returns.
func (w *Watcher) Events() <-chan PortEvent {
	return w.events
}

// Name returns the watched port name
func (w *Watcher) Name() string {
	if w.name == "" {
		return "(any port)"
	}
	return w.name
}

// Connected reports whether the port was present at the last scan
func (w *Watcher) Connected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Run polls until ctx is done (blocking - run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	// Initial scan
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	ports, err := w.list(ctx)
	if err != nil {
		// hung driver - skip this scan
		return
	}

	seen := false
	found := w.name
	for _, name := range ports.Out {
		if w.name == "" || name == w.name {
			seen = true
			found = name
			break
		}
	}

	w.mu.Lock()
	changed := seen != w.connected
	w.connected = seen
	w.mu.Unlock()

	if !changed {
		return
	}

	ev := PortEvent{Type: PortDisconnected, Name: found}
	if seen {
		ev.Type = PortConnected
	}
	select {
	case w.events <- ev:
	default:
	}
}
