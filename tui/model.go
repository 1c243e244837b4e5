package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-metronome/click"
	"go-metronome/metronome"
	"go-metronome/midi"
	"go-metronome/theme"
	"go-metronome/widgets"
)

// Playhead reports the sequencer position in beats
type Playhead interface {
	Position() (beat float64, playing bool)
}

const (
	frameRate  = 30
	volumeStep = 0.1
	tempoStep  = 1.0
	tempoJump  = 5.0
)

// Model is the metronome screen. Playhead, Ports and Presses are optional.
type Model struct {
	Metronome *metronome.Controller
	Playhead  Playhead
	Ports     *midi.Watcher
	Presses   <-chan struct{}
	Theme     *theme.Theme
	Backend   string

	status   *status
	quitting bool
}

type status struct {
	err      error
	portName string
	portUp   bool
	soft     bool
}

type UpdateMsg struct{}

type FrameMsg time.Time

type PortEventMsg midi.PortEvent

type PressMsg struct{}

func NewModel(m *metronome.Controller, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Metronome: m,
		Theme:     th,
		status:    &status{},
	}
}

// WithSoftClicks records the initial voicing choice for display
func (m Model) WithSoftClicks(soft bool) Model {
	m.status.soft = soft
	return m
}

// WithError shows err in the status line until the next action replaces it
func (m Model) WithError(err error) Model {
	m.status.err = err
	return m
}

func ListenForUpdates(c *metronome.Controller) tea.Cmd {
	return func() tea.Msg {
		<-c.Updates()
		return UpdateMsg{}
	}
}

func ListenForPorts(w *midi.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(ev)
	}
}

func ListenForPresses(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return PressMsg{}
	}
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Metronome), frame()}
	if m.Ports != nil {
		cmds = append(cmds, ListenForPorts(m.Ports))
	}
	if m.Presses != nil {
		cmds = append(cmds, ListenForPresses(m.Presses))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Metronome)

	case FrameMsg:
		return m, frame()

	case PressMsg:
		m.toggle()
		return m, ListenForPresses(m.Presses)

	case PortEventMsg:
		m.status.portName = msg.Name
		m.status.portUp = msg.Type == midi.PortConnected
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	c := m.Metronome
	st := c.State()

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		c.Stop()
		return m, tea.Quit

	case " ", "space", "p":
		m.toggle()

	case "+", "=":
		m.setTempo(st.Tempo + tempoStep)
	case "-", "_":
		m.setTempo(st.Tempo - tempoStep)
	case "]":
		m.setTempo(st.Tempo + tempoJump)
	case "[":
		m.setTempo(st.Tempo - tempoJump)

	case "up", "k":
		if st.Subdivision < click.MaxPresetSubdivision {
			c.SetSubdivision(st.Subdivision + 1)
		}
	case "down", "j":
		c.SetSubdivision(st.Subdivision - 1)

	case "1", "2", "3", "4", "5", "6":
		c.SetPreset(click.Preset(key[0] - '0'))

	case ">", ".":
		c.SetVolume(roundVolume(st.Volume + volumeStep))
	case "<", ",":
		c.SetVolume(roundVolume(st.Volume - volumeStep))

	case "s":
		m.status.soft = !m.status.soft
		if m.status.soft {
			c.SetVoicing(click.SoftVoicing)
		} else {
			c.SetVoicing(click.DefaultVoicing)
		}
	}

	return m, nil
}

func (m Model) toggle() {
	m.status.err = m.Metronome.Toggle()
}

// setTempo keeps keyboard tempo changes inside the UI range
func (m Model) setTempo(bpm float64) {
	bpm = math.Max(click.MinTempo, math.Min(click.MaxTempo, math.Round(bpm)))
	m.status.err = m.Metronome.SetTempo(bpm)
}

func roundVolume(v float64) float64 {
	return math.Round(v*10) / 10
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Metronome.State()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if st.Playing {
		playState = "PLAY"
	}
	header := headerStyle.Render(fmt.Sprintf("go-metronome  %s  %3.0fbpm  %s", playState, st.Tempo, click.Describe(st.Subdivision)))

	// beat strip
	seq := m.Metronome.Sequence()
	events := seq.Events
	if !st.Playing || len(events) == 0 {
		gen, _ := click.Generate(st.Subdivision)
		events = gen.Events
	}
	current := -1
	if m.Playhead != nil && st.Playing {
		if pos, ok := m.Playhead.Position(); ok {
			current = widgets.CurrentClick(events, pos)
		}
	}
	strip := widgets.RenderBeat(events, current, widgets.BeatStyle{
		Accent:        m.Theme.Symbols.Accent,
		Regular:       m.Theme.Symbols.Regular,
		Playhead:      m.Theme.Symbols.Playhead,
		AccentColor:   m.Theme.Accent(),
		RegularColor:  m.Theme.FG(),
		PlayheadColor: m.Theme.Success(),
	})

	voicing := "full"
	if m.status.soft {
		voicing = "soft"
	}
	level := fmt.Sprintf("vol %s %3.0f%%  clicks:%s", widgets.RenderMeter(st.Volume, 10, m.Theme.Active()), st.Volume*100, voicing)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n  ")
	out.WriteString(strip)
	out.WriteString("\n\n")
	out.WriteString(level)
	out.WriteString("\n")

	if m.Backend != "" {
		backend := "output: " + m.Backend
		if m.Ports != nil {
			name := m.status.portName
			if name == "" {
				name = m.Ports.Name()
			}
			state := "waiting"
			if m.status.portUp {
				state = "connected"
			}
			backend += fmt.Sprintf(" %s (%s)", name, state)
		}
		out.WriteString(dimStyle.Render(backend))
		out.WriteString("\n")
	}

	if m.status.err != nil {
		out.WriteString(errStyle.Render("error: " + m.status.err.Error()))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "space / p", Desc: "start/stop"},
			{Key: "+ / -", Desc: "tempo ±1 (] / [ for ±5)"},
			{Key: "↑ / ↓", Desc: "clicks per beat"},
			{Key: "1-6", Desc: "subdivision presets"},
			{Key: "< / >", Desc: "volume"},
			{Key: "s", Desc: "soft/full subdivision clicks"},
			{Key: "q", Desc: "quit"},
		}},
	})))

	return out.String()
}
