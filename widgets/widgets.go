package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-metronome/click"
)

// BeatStyle holds what RenderBeat draws with
type BeatStyle struct {
	Accent, Regular, Playhead rune
	AccentColor               lipgloss.Color
	RegularColor              lipgloss.Color
	PlayheadColor             lipgloss.Color
}

// RenderBeat draws one symbol per click in the sequence, highlighting the
// click at index current (-1 for none).
func RenderBeat(events []click.Event, current int, st BeatStyle) string {
	var out strings.Builder
	for i, e := range events {
		if i > 0 {
			out.WriteString(" ")
		}
		sym, color := st.Regular, st.RegularColor
		if e.Note == click.Accent {
			sym, color = st.Accent, st.AccentColor
		}
		if i == current {
			sym, color = st.Playhead, st.PlayheadColor
		}
		out.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(sym)))
	}
	return out.String()
}

// CurrentClick returns the index of the last click at or before beat
// position pos (fraction of the beat), or -1.
func CurrentClick(events []click.Event, pos float64) int {
	frac := pos - math.Floor(pos)
	idx := -1
	for i, e := range events {
		if e.Position <= frac {
			idx = i
		}
	}
	return idx
}

// RenderMeter draws a horizontal level bar for v in 0-1
func RenderMeter(v float64, width int, color lipgloss.Color) string {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	filled := int(math.Round(v * float64(width)))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
