package widgets

import (
	"strings"
	"testing"

	"go-metronome/click"
)

func TestCurrentClick(t *testing.T) {
	seq, _ := click.Generate(4)
	tests := []struct {
		pos  float64
		want int
	}{
		{0, 0},
		{0.2, 0},
		{0.25, 1},
		{0.99, 3},
		{7.5, 2},
	}
	for _, tt := range tests {
		if got := CurrentClick(seq.Events, tt.pos); got != tt.want {
			t.Errorf("CurrentClick(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
	if got := CurrentClick(nil, 0.5); got != -1 {
		t.Errorf("CurrentClick(nil) = %d", got)
	}
}

func TestRenderBeat(t *testing.T) {
	seq, _ := click.Generate(3)
	st := BeatStyle{Accent: 'A', Regular: 'r', Playhead: 'P'}

	out := RenderBeat(seq.Events, -1, st)
	if strings.Count(out, "A") != 1 || strings.Count(out, "r") != 2 {
		t.Errorf("RenderBeat = %q", out)
	}
	out = RenderBeat(seq.Events, 1, st)
	if strings.Count(out, "P") != 1 || strings.Count(out, "r") != 1 {
		t.Errorf("RenderBeat with playhead = %q", out)
	}
}

func TestRenderMeter(t *testing.T) {
	out := RenderMeter(0.5, 10, "")
	if strings.Count(out, "█") != 5 || strings.Count(out, "░") != 5 {
		t.Errorf("RenderMeter(0.5) = %q", out)
	}
	if strings.Count(RenderMeter(3, 4, ""), "█") != 4 {
		t.Error("RenderMeter did not clamp")
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Play", Keys: []KeyBinding{{Key: "space", Desc: "start/stop"}}}})
	if !strings.Contains(out, "Play\n  space") || !strings.Contains(out, "start/stop") {
		t.Errorf("RenderKeyHelp = %q", out)
	}
}
