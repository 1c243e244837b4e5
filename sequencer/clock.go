package sequencer

import (
	"math"
	"time"
)

// clock maps wall time to beats. Tempo changes move the anchor so the
// current beat position is preserved.
type clock struct {
	anchor     time.Time
	anchorBeat float64
	tempo      float64 // BPM
}

func (c clock) beatAt(t time.Time) float64 {
	return c.anchorBeat + t.Sub(c.anchor).Minutes()*c.tempo
}

func (c clock) timeAt(beat float64) time.Time {
	return c.anchor.Add(beatsToDuration(beat-c.anchorBeat, c.tempo))
}

func (c *clock) reset(now time.Time) {
	c.anchor = now
	c.anchorBeat = 0
}

func (c *clock) setTempo(bpm float64, now time.Time) {
	c.anchorBeat = c.beatAt(now)
	c.anchor = now
	c.tempo = bpm
}

func beatsToDuration(beats, bpm float64) time.Duration {
	return time.Duration(math.Round(beats / bpm * float64(time.Minute)))
}
