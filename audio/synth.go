package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"go-metronome/click"
	"go-metronome/midi"
)

const clickLength = 30 * time.Millisecond

// SynthClick generates a short decaying sine click. The accent is pitched
// higher than the regular click.
func SynthClick(note click.Note, sr beep.SampleRate) *beep.Buffer {
	freq := 1000.0
	if note == click.Accent {
		freq = 1600.0
	}

	total := sr.N(clickLength)
	i := 0
	gen := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if i >= total {
			return 0, false
		}
		for n = range samples {
			if i >= total {
				return n, true
			}
			t := float64(i) / float64(sr)
			env := math.Exp(-t * 150)
			v := math.Sin(2*math.Pi*freq*t) * env
			samples[n][0] = v
			samples[n][1] = v
			i++
		}
		return len(samples), true
	})

	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(gen)
	return buf
}

// WriteSamples writes synthesized click WAVs named after their notes
// (click_D1.wav, click_C1.wav) into dir.
func WriteSamples(dir string, sr beep.SampleRate) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	notes := map[click.Note]uint8{click.Accent: midi.AccentNote, click.Regular: midi.RegularNote}
	for note, number := range notes {
		path := filepath.Join(dir, fmt.Sprintf("click_%s.wav", midi.NoteName(number)))
		if err := writeWAV(path, SynthClick(note, sr)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func writeWAV(path string, buf *beep.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, buf.Streamer(0, buf.Len()), buf.Format()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
