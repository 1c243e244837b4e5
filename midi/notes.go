package midi

import (
	"fmt"
	"strconv"
	"strings"

	"go-metronome/click"
)

// Default click notes. Sample files are named after them (click_D1, click_C1).
const (
	AccentNote  uint8 = 26 // D1
	RegularNote uint8 = 24 // C1
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var semitones = map[string]int{
	"C": 0, "C#": 1, "DB": 1, "D": 2, "D#": 3, "EB": 3, "E": 4, "F": 5,
	"F#": 6, "GB": 6, "G": 7, "G#": 8, "AB": 8, "A": 9, "A#": 10, "BB": 10, "B": 11,
}

// NoteNumber parses a note name like "C1", "D#3" or "Bb-1" (C-1 = 0).
func NoteNumber(name string) (uint8, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	i := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'B') {
		i = 2
	}
	if len(s) <= i {
		return 0, fmt.Errorf("bad note name %q", name)
	}

	semi, ok := semitones[s[:i]]
	if !ok {
		return 0, fmt.Errorf("bad note name %q", name)
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, fmt.Errorf("bad octave in %q", name)
	}

	n := (octave+1)*12 + semi
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("note %q out of range", name)
	}
	return uint8(n), nil
}

// NoteName formats a note number, e.g. 26 -> "D1"
func NoteName(n uint8) string {
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}

// SoundNote extracts the note from a sound name like "click_D1"
func SoundNote(sound string) (uint8, error) {
	name := sound
	if i := strings.LastIndex(sound, "_"); i >= 0 {
		name = sound[i+1:]
	}
	return NoteNumber(name)
}

// ClickFor returns the click identity a note number plays
func ClickFor(n uint8) (click.Note, bool) {
	switch n {
	case AccentNote:
		return click.Accent, true
	case RegularNote:
		return click.Regular, true
	}
	return 0, false
}
