package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-metronome/click"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 120 || cfg.Subdivision != 1 || cfg.Volume != 1 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Backend != BackendAudio {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.MIDI.AccentNote != "D1" || cfg.MIDI.RegularNote != "C1" || cfg.MIDI.Channel != 10 {
		t.Errorf("MIDI defaults = %+v", cfg.MIDI)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.Tempo = 92
	cfg.Subdivision = 3
	cfg.Volume = 0.4
	cfg.Backend = BackendMIDI
	cfg.MIDI.PortName = "IAC Bus 1"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tempo != 92 || got.Subdivision != 3 || got.Volume != 0.4 {
		t.Errorf("loaded %+v", got)
	}
	if got.Backend != BackendMIDI || got.MIDI.PortName != "IAC Bus 1" {
		t.Errorf("loaded backend %q port %q", got.Backend, got.MIDI.PortName)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"tempo": 75}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 75 || cfg.Subdivision != 1 || cfg.Audio.SampleRate != 44100 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{tempo`), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Error("invalid JSON accepted")
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{Tempo: -4, Subdivision: -2, Volume: 3, Backend: "tape"}
	cfg.MIDI.Channel = 40
	cfg.Normalize()

	if cfg.Tempo != click.DefaultTempo || cfg.Subdivision != 1 || cfg.Volume != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Backend != BackendAudio || cfg.MIDI.Channel != 10 {
		t.Errorf("backend %q channel %d", cfg.Backend, cfg.MIDI.Channel)
	}
}

func TestVoicing(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Voicing() != click.DefaultVoicing {
		t.Error("default voicing mismatch")
	}
	cfg.SoftClicks = true
	if cfg.Voicing() != click.SoftVoicing {
		t.Error("soft voicing mismatch")
	}
}
