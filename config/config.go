package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go-metronome/click"
)

// Backend selects how clicks are sounded
type Backend string

const (
	BackendAudio Backend = "audio" // system speaker via samples
	BackendMIDI  Backend = "midi"  // note on/off to a MIDI port
)

// AudioConfig configures the speaker backend
type AudioConfig struct {
	SampleRate int    `json:"sampleRate,omitempty"`
	SampleDir  string `json:"sampleDir,omitempty"` // empty = synthesized clicks
}

// MIDIConfig configures the MIDI backend
type MIDIConfig struct {
	PortName    string `json:"portName,omitempty"`
	Channel     int    `json:"channel,omitempty"` // 1-16
	AccentNote  string `json:"accentNote,omitempty"`
	RegularNote string `json:"regularNote,omitempty"`
	RemotePort  string `json:"remotePort,omitempty"` // input that toggles play
}

// Config is the main configuration structure
type Config struct {
	Tempo       float64     `json:"tempo"`
	Subdivision int         `json:"subdivision"`
	Volume      float64     `json:"volume"`
	SoftClicks  bool        `json:"softClicks,omitempty"`
	Backend     Backend     `json:"backend"`
	Audio       AudioConfig `json:"audio,omitempty"`
	MIDI        MIDIConfig  `json:"midi,omitempty"`
	Palette     string      `json:"palette,omitempty"` // GIMP .gpl file
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:       click.DefaultTempo,
		Subdivision: 1,
		Volume:      1.0,
		Backend:     BackendAudio,
		Audio: AudioConfig{
			SampleRate: 44100,
		},
		MIDI: MIDIConfig{
			Channel:     10,
			AccentNote:  "D1",
			RegularNote: "C1",
		},
	}
}

// Voicing returns the click voicing the config selects
func (c *Config) Voicing() click.Voicing {
	if c.SoftClicks {
		return click.SoftVoicing
	}
	return click.DefaultVoicing
}

// Normalize pulls out-of-range values back to usable ones
func (c *Config) Normalize() {
	if c.Tempo <= 0 {
		c.Tempo = click.DefaultTempo
	}
	c.Subdivision = click.ClampSubdivision(c.Subdivision)
	if c.Volume < 0 {
		c.Volume = 0
	} else if c.Volume > 1 {
		c.Volume = 1
	}
	if c.Backend != BackendMIDI {
		c.Backend = BackendAudio
	}
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		c.MIDI.Channel = 10
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-metronome"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
