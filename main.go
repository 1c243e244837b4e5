package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-metronome/audio"
	"go-metronome/config"
	"go-metronome/debug"
	"go-metronome/metronome"
	"go-metronome/midi"
	"go-metronome/sequencer"
	"go-metronome/theme"
	"go-metronome/tui"
)

type flags struct {
	bpm           float64
	subdivision   int
	volume        float64
	backend       string
	port          string
	channel       int
	samples       string
	chooseSamples bool
	exportSamples string
	soft          bool
	palette       string
	remote        string
	debug         bool
	play          bool
	listPorts     bool
}

func main() {
	var f flags
	pflag.Float64VarP(&f.bpm, "bpm", "b", 0, "tempo in beats per minute")
	pflag.IntVarP(&f.subdivision, "subdivision", "s", 0, "clicks per beat")
	pflag.Float64Var(&f.volume, "volume", 0, "output level (0-1)")
	pflag.StringVar(&f.backend, "backend", "", "click output: audio or midi")
	pflag.StringVarP(&f.port, "port", "p", "", "MIDI output port name")
	pflag.IntVar(&f.channel, "channel", 0, "MIDI channel (1-16)")
	pflag.StringVar(&f.samples, "samples", "", "directory holding click_D1.wav and click_C1.wav")
	pflag.BoolVar(&f.chooseSamples, "choose-samples", false, "pick the sample directory in a dialog")
	pflag.StringVar(&f.exportSamples, "export-samples", "", "write the built-in clicks as WAV files to a directory and exit")
	pflag.BoolVar(&f.soft, "soft", false, "quieter subdivision clicks")
	pflag.StringVar(&f.palette, "palette", "", "GIMP .gpl palette for the UI")
	pflag.StringVar(&f.remote, "remote", "", "MIDI input port whose pads or pedal toggle playback")
	pflag.BoolVar(&f.debug, "debug", false, "write a debug log to ~/.config/go-metronome/debug.log")
	pflag.BoolVar(&f.play, "play", false, "start playing immediately")
	pflag.BoolVar(&f.listPorts, "list-ports", false, "list MIDI ports and exit")
	pflag.Parse()

	if f.listPorts {
		if err := listPorts(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if f.exportSamples != "" {
		if err := audio.WriteSamples(f.exportSamples, audio.DefaultSampleRate); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote click_D1.wav and click_C1.wav to %s\n", f.exportSamples)
		return
	}

	if f.debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Warning: debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, &f); err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			fmt.Println("No sample directory chosen")
			os.Exit(1)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	debug.Dump("config", cfg)

	if err := run(cfg, f.play); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *config.Config, f *flags) error {
	if pflag.CommandLine.Changed("bpm") {
		cfg.Tempo = f.bpm
	}
	if pflag.CommandLine.Changed("subdivision") {
		cfg.Subdivision = f.subdivision
	}
	if pflag.CommandLine.Changed("volume") {
		cfg.Volume = f.volume
	}
	if f.backend != "" {
		cfg.Backend = config.Backend(f.backend)
	}
	if f.port != "" {
		cfg.MIDI.PortName = f.port
	}
	if pflag.CommandLine.Changed("channel") {
		cfg.MIDI.Channel = f.channel
	}
	if f.remote != "" {
		cfg.MIDI.RemotePort = f.remote
	}
	if f.soft {
		cfg.SoftClicks = true
	}
	if f.palette != "" {
		cfg.Palette = f.palette
	}
	if f.samples != "" {
		cfg.Audio.SampleDir = f.samples
	}
	if f.chooseSamples {
		dir, err := dialog.Directory().Title("Choose click sample directory").Browse()
		if err != nil {
			return err
		}
		if dir == "" {
			return dialog.ErrCancelled
		}
		cfg.Audio.SampleDir = dir
	}
	cfg.Normalize()
	return nil
}

// backend is the engine and sampler pair the controller drives
type backend struct {
	engine  metronome.Engine
	sampler metronome.Sampler
	watcher *midi.Watcher
	close   func()
}

func newBackend(cfg *config.Config) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMIDI:
		out := midi.NewOutput(cfg.MIDI.PortName, uint8(cfg.MIDI.Channel))
		accent, err := midi.NoteNumber(cfg.MIDI.AccentNote)
		if err != nil {
			return nil, fmt.Errorf("accent note: %w", err)
		}
		regular, err := midi.NoteNumber(cfg.MIDI.RegularNote)
		if err != nil {
			return nil, fmt.Errorf("regular note: %w", err)
		}
		out.SetNotes(accent, regular)
		return &backend{
			engine:  out,
			sampler: out,
			watcher: midi.NewWatcher(cfg.MIDI.PortName),
			close:   out.Close,
		}, nil

	default:
		engine := audio.NewEngine(cfg.Audio.SampleRate)
		var sampler *audio.Sampler
		if cfg.Audio.SampleDir != "" {
			sampler = audio.NewSampler(engine, os.DirFS(cfg.Audio.SampleDir))
		} else {
			sampler = audio.NewSampler(engine, nil)
			sampler.LoadSynth()
		}
		return &backend{
			engine:  engine,
			sampler: sampler,
			close:   engine.Close,
		}, nil
	}
}

func run(cfg *config.Config, play bool) error {
	th := theme.New(nil)
	if cfg.Palette != "" {
		palette, err := theme.LoadGPL(cfg.Palette)
		if err != nil {
			return fmt.Errorf("palette: %w", err)
		}
		th = theme.New(palette)
	}

	be, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()
	defer gomidi.CloseDriver()

	seq := sequencer.New()
	defer seq.Close()

	// sound, start and remote failures leave a stopped but usable
	// metronome, so they are shown in the UI instead of exiting
	var startupErrs []error

	m := metronome.New(be.engine, seq, be.sampler)
	if cfg.Backend == config.BackendMIDI || cfg.Audio.SampleDir != "" {
		if err := m.LoadSounds(); err != nil {
			debug.Log("main", "load sounds: %v", err)
			startupErrs = append(startupErrs, err)
		}
	}
	m.SetVoicing(cfg.Voicing())
	m.SetVolume(cfg.Volume)
	if err := m.Configure(cfg.Tempo, cfg.Subdivision); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(m, th).WithSoftClicks(cfg.SoftClicks)
	model.Playhead = seq
	model.Backend = string(cfg.Backend)
	if be.watcher != nil {
		model.Ports = be.watcher
		go be.watcher.Run(ctx)
	}
	if cfg.MIDI.RemotePort != "" {
		remote, err := midi.OpenRemote(cfg.MIDI.RemotePort)
		if err != nil {
			debug.Log("main", "remote: %v", err)
			startupErrs = append(startupErrs, err)
		} else {
			defer remote.Close()
			model.Presses = remote.Presses()
		}
	}

	if play {
		if err := m.Start(); err != nil {
			debug.Log("main", "start: %v", err)
			startupErrs = append(startupErrs, err)
		}
	}
	model = model.WithError(errors.Join(startupErrs...))

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	m.Stop()

	st := m.State()
	cfg.Tempo = st.Tempo
	cfg.Subdivision = st.Subdivision
	cfg.Volume = st.Volume
	if err := cfg.Save(); err != nil {
		debug.Log("config", "save failed: %v", err)
	}
	return nil
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(context.Background())
	if err != nil {
		if errors.Is(err, midi.ErrDriverHung) {
			fmt.Println("Fix: sudo killall coreaudiod midiserver")
		}
		return err
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.In {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.Out {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}
