package metronome

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"go-metronome/click"
)

type fakeEngine struct {
	err    error
	starts int
}

func (e *fakeEngine) Start() error {
	e.starts++
	return e.err
}

type fakeSampler struct {
	volumes []float64
	loaded  []string
	loadErr error
}

func (s *fakeSampler) SetVolume(v float64) { s.volumes = append(s.volumes, v) }

func (s *fakeSampler) LoadSounds(names []string) error {
	s.loaded = append(s.loaded, names...)
	return s.loadErr
}

type trackEvent struct {
	note     click.Note
	velocity uint8
	position float64
	duration float64
}

type fakeTrack struct {
	events []trackEvent
	length float64
	loop   bool
	clears int
}

func (t *fakeTrack) Clear() {
	t.events = nil
	t.clears++
}

func (t *fakeTrack) Add(note click.Note, velocity uint8, position, duration float64) {
	t.events = append(t.events, trackEvent{note, velocity, position, duration})
}

func (t *fakeTrack) SetLength(beats float64)  { t.length = beats }
func (t *fakeTrack) SetLoopEnabled(loop bool) { t.loop = loop }

func (t *fakeTrack) positions() []float64 {
	var out []float64
	for _, e := range t.events {
		out = append(out, e.position)
	}
	return out
}

type fakeSequencer struct {
	tempos []float64
	tracks []*fakeTrack
	plays  int
	stops  int
}

func (s *fakeSequencer) SetTempo(bpm float64) { s.tempos = append(s.tempos, bpm) }

func (s *fakeSequencer) AddTrack(Sampler) Track {
	t := &fakeTrack{}
	s.tracks = append(s.tracks, t)
	return t
}

func (s *fakeSequencer) PlayFromStart() { s.plays++ }
func (s *fakeSequencer) Stop()          { s.stops++ }

func (s *fakeSequencer) track(t *testing.T) *fakeTrack {
	t.Helper()
	if len(s.tracks) != 1 {
		t.Fatalf("sequencer has %d tracks, want 1", len(s.tracks))
	}
	return s.tracks[0]
}

func newTestController() (*Controller, *fakeEngine, *fakeSequencer, *fakeSampler) {
	e := &fakeEngine{}
	seq := &fakeSequencer{}
	smp := &fakeSampler{}
	return New(e, seq, smp), e, seq, smp
}

func TestNewPushesDefaults(t *testing.T) {
	c, _, seq, smp := newTestController()
	if !reflect.DeepEqual(seq.tempos, []float64{click.DefaultTempo}) {
		t.Errorf("tempos = %v", seq.tempos)
	}
	if !reflect.DeepEqual(smp.volumes, []float64{1.0}) {
		t.Errorf("volumes = %v", smp.volumes)
	}
	want := State{Tempo: 120, Subdivision: 1, Volume: 1}
	if got := c.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestScenarioSingleClick(t *testing.T) {
	c, _, seq, _ := newTestController()
	c.SetSubdivision(1)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	tr := seq.track(t)
	want := []trackEvent{{click.Accent, click.AccentVelocity, 0, click.AccentDuration}}
	if !reflect.DeepEqual(tr.events, want) {
		t.Errorf("track = %+v, want %+v", tr.events, want)
	}
	if tr.length != 1.0 || !tr.loop {
		t.Errorf("length=%v loop=%v", tr.length, tr.loop)
	}
	if seq.plays != 1 {
		t.Errorf("plays = %d, want 1", seq.plays)
	}
	if !c.IsPlaying() {
		t.Error("not playing after Start")
	}
}

func TestScenarioSixteenths(t *testing.T) {
	c, _, seq, _ := newTestController()
	c.SetSubdivision(4)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	tr := seq.track(t)
	if got, want := tr.positions(), []float64{0, 0.25, 0.5, 0.75}; !reflect.DeepEqual(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if tr.events[0].note != click.Accent {
		t.Errorf("first event %v, want accent", tr.events[0].note)
	}
	for _, e := range tr.events[1:] {
		if e.note != click.Regular {
			t.Errorf("event at %v is %v, want regular", e.position, e.note)
		}
	}
}

func TestScenarioSubdivisionWhilePlaying(t *testing.T) {
	c, _, seq, _ := newTestController()
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.SetSubdivision(3)

	tr := seq.track(t)
	if got, want := tr.positions(), []float64{0, 1.0 / 3, 2.0 / 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if !c.IsPlaying() {
		t.Error("stopped by subdivision change")
	}
	if seq.stops != 0 || seq.plays != 1 {
		t.Errorf("plays=%d stops=%d, want 1/0", seq.plays, seq.stops)
	}
	if got := c.Sequence(); len(got.Events) != 3 {
		t.Errorf("Sequence() has %d events, want 3", len(got.Events))
	}
}

func TestScenarioTempoForwarding(t *testing.T) {
	c, _, seq, _ := newTestController()
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	clears := seq.track(t).clears
	seq.tempos = nil

	if err := c.SetTempo(120); err != nil {
		t.Fatal(err)
	}
	if err := c.SetTempo(90); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(seq.tempos, []float64{120, 90}) {
		t.Errorf("tempos = %v, want [120 90]", seq.tempos)
	}
	if seq.track(t).clears != clears {
		t.Error("tempo change regenerated the track")
	}
}

func TestScenarioInvalidTempo(t *testing.T) {
	c, _, seq, _ := newTestController()
	if err := c.SetTempo(100); err != nil {
		t.Fatal(err)
	}
	seq.tempos = nil

	for _, bpm := range []float64{-10, 0} {
		if err := c.SetTempo(bpm); !errors.Is(err, ErrInvalidTempo) {
			t.Errorf("SetTempo(%v) err = %v, want ErrInvalidTempo", bpm, err)
		}
	}
	if got := c.State().Tempo; got != 100 {
		t.Errorf("tempo = %v, want 100", got)
	}
	if len(seq.tempos) != 0 {
		t.Errorf("invalid tempo forwarded: %v", seq.tempos)
	}
}

func TestSubdivisionClamp(t *testing.T) {
	c, _, _, _ := newTestController()
	for _, n := range []int{0, -5} {
		c.SetSubdivision(n)
		if got := c.State().Subdivision; got != 1 {
			t.Errorf("SetSubdivision(%d) -> %d, want 1", n, got)
		}
	}
}

func TestSubdivisionIdempotent(t *testing.T) {
	c, _, seq, _ := newTestController()
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}

	c.SetSubdivision(5)
	once := append([]trackEvent(nil), seq.track(t).events...)
	c.SetSubdivision(5)

	if !reflect.DeepEqual(once, seq.track(t).events) {
		t.Errorf("second SetSubdivision changed track: %+v vs %+v", once, seq.track(t).events)
	}
}

func TestSubdivisionWhileStopped(t *testing.T) {
	c, _, seq, _ := newTestController()
	c.SetSubdivision(2)
	if len(seq.tracks) != 0 {
		t.Error("track installed while stopped")
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if n := len(seq.track(t).events); n != 2 {
		t.Errorf("track has %d events, want 2", n)
	}
}

func TestStartStopNoops(t *testing.T) {
	c, e, seq, _ := newTestController()

	c.Stop()
	if seq.stops != 0 {
		t.Error("Stop while stopped reached the sequencer")
	}

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if e.starts != 1 || seq.plays != 1 {
		t.Errorf("starts=%d plays=%d, want 1/1", e.starts, seq.plays)
	}

	c.Stop()
	c.Stop()
	if seq.stops != 1 {
		t.Errorf("stops = %d, want 1", seq.stops)
	}
	if c.IsPlaying() {
		t.Error("still playing")
	}
}

func TestTrackReused(t *testing.T) {
	c, _, seq, _ := newTestController()
	for i := 0; i < 3; i++ {
		if err := c.Start(); err != nil {
			t.Fatal(err)
		}
		c.Stop()
	}
	seq.track(t)
}

func TestToggle(t *testing.T) {
	c, _, seq, _ := newTestController()
	if err := c.Toggle(); err != nil {
		t.Fatal(err)
	}
	if !c.IsPlaying() {
		t.Fatal("Toggle did not start")
	}
	if err := c.Toggle(); err != nil {
		t.Fatal(err)
	}
	if c.IsPlaying() || seq.stops != 1 {
		t.Error("Toggle did not stop")
	}
}

func TestToggleConcurrent(t *testing.T) {
	c, e, seq, _ := newTestController()

	const toggles = 64
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Toggle(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	// every toggle flips the state, so an even count ends stopped
	if c.IsPlaying() {
		t.Error("playing after an even number of toggles")
	}
	if e.starts != toggles/2 || seq.plays != toggles/2 || seq.stops != toggles/2 {
		t.Errorf("starts=%d plays=%d stops=%d, want %d each", e.starts, seq.plays, seq.stops, toggles/2)
	}
}

func TestEngineStartFailure(t *testing.T) {
	c, e, seq, _ := newTestController()
	e.err = errors.New("no output device")

	err := c.Start()
	if !errors.Is(err, ErrEngineStart) {
		t.Fatalf("err = %v, want ErrEngineStart", err)
	}
	if !errors.Is(err, e.err) {
		t.Errorf("err = %v does not wrap cause", err)
	}
	if c.IsPlaying() {
		t.Error("playing after failed start")
	}
	if len(seq.tracks) != 0 || seq.plays != 0 {
		t.Error("sequencer touched after failed start")
	}

	// caller retries once the device is back
	e.err = nil
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if !c.IsPlaying() {
		t.Error("retry did not start")
	}
}

func TestSetVolume(t *testing.T) {
	c, _, seq, smp := newTestController()
	smp.volumes = nil

	c.SetVolume(0.5)
	c.SetVolume(2)
	c.SetVolume(-1)

	if !reflect.DeepEqual(smp.volumes, []float64{0.5, 1, 0}) {
		t.Errorf("volumes = %v", smp.volumes)
	}
	if len(seq.tracks) != 0 {
		t.Error("volume touched the sequencer")
	}
}

func TestLoadSounds(t *testing.T) {
	c, _, _, smp := newTestController()
	if err := c.LoadSounds(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(smp.loaded, ClickSounds) {
		t.Errorf("loaded = %v, want %v", smp.loaded, ClickSounds)
	}

	smp.loadErr = errors.New("missing")
	if err := c.LoadSounds("x"); !errors.Is(err, ErrSoundLoad) {
		t.Errorf("err = %v, want ErrSoundLoad", err)
	}
	// still usable
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
}

func TestSetVoicingWhilePlaying(t *testing.T) {
	c, _, seq, _ := newTestController()
	c.SetSubdivision(2)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.SetVoicing(click.SoftVoicing)

	if got := seq.track(t).events[1].velocity; got != click.SoftRegularVelocity {
		t.Errorf("regular velocity = %d, want %d", got, click.SoftRegularVelocity)
	}
}

func TestConfigure(t *testing.T) {
	c, _, _, _ := newTestController()
	if err := c.Configure(90, 3); err != nil {
		t.Fatal(err)
	}
	if s := c.State(); s.Tempo != 90 || s.Subdivision != 3 {
		t.Errorf("State() = %+v", s)
	}
	if err := c.Configure(-1, 4); !errors.Is(err, ErrInvalidTempo) {
		t.Errorf("err = %v", err)
	}
	if c.State().Subdivision != 3 {
		t.Error("subdivision changed after invalid tempo")
	}
}

func TestUpdatesCoalesce(t *testing.T) {
	c, _, _, _ := newTestController()
	c.SetSubdivision(2)
	c.SetSubdivision(3)
	c.SetVolume(0.3)

	select {
	case <-c.Updates():
	default:
		t.Fatal("no update signalled")
	}
	select {
	case <-c.Updates():
		t.Fatal("updates did not coalesce")
	default:
	}
}
