package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"chosenoffset.com/goldbox/internal/config"
)

func drain(t *testing.T, s beep.Streamer) int {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	for i := 0; i < 1000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			if smp[0] < -1 || smp[0] > 1 || smp[1] < -1 || smp[1] > 1 {
				t.Fatalf("sample %v out of range", smp)
			}
		}
		total += n
		if !ok {
			return total
		}
	}
	t.Fatal("streamer never finished")
	return total
}

func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw} {
		osc := NewOscillator(440, 100*time.Millisecond, wave, rate)
		if got := drain(t, osc); got != rate.N(100*time.Millisecond) {
			t.Errorf("wave %d streamed %d samples, want %d", wave, got, rate.N(100*time.Millisecond))
		}
	}
}

func TestEnvelopeStartsSilent(t *testing.T) {
	rate := beep.SampleRate(8000)
	osc := NewOscillator(440, 50*time.Millisecond, WaveSquare, rate)
	env := NewEnvelope(osc, 50*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 4)
	env.Stream(buf)
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want 0 at the start of the attack", buf[0][0])
	}
}

func TestSynthEveryCue(t *testing.T) {
	rate := beep.SampleRate(8000)
	for c := CueSelect; c <= CueDoor; c++ {
		s := Synth(c, rate, 0)
		if s == nil {
			t.Fatalf("no streamer for %s", c)
		}
		want := rate.N(CueLength(c))
		got := drain(t, s)
		// Each note rounds independently.
		if diff := got - want; diff < -len(cueNotes[c]) || diff > len(cueNotes[c]) {
			t.Errorf("%s: %d samples, want about %d", c, got, want)
		}
	}
	if Synth(Cue(99), rate, 0) != nil {
		t.Error("unknown cue should have no streamer")
	}
}

func TestNewDisabledIsNop(t *testing.T) {
	p := New(config.AudioConfig{Enabled: false}, nil)
	if _, ok := p.(Nop); !ok {
		t.Fatalf("New(disabled) = %T, want Nop", p)
	}
	p.Play(CueHit)
	p.Close()
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Play(CueHit)
	r.Play(CueVictory)
	if !r.Played(CueVictory) || r.Played(CueDefeat) {
		t.Errorf("cues = %v", r.Cues())
	}
	if CueVictory.String() != "victory" || Cue(99).String() != "unknown" {
		t.Error("cue names")
	}
}
