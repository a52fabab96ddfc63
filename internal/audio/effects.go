package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	totalSamples int
}

// NewEnvelope shapes s with a linear attack and release.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:     s,
		attack:       rate.N(attack),
		release:      rate.N(release),
		totalSamples: rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.totalSamples - e.position; e.release > 0 && remaining < e.release {
			vol = math.Min(vol, float64(remaining)/float64(e.release))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// note is one tone of a cue.
type note struct {
	freq     float64
	duration time.Duration
	wave     WaveType
}

// cueNotes lists each cue as a sequence of notes.
var cueNotes = map[Cue][]note{
	CueSelect:    {{660, 40 * time.Millisecond, WaveSquare}},
	CueConfirm:   {{660, 50 * time.Millisecond, WaveSquare}, {990, 70 * time.Millisecond, WaveSquare}},
	CueHit:       {{140, 120 * time.Millisecond, WaveSaw}},
	CueMiss:      {{300, 60 * time.Millisecond, WaveSine}},
	CueEncounter: {{220, 120 * time.Millisecond, WaveSaw}, {185, 120 * time.Millisecond, WaveSaw}, {147, 200 * time.Millisecond, WaveSaw}},
	CueVictory:   {{523, 120 * time.Millisecond, WaveSquare}, {659, 120 * time.Millisecond, WaveSquare}, {784, 260 * time.Millisecond, WaveSquare}},
	CueDefeat:    {{392, 200 * time.Millisecond, WaveSine}, {311, 200 * time.Millisecond, WaveSine}, {262, 400 * time.Millisecond, WaveSine}},
	CueSave:      {{880, 60 * time.Millisecond, WaveSine}, {1320, 90 * time.Millisecond, WaveSine}},
	CueDoor:      {{90, 250 * time.Millisecond, WaveSaw}},
}

// Synth builds the streamer for a cue at the given rate and volume. It
// returns nil for an unknown cue.
func Synth(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	notes, ok := cueNotes[c]
	if !ok {
		return nil
	}
	parts := make([]beep.Streamer, len(notes))
	for i, n := range notes {
		osc := NewOscillator(n.freq, n.duration, n.wave, rate)
		parts[i] = NewEnvelope(osc, n.duration, 5*time.Millisecond, n.duration/3, rate)
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: volume}
}

// CueLength is the total duration of a cue.
func CueLength(c Cue) time.Duration {
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.duration
	}
	return d
}
