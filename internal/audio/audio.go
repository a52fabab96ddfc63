// Package audio plays short synthesized sound cues for menu, combat and
// travel events.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"chosenoffset.com/goldbox/internal/config"
)

const sampleRate = beep.SampleRate(44100)

// Cue names a sound.
type Cue int

const (
	CueSelect Cue = iota
	CueConfirm
	CueHit
	CueMiss
	CueEncounter
	CueVictory
	CueDefeat
	CueSave
	CueDoor
)

func (c Cue) String() string {
	switch c {
	case CueSelect:
		return "select"
	case CueConfirm:
		return "confirm"
	case CueHit:
		return "hit"
	case CueMiss:
		return "miss"
	case CueEncounter:
		return "encounter"
	case CueVictory:
		return "victory"
	case CueDefeat:
		return "defeat"
	case CueSave:
		return "save"
	case CueDoor:
		return "door"
	default:
		return "unknown"
	}
}

// Player plays cues without blocking.
type Player interface {
	Play(c Cue)
	Close()
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue) {}
func (Nop) Close()   {}

// Speaker mixes cues onto the system audio device.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	closed bool
	logger *log.Logger
}

// New opens the audio device. Disabled audio, or a device that cannot be
// opened, yields a Nop player; only the latter is logged.
func New(cfg config.AudioConfig, logger *log.Logger) Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if !cfg.Enabled {
		return Nop{}
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		logger.Warn("audio unavailable, continuing silently", "err", err)
		return Nop{}
	}
	s := &Speaker{mixer: &beep.Mixer{}, volume: cfg.Volume, logger: logger}
	speaker.Play(s.mixer)
	return s
}

// Play queues a cue on the mixer.
func (s *Speaker) Play(c Cue) {
	st := Synth(c, sampleRate, s.volume)
	if st == nil {
		s.logger.Debug("unknown audio cue", "cue", int(c))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences the mixer.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}

// Recorder remembers played cues, for tests of code that plays sounds.
type Recorder struct {
	mu    sync.Mutex
	cues  []Cue
	close bool
}

func (r *Recorder) Play(c Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, c)
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.close = true
}

// Cues returns the cues played so far.
func (r *Recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.cues...)
}

// Played reports whether c was played at least once.
func (r *Recorder) Played(c Cue) bool {
	for _, got := range r.Cues() {
		if got == c {
			return true
		}
	}
	return false
}
