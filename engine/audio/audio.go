package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/core"
)

const sampleRate = beep.SampleRate(44100)

// Manager plays simulation sound cues through a beep mixer. Cue volume falls off
// with distance from the listener (the camera). It implements core.AudioSink.
type Manager struct {
	mu           sync.Mutex
	MasterVolume float64
	SFXVolume    float64
	HearingRange float64 // world units; cues beyond it are dropped
	listener     core.Vec
	cues         map[string]Tone
	mixer        *beep.Mixer
	initialized  bool
	played       map[string]int
	log          zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		MasterVolume: 1.0,
		SFXVolume:    0.8,
		HearingRange: 30,
		cues:         DefaultCues(),
		mixer:        &beep.Mixer{},
		played:       make(map[string]int),
		log:          log.With().Str("component", "audio").Logger(),
	}
}

// Initialize opens the output device. Without it cues are still mixed and counted
// but nothing is heard, which is what headless runs want.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Close silences everything still queued.
func (m *Manager) Close() {
	m.withMixer(func(mx *beep.Mixer) { mx.Clear() })
	m.mu.Lock()
	m.initialized = false
	m.mu.Unlock()
}

// SetCue registers or replaces the tone played for a cue name.
func (m *Manager) SetCue(name string, t Tone) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cues[name] = t
}

// SetListener updates the listener position for positional audio
func (m *Manager) SetListener(at core.Vec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = at
}

// SetVolume sets master volume (0-1)
func (m *Manager) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MasterVolume = math.Max(0, math.Min(1, v))
}

// Play queues the named cue at a world position.
func (m *Manager) Play(sound string, at core.Vec) {
	m.mu.Lock()
	vol := m.volumeAt(at)
	tone, ok := m.cues[sound]
	if !ok {
		tone = m.cues[CueDefault]
	}
	m.mu.Unlock()
	if vol <= 0 {
		return
	}
	s := tone.Streamer(sampleRate, vol)
	m.withMixer(func(mx *beep.Mixer) { mx.Add(s) })

	m.mu.Lock()
	m.played[sound]++
	m.mu.Unlock()
	m.log.Trace().Str("cue", sound).Float64("volume", vol).Msg("cue played")
}

// Played reports how many times a cue was actually queued.
func (m *Manager) Played(sound string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.played[sound]
}

// Active is the number of cues still sounding.
func (m *Manager) Active() int {
	n := 0
	m.withMixer(func(mx *beep.Mixer) { n = mx.Len() })
	return n
}

// withMixer runs f under the speaker lock once the device is open.
func (m *Manager) withMixer(f func(*beep.Mixer)) {
	m.mu.Lock()
	live := m.initialized
	m.mu.Unlock()
	if live {
		speaker.Lock()
		defer speaker.Unlock()
	}
	f(m.mixer)
}

// volumeAt computes volume based on distance from the listener
func (m *Manager) volumeAt(at core.Vec) float64 {
	dist := m.listener.Dist(at)
	if m.HearingRange <= 0 || dist >= m.HearingRange {
		return 0
	}
	return (1.0 - dist/m.HearingRange) * m.SFXVolume * m.MasterVolume
}
