package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/1siamBot/rts-combat/engine/movement"
)

// Cue names with built-in tones. Attack specs may name any other cue; unknown
// names play CueDefault.
const (
	CueDefault   = "default"
	CueGunshot   = "gunshot"
	CueCannon    = "cannon"
	CueExplosion = "explosion"
)

type Wave uint8

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Tone is a synthesized cue: one or more notes played back to back.
type Tone struct {
	Notes   []Note
	Attack  time.Duration
	Release time.Duration
}

type Note struct {
	Freq     float64
	Duration time.Duration
	Wave     Wave
}

func DefaultCues() map[string]Tone {
	return map[string]Tone{
		CueDefault: {Notes: []Note{{Freq: 660, Duration: 40 * time.Millisecond, Wave: WaveSquare}}, Release: 20 * time.Millisecond},
		CueGunshot: {Notes: []Note{{Duration: 60 * time.Millisecond, Wave: WaveNoise}}, Release: 50 * time.Millisecond},
		CueCannon: {
			Notes:   []Note{{Freq: 90, Duration: 180 * time.Millisecond, Wave: WaveSaw}},
			Attack:  5 * time.Millisecond,
			Release: 150 * time.Millisecond,
		},
		CueExplosion: {Notes: []Note{{Duration: 350 * time.Millisecond, Wave: WaveNoise}}, Release: 300 * time.Millisecond},
		movement.SoundMoveOrder: {
			Notes: []Note{
				{Freq: 523.25, Duration: 60 * time.Millisecond, Wave: WaveSine},
				{Freq: 783.99, Duration: 80 * time.Millisecond, Wave: WaveSine},
			},
			Release: 30 * time.Millisecond,
		},
		movement.SoundInvalidPath: {Notes: []Note{{Freq: 110, Duration: 150 * time.Millisecond, Wave: WaveSaw}}, Release: 40 * time.Millisecond},
	}
}

// Streamer renders the tone at the given linear volume.
func (t Tone) Streamer(rate beep.SampleRate, vol float64) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(t.Notes))
	for _, n := range t.Notes {
		osc := &oscillator{freq: n.Freq, wave: n.Wave, rate: rate, length: rate.N(n.Duration), seed: 1}
		parts = append(parts, &envelope{
			s:       osc,
			total:   osc.length,
			attack:  rate.N(t.Attack),
			release: rate.N(t.Release),
		})
	}
	return newVolume(beep.Seq(parts...), vol)
}

// Len is the tone length in samples.
func (t Tone) Len(rate beep.SampleRate) int {
	n := 0
	for _, note := range t.Notes {
		n += rate.N(note.Duration)
	}
	return n
}

type oscillator struct {
	freq   float64
	phase  float64
	wave   Wave
	rate   beep.SampleRate
	length int
	pos    int
	seed   uint32
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.pos >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			// xorshift keeps noise reproducible across runs
			o.seed ^= o.seed << 13
			o.seed ^= o.seed >> 17
			o.seed ^= o.seed << 5
			v = float64(o.seed)/math.MaxUint32*2 - 1
		}
		samples[i][0], samples[i][1] = v, v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a streamer in over attack samples and out over the last release samples.
type envelope struct {
	s       beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; e.release > 0 && left < e.release {
			vol = math.Min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// math.Log2(0) is -Inf, so zero volume is rendered silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
