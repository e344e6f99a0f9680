package movement

import (
	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/core"
)

// NavigationProvider returns a polyline from `from` to `to` for an agent of the given radius.
type NavigationProvider interface {
	ComputePath(from, to core.Vec, agentRadius float64) ([]core.Vec, error)
}

// HeightSampler reports the ground height under a point.
type HeightSampler interface {
	SampleHeight(at core.Vec) float64
}

// JobCanceller aborts whatever the entity was doing when its movement fails.
type JobCanceller interface {
	CancelJobs(id core.EntityID)
}

// Sound cues played by movers.
const (
	SoundMoveOrder   = "move_order"
	SoundInvalidPath = "invalid_path"
)

// Env is the shared context every mover of a world runs against.
// Everything except World is optional.
type Env struct {
	World    *core.World
	Nav      NavigationProvider
	AirNav   NavigationProvider
	Heights  HeightSampler
	Queue    *Queue
	Jobs     JobCanceller
	Audio    core.AudioSink
	Factions *core.FactionManager
	Metrics  *Metrics
	Log      zerolog.Logger
}

func (e *Env) isLocal(id core.EntityID) bool {
	o := e.World.Owner(id)
	return o != nil && e.Factions.IsLocal(o.FactionID)
}

func (e *Env) play(sound string, at core.Vec) {
	if e.Audio != nil {
		e.Audio.Play(sound, at)
	}
}
