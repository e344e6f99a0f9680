package combat

import (
	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/core"
)

// Env is the shared context every attacker of a world runs against.
// Everything except World is optional.
type Env struct {
	World    *core.World
	Factions *core.FactionManager
	Economy  core.EconomySink
	Relay    core.InputRelay
	Audio    core.AudioSink
	Ranges   map[string]RangeSpec
	Metrics  *Metrics
	Log      zerolog.Logger
}

// Range resolves a range type, falling back to the default policy.
func (e *Env) Range(code string) RangeSpec {
	if r, ok := e.Ranges[code]; ok {
		return r
	}
	return DefaultRange()
}

func (e *Env) isLocal(id core.EntityID) bool {
	o := e.World.Owner(id)
	return o != nil && e.Factions.IsLocal(o.FactionID)
}

// remote reports whether id belongs to another replica of a relayed match. Remote
// entities only change through commands that come back from the relay.
func (e *Env) remote(id core.EntityID) bool {
	return e.Relay != nil && !e.isLocal(id)
}

func (e *Env) send(cmd core.RelayCommand) {
	if err := e.Relay.SendCommand(cmd); err != nil {
		e.Log.Error().Err(err).Str("mode", cmd.Mode.String()).Uint64("entity", uint64(cmd.Source)).Msg("relay send failed")
	}
}

func (e *Env) play(sound string, at core.Vec) {
	if e.Audio != nil && sound != "" {
		e.Audio.Play(sound, at)
	}
}

func (e *Env) emit(ev core.Event) {
	e.World.Events.Emit(ev)
}

func (e *Env) economy() core.EconomySink {
	if e.Economy != nil {
		return e.Economy
	}
	if e.Factions != nil {
		return e.Factions
	}
	return nil
}
