package systems

import (
	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
	"github.com/1siamBot/rts-combat/engine/network"
)

// CommandSource hands over the relay commands scheduled for a tick, already in
// apply order. network.Lockstep and network.Replay both qualify.
type CommandSource interface {
	TakeCommands(tick uint64) []network.Command
}

// CommandSystem applies relayed commands at the start of every tick, before
// anything else moves.
type CommandSystem struct {
	Source CommandSource
	Combat *combat.Env
	Replay *network.Replay // optional recording of every applied command
	Log    zerolog.Logger
}

func (s *CommandSystem) Priority() int { return 0 }

func (s *CommandSystem) Update(w *core.World, dt float64) {
	if s.Source == nil {
		return
	}
	for _, cmd := range s.Source.TakeCommands(w.TickCount) {
		s.Apply(w, cmd.Relay)
		if s.Replay != nil {
			if err := s.Replay.Record(cmd); err != nil {
				s.Log.Error().Err(err).Msg("recording replay command")
			}
		}
	}
}

// Apply runs the local half of a two-phase command. Commands whose source is gone
// by the time they arrive are dropped.
func (s *CommandSystem) Apply(w *core.World, rc core.RelayCommand) {
	if !w.Exists(rc.Source) {
		s.Log.Debug().Str("mode", rc.Mode.String()).Uint64("source", uint64(rc.Source)).Msg("command for missing entity dropped")
		return
	}
	switch rc.Mode {
	case core.RelaySetTarget:
		sw := combat.SwitcherOf(w, rc.Source)
		if sw == nil {
			return
		}
		a := sw.Attack(rc.AttackID)
		if a == nil || (rc.Target != 0 && w.Dead(rc.Target)) {
			return
		}
		a.SetTargetLocal(rc.Target, rc.Pos)
	case core.RelayEnableAttack:
		if sw := combat.SwitcherOf(w, rc.Source); sw != nil {
			sw.EnableAttackLocal(rc.AttackID)
		}
	case core.RelayToggleLock:
		if sw := combat.SwitcherOf(w, rc.Source); sw != nil {
			sw.ToggleLockLocal(rc.Code, rc.Flag)
		}
	case core.RelayAddHealth:
		s.Combat.AddHealthLocal(rc.Source, rc.Amount, rc.Target)
	case core.RelayDestroy:
		s.Combat.DestroyEntityLocal(rc.Source, rc.Target)
	case core.RelayMove:
		if m, ok := w.Get(rc.Source, core.CompMover).(*movement.Mover); ok {
			m.RequestMove(moveRequest(m, rc))
		}
	default:
		s.Log.Warn().Uint8("mode", uint8(rc.Mode)).Msg("unknown relay command")
	}
}

func moveRequest(m *movement.Mover, rc core.RelayCommand) movement.Request {
	return movement.Request{
		Destination:      rc.Pos,
		StoppingDistance: m.Config().StoppingDistance,
		Target:           rc.Target,
		PlayAudio:        rc.Flag,
		OnInvalid:        movement.InvalidPathPolicy{PlayAudio: rc.Flag, ToIdle: true},
	}
}

// IssueMove orders a plain move. Through a relay only the owning replica sends it
// and every replica applies it on delivery; without one it is applied at once.
func IssueMove(env *combat.Env, id core.EntityID, to core.Vec, playAudio bool) core.Code {
	rc := core.RelayCommand{Mode: core.RelayMove, Source: id, Pos: to, Flag: playAudio}
	if env.Relay != nil {
		o := env.World.Owner(id)
		if o == nil || !env.Factions.IsLocal(o.FactionID) {
			return core.CodeNone
		}
		if err := env.Relay.SendCommand(rc); err != nil {
			env.Log.Error().Err(err).Msg("sending move command")
		}
		return core.CodeNone
	}
	m, ok := env.World.Get(id, core.CompMover).(*movement.Mover)
	if !ok {
		return core.CodePathInvalid
	}
	return m.RequestMove(moveRequest(m, rc))
}
