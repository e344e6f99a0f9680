package main

import (
	"math"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/systems"
)

// pickSlack widens the click target around small bodies.
const pickSlack = 0.3

// pick returns the nearest living entity whose body covers at, or zero.
func pick(w *core.World, at core.Vec) core.EntityID {
	var best core.EntityID
	bestDist := math.MaxFloat64
	for _, id := range w.Query(core.CompPosition, core.CompBody) {
		if w.Dead(id) {
			continue
		}
		p, _ := w.CommittedPosition(id)
		d := p.Dist(at)
		if d <= w.Body(id).Radius+pickSlack && d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

// boxSelect returns the living entities of faction inside the world rectangle.
func boxSelect(w *core.World, faction int, a, b core.Vec) []core.EntityID {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	var out []core.EntityID
	for _, id := range w.Query(core.CompPosition, core.CompOwner) {
		if w.Dead(id) || w.Owner(id).FactionID != faction {
			continue
		}
		p := w.Position(id)
		if p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY {
			out = append(out, id)
		}
	}
	return out
}

// order sends the selection at a point: an attack when an enemy is under it, a
// move otherwise. It returns the first failure, if any.
func order(env *combat.Env, selected []core.EntityID, at core.Vec) core.Code {
	w := env.World
	target := pick(w, at)
	if target != 0 && !hostile(env, selected, target) {
		target = 0
	}
	first := core.CodeNone
	for _, id := range selected {
		var code core.Code
		if sw := combat.SwitcherOf(w, id); sw != nil && target != 0 {
			p, _ := w.CommittedPosition(target)
			code = sw.SetTarget(target, p)
		} else if w.Has(id, core.CompMover) {
			code = systems.IssueMove(env, id, at, true)
		}
		if first == core.CodeNone {
			first = code
		}
	}
	return first
}

// hostile reports whether target belongs to someone other than the selection's owner.
func hostile(env *combat.Env, selected []core.EntityID, target core.EntityID) bool {
	if len(selected) == 0 {
		return false
	}
	own := env.World.Owner(selected[0])
	other := env.World.Owner(target)
	if own == nil || other == nil {
		return other != nil
	}
	if other.Free {
		return true
	}
	return other.FactionID != own.FactionID && !env.Factions.AreAllies(own.FactionID, other.FactionID)
}

// prune drops selected entities that no longer exist.
func prune(w *core.World, ids []core.EntityID) []core.EntityID {
	out := ids[:0]
	for _, id := range ids {
		if !w.Dead(id) {
			out = append(out, id)
		}
	}
	return out
}
