package combat

import (
	"math"

	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
)

// Capability holds the rules that differ between the kinds of attacking entity.
type Capability interface {
	// IsIdle gates automatic target search.
	IsIdle(a *Attacker) bool
	CanEngage(a *Attacker) bool
	IsTargetInRange(a *Attacker) bool
	// CheckTarget is the kind-specific part of SetTarget validation.
	CheckTarget(a *Attacker, target core.EntityID, pos core.Vec) core.Code
	OnTargetAssigned(a *Attacker)
	// OnTargetUpdate decides each tick whether to give up, reposition or engage.
	OnTargetUpdate(a *Attacker, dt float64)
}

// CapabilityFor picks the capability matching the entity's body.
func CapabilityFor(w *core.World, id core.EntityID) Capability {
	if b := w.Body(id); b != nil && b.Kind == core.KindBuilding {
		return BuildingCapability{}
	}
	return UnitCapability{}
}

// BuildingCapability: stationary, always idle, fights only once built.
type BuildingCapability struct{}

func (BuildingCapability) IsIdle(*Attacker) bool { return true }

func (BuildingCapability) CanEngage(a *Attacker) bool {
	b := a.env.World.Body(a.id)
	return b == nil || b.Built
}

func (BuildingCapability) IsTargetInRange(a *Attacker) bool {
	return a.position().Dist(a.TargetPosition()) <= a.spec.SearchRange
}

func (BuildingCapability) CheckTarget(a *Attacker, target core.EntityID, pos core.Vec) core.Code {
	if a.position().Dist(pos) > a.spec.SearchRange {
		return core.CodeTargetOutOfRange
	}
	return core.CodeNone
}

func (BuildingCapability) OnTargetAssigned(*Attacker) {}

func (c BuildingCapability) OnTargetUpdate(a *Attacker, dt float64) {
	if !c.IsTargetInRange(a) {
		a.Stop()
		return
	}
	a.engage(dt)
}

// UnitCapability: may chase its target through the entity's mover.
type UnitCapability struct{}

func moverOf(a *Attacker) *movement.Mover {
	m, _ := a.env.World.Get(a.id, core.CompMover).(*movement.Mover)
	return m
}

func canMove(m *movement.Mover) bool { return m != nil && m.CanMove() }

func (UnitCapability) IsIdle(a *Attacker) bool {
	m := moverOf(a)
	return m == nil || !m.IsMoving()
}

func (UnitCapability) CanEngage(*Attacker) bool { return true }

func (UnitCapability) IsTargetInRange(a *Attacker) bool {
	m := moverOf(a)
	d := a.position().Dist(a.TargetPosition())
	switch {
	case !canMove(m):
		return d <= a.spec.SearchRange
	case a.spec.MoveOnAttack:
		return d <= m.Config().StoppingDistance+a.rng.StoppingDistance(a.targetBody())+a.rng.MoveOnAttackOffset
	default:
		return m.DestinationReached()
	}
}

// CheckTarget accepts any range: an out-of-range target is approached instead.
func (UnitCapability) CheckTarget(*Attacker, core.EntityID, core.Vec) core.Code {
	return core.CodeNone
}

func (UnitCapability) OnTargetAssigned(a *Attacker) {
	m := moverOf(a)
	if m == nil {
		return
	}
	m.ClearDestinationReached()
	if !canMove(m) {
		if a.target != 0 {
			m.LookAt(a.target)
		} else {
			m.FaceTowards(a.lastTargetPos)
		}
		return
	}
	approach(a, m)
}

func (u UnitCapability) OnTargetUpdate(a *Attacker, dt float64) {
	m := moverOf(a)
	if canMove(m) {
		if b := a.targetBody(); b != nil && b.Kind == core.KindUnit {
			tp := a.TargetPosition()
			if a.defend == nil && a.wasInRange && a.position().Dist(tp) > math.Max(a.spec.FollowDistance, a.initialDistance) {
				a.Stop()
				return
			}
			if a.rng.ShouldRecomputePath(a.lastTargetPos, tp) {
				m.ClearDestinationReached()
				a.SetTargetLocal(a.target, tp)
			}
		}
		if a.engaged() && !m.DestinationReached() && !m.IsMoving() {
			a.SetTargetLocal(a.target, a.TargetPosition())
		}
		if !a.engaged() {
			return
		}
	} else if a.defend == nil && a.wasInRange && !u.IsTargetInRange(a) {
		a.Stop()
		return
	}

	if (!a.spec.MoveOnAttack && canMove(m) && m.IsMoving()) || !u.IsTargetInRange(a) {
		a.state = StateApproaching
		return
	}
	a.engage(dt)
}

// approach orders the mover toward the current target, stopping at the range
// policy's distance for it.
func approach(a *Attacker, m *movement.Mover) {
	code := m.RequestMove(movement.Request{
		Destination:      a.TargetPosition(),
		StoppingDistance: a.rng.StoppingDistance(a.targetBody()),
		Target:           a.target,
		Mode:             movement.ModeAttack,
		OnInvalid:        movement.InvalidPathPolicy{ToIdle: true},
	})
	if code != core.CodeNone {
		a.Stop()
	}
}
