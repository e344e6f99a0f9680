package combat

import (
	"errors"

	"github.com/1siamBot/rts-combat/engine/core"
)

var ErrNoAttacks = errors.New("attack set needs at least one attack")

// Switcher holds the alternative attacks of one entity. Exactly one is active.
type Switcher struct {
	id            core.EntityID
	env           *Env
	attacks       []*Attacker
	basic         int
	active        int
	RevertToBasic bool // a finished non-basic attack hands control back to the basic one
}

// NewSwitcher takes ownership of attacks and numbers them by position. The first
// basic attack starts active, the others start disabled.
func NewSwitcher(id core.EntityID, env *Env, revertToBasic bool, attacks ...*Attacker) (*Switcher, error) {
	if len(attacks) == 0 {
		return nil, ErrNoAttacks
	}
	s := &Switcher{id: id, env: env, attacks: attacks, basic: -1, RevertToBasic: revertToBasic}
	for i, a := range attacks {
		a.slot = i
		a.set = s
		if a.spec.IsBasic && s.basic < 0 {
			s.basic = i
		}
	}
	if s.basic < 0 {
		s.basic = 0
	}
	for i, a := range attacks {
		a.active = i == s.basic
		a.weapon.toggle(i == s.basic)
	}
	s.active = s.basic
	return s, nil
}

func (s *Switcher) Type() core.ComponentType { return core.CompAttackSet }

// SwitcherOf returns the attack set of an entity, or nil.
func SwitcherOf(w *core.World, id core.EntityID) *Switcher {
	s, _ := w.Get(id, core.CompAttackSet).(*Switcher)
	return s
}

func (s *Switcher) Entity() core.EntityID { return s.id }
func (s *Switcher) BasicID() int          { return s.basic }
func (s *Switcher) ActiveID() int         { return s.active }
func (s *Switcher) Active() *Attacker     { return s.attacks[s.active] }
func (s *Switcher) Len() int              { return len(s.attacks) }

// Attack returns the attack with the given id, or nil.
func (s *Switcher) Attack(id int) *Attacker {
	if id < 0 || id >= len(s.attacks) {
		return nil
	}
	return s.attacks[id]
}

func (s *Switcher) find(code string) int {
	for i, a := range s.attacks {
		if a.spec.Code == code {
			return i
		}
	}
	return -1
}

// Update ticks every attack so inactive ones keep reloading and cooling down.
func (s *Switcher) Update(dt float64) {
	for _, a := range s.attacks {
		a.Update(dt)
	}
}

// EnableAttackByCode switches to the attack with the given code.
func (s *Switcher) EnableAttackByCode(code string) core.Code {
	i := s.find(code)
	if i < 0 {
		return core.CodeAttackTypeNotFound
	}
	return s.EnableAttack(i)
}

// EnableAttack validates and requests a switch to attack id.
func (s *Switcher) EnableAttack(id int) core.Code {
	a := s.Attack(id)
	switch {
	case a == nil:
		return core.CodeAttackTypeNotFound
	case a.locked:
		return core.CodeAttackLocked
	case a.cooldownActive:
		return core.CodeAttackInCooldown
	}
	if s.env.Relay != nil {
		if s.env.isLocal(s.id) {
			s.env.send(core.RelayCommand{Mode: core.RelayEnableAttack, Source: s.id, AttackID: id})
		}
		return core.CodeNone
	}
	s.EnableAttackLocal(id)
	return core.CodeNone
}

// EnableAttackLocal performs the switch. Re-enabling the active attack does nothing.
func (s *Switcher) EnableAttackLocal(id int) {
	next := s.Attack(id)
	if next == nil || id == s.active {
		return
	}
	prev := s.attacks[s.active]
	prev.Stop()
	prev.Reset()
	prev.active = false
	prev.weapon.toggle(false)

	s.active = id
	next.active = true
	next.weapon.toggle(true)
	s.env.emit(core.Event{Type: core.EvtAttackSwitch, Source: s.id, AttackID: id, Text: next.spec.Code})
	s.env.Log.Debug().Uint64("entity", uint64(s.id)).Str("attack", next.spec.Code).Msg("attack switched")
}

// ToggleLock locks or unlocks the attack with the given code.
func (s *Switcher) ToggleLock(code string, locked bool) core.Code {
	i := s.find(code)
	if i < 0 {
		return core.CodeAttackTypeNotFound
	}
	if s.env.Relay != nil {
		if s.env.isLocal(s.id) {
			s.env.send(core.RelayCommand{Mode: core.RelayToggleLock, Source: s.id, Code: code, Flag: locked})
		}
		return core.CodeNone
	}
	s.ToggleLockLocal(code, locked)
	return core.CodeNone
}

func (s *Switcher) ToggleLockLocal(code string, locked bool) {
	if i := s.find(code); i >= 0 {
		s.attacks[i].locked = locked
	}
}

// SetTarget assigns a target to the active attack.
func (s *Switcher) SetTarget(target core.EntityID, pos core.Vec) core.Code {
	return s.Active().SetTarget(target, pos)
}

// Stop halts the active attack.
func (s *Switcher) Stop() { s.Active().Stop() }

func (s *Switcher) stopAll() {
	for _, a := range s.attacks {
		a.Stop()
	}
}

// onAttacked lets an idle active attack answer fire from source.
func (s *Switcher) onAttacked(source core.EntityID) {
	a := s.Active()
	if !a.spec.EngageWhenAttacked || a.engaged() || a.locked || !a.cap.IsIdle(a) {
		return
	}
	w := s.env.World
	if w.Dead(source) {
		return
	}
	pos, _ := w.CommittedPosition(source)
	a.SetTarget(source, pos)
}
