package combat

import (
	"slices"

	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
)

// DamageMultiplier table: [DamageType][ArmorType] -> multiplier
var DamageMultiplier = [5][5]float64{
	// None   Light  Medium Heavy  Building
	{1.0, 1.0, 0.7, 0.4, 0.3}, // Kinetic
	{1.2, 0.8, 1.0, 1.2, 1.5}, // Explosive
	{1.5, 1.3, 0.9, 0.6, 0.8}, // Fire
	{1.0, 1.5, 1.2, 0.8, 0.5}, // Electric
	{1.3, 1.1, 1.1, 1.0, 1.0}, // Radiation
}

// Hit is one resolved attack: a direct strike or an attack object landing.
type Hit struct {
	Source  core.EntityID
	Faction int
	Target  core.EntityID // zero for terrain hits
	At      core.Vec
	Damage  int
	Type    core.DamageType
	Splash  float64
}

// Mitigate applies the target's armor to base damage. Any positive hit deals at least 1.
func Mitigate(w *core.World, id core.EntityID, base int, t core.DamageType) int {
	if base <= 0 {
		return 0
	}
	mult := 1.0
	if a, ok := w.Get(id, core.CompArmor).(*core.Armor); ok {
		if int(t) < len(DamageMultiplier) && int(a.ArmorType) < len(DamageMultiplier[0]) {
			mult = DamageMultiplier[t][a.ArmorType]
		}
		base -= a.Value
		if base < 1 {
			base = 1
		}
	}
	dmg := int(float64(base) * mult)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// Strike resolves a hit and returns the damage it dealt.
func (e *Env) Strike(h Hit) int {
	if h.Splash > 0 {
		return e.splash(h)
	}
	if h.Target == 0 || e.World.Dead(h.Target) {
		return 0
	}
	dmg := Mitigate(e.World, h.Target, h.Damage, h.Type)
	e.ApplyDamage(h.Target, dmg, h.Source)
	return dmg
}

// splash damages every hostile entity around the impact point, falling off linearly.
func (e *Env) splash(h Hit) int {
	w := e.World
	total := 0
	for _, id := range w.Query(core.CompPosition, core.CompHealth) {
		if id == h.Source || w.Dead(id) {
			continue
		}
		if o := w.Owner(id); o != nil && !o.Free && o.FactionID == h.Faction && id != h.Target {
			continue
		}
		d := w.Position(id).Vec().Dist(h.At)
		if d > h.Splash {
			continue
		}
		scaled := int(float64(h.Damage) * (1.0 - d/h.Splash))
		if scaled < 1 {
			scaled = 1
		}
		dmg := Mitigate(w, id, scaled, h.Type)
		e.ApplyDamage(id, dmg, h.Source)
		total += dmg
	}
	return total
}

// ApplyDamage removes amount from target's health on behalf of source and reports
// the resulting health. With a relay the change lands when the command comes back.
func (e *Env) ApplyDamage(target core.EntityID, amount int, source core.EntityID) (int, bool) {
	h := e.World.Health(target)
	if h == nil {
		return 0, e.World.Dead(target)
	}
	if h.Dead || h.IgnoreDamage || amount <= 0 {
		return h.Current, h.Dead
	}
	e.emit(core.Event{Type: core.EvtDamageDealt, Source: source, Target: target, Amount: amount})
	e.Metrics.dealt(amount)
	e.AddHealth(target, -amount, source)
	return h.Current, h.Dead
}

// AddHealth changes target's health by value. Only the owning replica relays.
func (e *Env) AddHealth(target core.EntityID, value int, source core.EntityID) {
	if e.Relay != nil {
		if e.isLocal(target) {
			e.send(core.RelayCommand{Mode: core.RelayAddHealth, Source: target, Target: source, Amount: value})
		}
		return
	}
	e.AddHealthLocal(target, value, source)
}

func (e *Env) AddHealthLocal(target core.EntityID, value int, source core.EntityID) {
	w := e.World
	h := w.Health(target)
	if h == nil || h.Dead {
		return
	}
	if h.IgnoreDamage && value < 0 {
		return
	}
	h.Current += value
	if h.Current >= h.Max {
		h.Current = h.Max
	}
	if h.Current <= 0 {
		e.onZeroHealth(target, h, source)
		return
	}
	e.emit(core.Event{Type: core.EvtHealthUpdated, Source: target, Target: source, Amount: value})
	if value < 0 && source != 0 {
		if sw := SwitcherOf(w, target); sw != nil {
			sw.onAttacked(source)
		}
	}
}

func (e *Env) onZeroHealth(target core.EntityID, h *core.Health, source core.EntityID) {
	w := e.World
	h.Current = 0
	h.KilledBy = source
	e.Metrics.kill()
	if killer := w.Owner(source); killer != nil && len(h.DestroyAward) > 0 {
		victim := w.Owner(target)
		if victim == nil || victim.Free || killer.FactionID != victim.FactionID {
			e.award(killer.FactionID, h.DestroyAward)
		}
	}
	e.DestroyEntityLocal(target, source)
}

func (e *Env) award(faction int, awards map[string]int) {
	sink := e.economy()
	if sink == nil {
		return
	}
	names := make([]string, 0, len(awards))
	for name := range awards {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		sink.UpdateResource(faction, name, awards[name])
	}
}

// DestroyEntity kills id outright. Only the owning replica relays.
func (e *Env) DestroyEntity(id, source core.EntityID) {
	if e.Relay != nil {
		if e.isLocal(id) {
			e.send(core.RelayCommand{Mode: core.RelayDestroy, Source: id, Target: source})
		}
		return
	}
	e.DestroyEntityLocal(id, source)
}

// DestroyEntityLocal marks id dead now and removes it at the end of the tick.
func (e *Env) DestroyEntityLocal(id, source core.EntityID) {
	w := e.World
	if !w.Exists(id) {
		return
	}
	if h := w.Health(id); h != nil {
		if h.Dead {
			return
		}
		h.Dead = true
		h.Current = 0
		if h.KilledBy == 0 {
			h.KilledBy = source
		}
	}
	if b := w.Body(id); b != nil {
		b.Interactable = false
	}
	if sw := SwitcherOf(w, id); sw != nil {
		sw.stopAll()
	}
	if m, ok := w.Get(id, core.CompMover).(*movement.Mover); ok {
		m.Stop(true)
	}
	pos, _ := w.CommittedPosition(id)
	e.emit(core.Event{Type: core.EvtEntityDead, Source: id, Target: source, Pos: pos})
	e.Log.Debug().Uint64("entity", uint64(id)).Uint64("killer", uint64(source)).Msg("entity destroyed")
	w.Destroy(id)
}
