package combat

import (
	"github.com/1siamBot/rts-combat/engine/core"
)

// State is the coarse phase of an attacker, for observers and tests.
type State uint8

const (
	StateIdle State = iota
	StateSearching
	StateApproaching
	StateAiming
	StateDelaying
	StateFiring
	StateCooldown
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateSearching:   "searching",
	StateApproaching: "approaching",
	StateAiming:      "aiming",
	StateDelaying:    "delaying",
	StateFiring:      "firing",
	StateCooldown:    "cooldown",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// DefendArea replaces the attacker's own position and search range as the search
// origin, and keeps it from giving up on targets that run away.
type DefendArea struct {
	Center core.Vec
	Radius float64
}

// Attacker is one attack type of an entity: it searches, validates and engages
// targets and drives the reload, delay and cooldown timers.
type Attacker struct {
	id     core.EntityID
	slot   int
	spec   Spec
	env    *Env
	cap    Capability
	rng    RangeSpec
	filter *Filter
	set    *Switcher

	weapon   weapon
	launcher launcher

	active bool
	locked bool
	state  State

	target        core.EntityID
	lastTargetPos core.Vec
	terrainAttack bool
	defend        *DefendArea

	searchTimer    float64
	reloadTimer    float64
	reloadDuration float64
	delayTimer     float64
	cooldownTimer  float64
	cooldownActive bool
	triggered      bool
	wasInRange     bool

	initialDistance float64
	dealtDamage     int
}

// NewAttacker builds an attack for entity id. The reload duration is divided by
// timeScale once, here. It fails only when the engage filter does not compile.
func NewAttacker(id core.EntityID, spec Spec, env *Env, cap Capability, timeScale float64) (*Attacker, error) {
	filter, err := CompileFilter(spec.Filter)
	if err != nil {
		return nil, err
	}
	if timeScale <= 0 {
		timeScale = 1
	}
	a := &Attacker{
		id:             id,
		spec:           spec,
		env:            env,
		cap:            cap,
		rng:            env.Range(spec.RangeType),
		filter:         filter,
		active:         true,
		reloadDuration: spec.Reload / timeScale,
		weapon:         weapon{spec: spec.Weapon, visible: true},
		launcher:       launcher{spec: spec.Launcher},
	}
	if pos := env.World.Position(id); pos != nil {
		a.weapon.facing = pos.Facing
	}
	a.resetDelay()
	return a, nil
}

func (a *Attacker) ID() int                      { return a.slot }
func (a *Attacker) Entity() core.EntityID        { return a.id }
func (a *Attacker) Spec() Spec                   { return a.spec }
func (a *Attacker) Code() string                 { return a.spec.Code }
func (a *Attacker) IsBasic() bool                { return a.spec.IsBasic }
func (a *Attacker) IsActive() bool               { return a.active }
func (a *Attacker) IsLocked() bool               { return a.locked }
func (a *Attacker) State() State                 { return a.state }
func (a *Attacker) Target() core.EntityID        { return a.target }
func (a *Attacker) HasTarget() bool              { return a.target != 0 }
func (a *Attacker) TerrainAttack() bool          { return a.terrainAttack }
func (a *Attacker) Triggered() bool              { return a.triggered }
func (a *Attacker) WasInRange() bool             { return a.wasInRange }
func (a *Attacker) CooldownActive() bool         { return a.cooldownActive }
func (a *Attacker) CooldownTimer() float64       { return a.cooldownTimer }
func (a *Attacker) ReloadTimer() float64         { return a.reloadTimer }
func (a *Attacker) DelayTimer() float64          { return a.delayTimer }
func (a *Attacker) SearchTimer() float64         { return a.searchTimer }
func (a *Attacker) DealtDamage() int             { return a.dealtDamage }
func (a *Attacker) WeaponFacing() float64        { return a.weapon.facing }
func (a *Attacker) WeaponVisible() bool          { return a.weapon.visible }
func (a *Attacker) Range() RangeSpec             { return a.rng }
func (a *Attacker) LastTargetPosition() core.Vec { return a.lastTargetPos }

func (a *Attacker) AddDamageDealt(v int) { a.dealtDamage += v }

// SetDefendArea pins target search to an area. nil restores the default.
func (a *Attacker) SetDefendArea(area *DefendArea) { a.defend = area }

// TriggerAttack releases an attack that waits for an external trigger.
func (a *Attacker) TriggerAttack() { a.triggered = true }

// TargetPosition is the live target position from the committed snapshot, or the
// last known one for terrain attacks and vanished targets.
func (a *Attacker) TargetPosition() core.Vec {
	if a.target != 0 {
		if p, ok := a.env.World.CommittedPosition(a.target); ok {
			return p
		}
	}
	return a.lastTargetPos
}

// timerEpsilon absorbs float drift so a countdown of n ticks runs out on tick n.
const timerEpsilon = 1e-9

// countdown subtracts dt and snaps the remainder to zero once it is within drift.
func countdown(t, dt float64) float64 {
	t -= dt
	if t <= timerEpsilon {
		return 0
	}
	return t
}

// engaged is true while there is a target or an armed terrain attack.
func (a *Attacker) engaged() bool { return a.target != 0 || a.terrainAttack }

// CanEngage reports whether the attack may act this tick at all.
func (a *Attacker) CanEngage() bool {
	return !a.env.World.Dead(a.id) && a.cooldownTimer <= 0 && a.cap.CanEngage(a)
}

// Update advances the timers, then searches or engages.
func (a *Attacker) Update(dt float64) {
	if a.cooldownActive {
		a.cooldownTimer = countdown(a.cooldownTimer, dt)
		if a.cooldownTimer <= 0 {
			a.cooldownActive = false
			a.emit(core.EvtCooldownChanged, false)
			if a.state == StateCooldown {
				a.state = StateIdle
			}
		}
	}
	if a.spec.UseReload && a.reloadTimer > 0 {
		a.reloadTimer = countdown(a.reloadTimer, dt)
	}

	if !a.active || a.locked || !a.CanEngage() {
		return
	}

	if !a.engaged() {
		a.onNoTargetUpdate(dt)
		return
	}
	if a.target != 0 && a.env.World.Dead(a.target) {
		a.Stop()
		return
	}
	a.cap.OnTargetUpdate(a, dt)
}

func (a *Attacker) onNoTargetUpdate(dt float64) {
	if pos := a.env.World.Position(a.id); pos != nil {
		a.weapon.idle(pos.Facing, dt)
	}
	if a.env.Factions.InPeaceTime() {
		return
	}
	if !a.spec.EngageInRange || a.env.remote(a.id) || !a.cap.IsIdle(a) {
		return
	}
	if a.searchTimer > 0 {
		a.searchTimer = countdown(a.searchTimer, dt)
		return
	}
	a.state = StateSearching
	a.searchTarget()
	a.searchTimer = a.spec.SearchReload
}

// searchTarget picks the nearest engageable entity. Ties keep the first one in
// world order. Own and allied factions are skipped unless the attack engages friendlies.
func (a *Attacker) searchTarget() {
	w := a.env.World
	center, size := a.position(), a.spec.SearchRange
	if a.defend != nil {
		center, size = a.defend.Center, a.defend.Radius
	}
	own := w.Owner(a.id)
	anyone := a.spec.EngageFriendly || own == nil || own.Free

	var best core.EntityID
	var bestPos core.Vec
	bestDist := 0.0
	for _, id := range w.Query(core.CompPosition, core.CompHealth, core.CompBody) {
		if id == a.id || w.Dead(id) || !w.Body(id).Interactable {
			continue
		}
		if !anyone {
			if o := w.Owner(id); o != nil && !o.Free && (o.FactionID == own.FactionID || a.env.Factions.AreAllies(own.FactionID, o.FactionID)) {
				continue
			}
		}
		p, _ := w.CommittedPosition(id)
		d := center.Dist(p)
		if d > size || (best != 0 && d >= bestDist) {
			continue
		}
		if a.CanEngageTarget(id) != core.CodeNone {
			continue
		}
		best, bestPos, bestDist = id, p, d
	}
	if best != 0 {
		a.SetTarget(best, bestPos)
	}
}

// CanEngageTarget validates target against the attack's rules. A zero target asks
// about a terrain attack.
func (a *Attacker) CanEngageTarget(target core.EntityID) core.Code {
	w := a.env.World
	if a.env.Factions.InPeaceTime() {
		return core.CodePeaceTime
	}
	if target == 0 {
		if a.spec.RequireTarget {
			return core.CodeTargetRequired
		}
		return core.CodeNone
	}
	if !a.spec.EngageFriendly && sameFaction(w.Owner(a.id), w.Owner(target)) {
		return core.CodeSameFactionTarget
	}
	if h := w.Health(target); h == nil || h.Unattackable {
		return core.CodeTargetUnattackable
	}
	if a.spec.EngageAllTypes {
		return a.matchFilter(target)
	}
	b := w.Body(target)
	if b == nil {
		return core.CodeTargetNotAllowed
	}
	if b.Kind == core.KindBuilding && !a.spec.EngageBuildings {
		return core.CodeTargetNotAllowed
	}
	if b.Kind == core.KindUnit && (!a.spec.EngageUnits || (b.Flying && !a.spec.EngageFlying)) {
		return core.CodeTargetNotAllowed
	}
	if a.inCodeList(b) != a.spec.EngageInList {
		return core.CodeTargetNotAllowed
	}
	return a.matchFilter(target)
}

func (a *Attacker) inCodeList(b *core.Body) bool {
	for _, c := range a.spec.CodeList {
		if c == b.Code || (b.Category != "" && c == b.Category) {
			return true
		}
	}
	return false
}

func (a *Attacker) matchFilter(target core.EntityID) core.Code {
	if a.filter == nil {
		return core.CodeNone
	}
	ok, err := a.filter.Match(targetEnv(a.env.World, target, a.position()))
	if err != nil {
		a.env.Log.Warn().Err(err).Uint64("entity", uint64(a.id)).Msg("engage filter failed")
	}
	if !ok {
		return core.CodeTargetNotAllowed
	}
	return core.CodeNone
}

func sameFaction(a, b *core.Owner) bool {
	if a == nil || b == nil || a.Free || b.Free {
		return false
	}
	return a.FactionID == b.FactionID
}

// SetTarget validates and assigns a target (zero for a terrain attack at pos).
// Rejections leave the attacker untouched. With a relay, a locally owned attacker
// sends the assignment and applies it when it comes back.
func (a *Attacker) SetTarget(target core.EntityID, pos core.Vec) core.Code {
	if c := a.CanEngageTarget(target); c != core.CodeNone {
		return c
	}
	if target != 0 && a.env.World.Dead(target) {
		return core.CodeTargetDead
	}
	if c := a.cap.CheckTarget(a, target, pos); c != core.CodeNone {
		return c
	}
	if a.env.Relay != nil {
		if a.env.isLocal(a.id) {
			a.env.send(core.RelayCommand{Mode: core.RelaySetTarget, Source: a.id, Target: target, AttackID: a.slot, Pos: pos})
		}
		return core.CodeNone
	}
	a.SetTargetLocal(target, pos)
	return core.CodeNone
}

// SetTargetLocal applies an already validated assignment.
func (a *Attacker) SetTargetLocal(target core.EntityID, pos core.Vec) {
	a.lastTargetPos = pos
	if target != 0 {
		a.target = target
	} else if !a.spec.RequireTarget {
		a.terrainAttack = true
	}
	if !a.spec.Direct {
		a.launcher.activate()
	}
	a.wasInRange = false
	if a.spec.ReloadDealtDamage {
		a.dealtDamage = 0
	}
	a.state = StateApproaching
	a.env.emit(core.Event{Type: core.EvtTargetLocked, Source: a.id, Target: a.target, AttackID: a.slot, Pos: pos})
	a.env.Log.Debug().Uint64("entity", uint64(a.id)).Uint64("target", uint64(target)).Str("attack", a.spec.Code).Msg("target locked")
	a.resetDelay()
	a.cap.OnTargetAssigned(a)
}

// engage runs once the capability has decided the attack may proceed this tick.
func (a *Attacker) engage(dt float64) {
	from, tp := a.position(), a.TargetPosition()
	if !a.wasInRange {
		a.wasInRange = true
		a.initialDistance = from.Dist(tp)
		a.env.emit(core.Event{Type: core.EvtEnteredRange, Source: a.id, Target: a.target, AttackID: a.slot, Pos: tp})
	}
	a.weapon.aim(from, tp, dt)

	a.state = StateAiming
	if a.reloadTimer > 0 || !a.inSight(from, tp) {
		return
	}
	if a.delayTimer > 0 {
		a.delayTimer = countdown(a.delayTimer, dt)
		a.state = StateDelaying
		return
	}
	if !a.triggered {
		a.state = StateDelaying
		return
	}

	a.state = StateFiring
	if a.spec.Direct {
		a.strike(tp)
		return
	}
	if a.launcher.update(a, dt) {
		a.env.play(a.spec.AttackSound, from)
	}
}

func (a *Attacker) strike(tp core.Vec) {
	a.env.emit(core.Event{Type: core.EvtAttackPerformed, Source: a.id, Target: a.target, AttackID: a.slot, Pos: tp, Flag: true})
	a.env.Metrics.attack(a.spec.Code, true)
	a.dealtDamage += a.env.Strike(Hit{
		Source:  a.id,
		Faction: a.faction(),
		Target:  a.target,
		At:      tp,
		Damage:  a.damage(),
		Type:    a.spec.Damage.Type,
		Splash:  a.spec.Damage.Splash,
	})
	a.env.play(a.spec.AttackSound, a.position())
	a.OnAttackComplete()
}

// OnAttackComplete re-arms the attack after a strike or a finished launch cycle.
func (a *Attacker) OnAttackComplete() {
	a.terrainAttack = false
	if a.spec.UseReload {
		a.reloadTimer = a.reloadDuration
	}
	a.startCooldown()
	if !a.spec.IsBasic && a.set != nil && a.set.RevertToBasic {
		a.set.EnableAttack(a.set.BasicID())
	}
	if a.spec.EngageOnce {
		a.Stop()
	}
	a.resetDelay()
}

func (a *Attacker) startCooldown() {
	if !a.spec.CooldownEnabled {
		return
	}
	a.cooldownTimer = a.spec.Cooldown
	a.cooldownActive = true
	a.state = StateCooldown
	a.emit(core.EvtCooldownChanged, true)
}

// Stop drops the target and returns to idle. The next search waits a full reload.
// A running cooldown keeps counting; CooldownActive reports it.
func (a *Attacker) Stop() {
	a.terrainAttack = false
	a.resetDelay()
	a.target = 0
	a.searchTimer = a.spec.SearchReload
	a.state = StateIdle
}

// Reset is applied to an attack that is being switched away from.
func (a *Attacker) Reset() {
	if a.spec.UseReload {
		a.reloadTimer = a.reloadDuration
	}
	a.resetDelay()
	a.target = 0
	a.wasInRange = false
}

func (a *Attacker) resetDelay() {
	a.delayTimer = a.spec.Delay
	a.triggered = !a.spec.DelayTrigger
}

func (a *Attacker) inSight(from, tp core.Vec) bool {
	facing := 0.0
	if pos := a.env.World.Position(a.id); pos != nil {
		facing = pos.Facing
	}
	return a.spec.Sight.inSight(from, tp, facing, a.weapon.facing)
}

func (a *Attacker) damage() int {
	return a.spec.Damage.damageFor(a.env.World.Body(a.target))
}

func (a *Attacker) targetBody() *core.Body {
	if a.target == 0 {
		return nil
	}
	return a.env.World.Body(a.target)
}

func (a *Attacker) faction() int {
	if o := a.env.World.Owner(a.id); o != nil {
		return o.FactionID
	}
	return -1
}

func (a *Attacker) position() core.Vec {
	if p := a.env.World.Position(a.id); p != nil {
		return p.Vec()
	}
	return core.Vec{}
}

func (a *Attacker) emit(t core.EventType, flag bool) {
	a.env.emit(core.Event{Type: t, Source: a.id, Target: a.target, AttackID: a.slot, Flag: flag})
}
