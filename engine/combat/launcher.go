package combat

import (
	"math"

	"github.com/1siamBot/rts-combat/engine/core"
)

var defaultSources = []LaunchSource{{}}

// launcher releases the attack objects of an indirect attack, one cycle per attack.
type launcher struct {
	spec   LauncherSpec
	index  int
	timer  float64
	active bool
}

func (l *launcher) sources() []LaunchSource {
	if len(l.spec.Sources) == 0 {
		return defaultSources
	}
	return l.spec.Sources
}

func (l *launcher) activate() {
	l.active = true
	l.index = 0
	l.timer = l.sources()[0].Delay
}

// update launches every source that is due and reports whether anything left this
// tick. Completing the cycle completes the attack.
func (l *launcher) update(a *Attacker, dt float64) bool {
	if !l.active {
		return false
	}
	if l.timer > 0 {
		l.timer = countdown(l.timer, dt)
		if l.timer > 0 {
			return false
		}
	}
	srcs := l.sources()
	launched := false
	for l.index < len(srcs) && l.timer <= 0 {
		a.launch(srcs[l.index])
		launched = true
		l.index++
		if l.spec.InOrder && l.index < len(srcs) {
			l.timer = srcs[l.index].Delay
		}
	}
	if l.index >= len(srcs) {
		l.index = 0
		l.timer = srcs[0].Delay
		a.OnAttackComplete()
	}
	return launched
}

// launch spawns one homing attack object from src.
func (a *Attacker) launch(src LaunchSource) {
	w := a.env.World
	pos := w.Position(a.id)
	if pos == nil {
		return
	}
	sin, cos := math.Sincos(pos.Facing)
	start := pos.Vec().Add(core.Vec{
		X: src.Offset.X*cos - src.Offset.Y*sin,
		Y: src.Offset.X*sin + src.Offset.Y*cos,
	})
	tp := a.TargetPosition()

	pid := w.Spawn()
	w.Attach(pid, &core.Position{X: start.X, Y: start.Y, Z: pos.Z, Facing: start.AngleTo(tp)})
	w.Attach(pid, &core.Projectile{
		SourceID:      a.id,
		SourceFaction: a.faction(),
		AttackID:      a.slot,
		TargetID:      a.target,
		TargetX:       tp.X,
		TargetY:       tp.Y,
		Speed:         a.spec.Launcher.Speed,
		Damage:        a.damage(),
		Splash:        a.spec.Damage.Splash,
		DmgType:       a.spec.Damage.Type,
	})
	a.env.emit(core.Event{Type: core.EvtAttackPerformed, Source: a.id, Target: a.target, AttackID: a.slot, Pos: tp})
	a.env.Metrics.attack(a.spec.Code, false)
}

// ResolveHit lands an attack object at `at` and credits the attacker that launched it.
func (e *Env) ResolveHit(p *core.Projectile, at core.Vec) int {
	dealt := e.Strike(Hit{
		Source:  p.SourceID,
		Faction: p.SourceFaction,
		Target:  p.TargetID,
		At:      at,
		Damage:  p.Damage,
		Type:    p.DmgType,
		Splash:  p.Splash,
	})
	if sw := SwitcherOf(e.World, p.SourceID); sw != nil {
		if a := sw.Attack(p.AttackID); a != nil {
			a.AddDamageDealt(dealt)
		}
	}
	e.emit(core.Event{Type: core.EvtProjectileHit, Source: p.SourceID, Target: p.TargetID, AttackID: p.AttackID, Pos: at, Amount: dealt})
	return dealt
}
