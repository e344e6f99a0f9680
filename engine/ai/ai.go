package ai

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
	"github.com/1siamBot/rts-combat/engine/systems"
)

// Difficulty controls how often a commander thinks and attacks
type Difficulty int

const (
	DiffEasy Difficulty = iota
	DiffMedium
	DiffHard
)

var difficultyNames = map[string]Difficulty{
	"easy":   DiffEasy,
	"medium": DiffMedium,
	"hard":   DiffHard,
}

// ParseDifficulty maps a config name to a difficulty.
func ParseDifficulty(name string) (Difficulty, error) {
	d, ok := difficultyNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown ai difficulty %q", name)
	}
	return d, nil
}

// threatRadius is how far around a candidate target enemy fire is counted.
const threatRadius = 8

// Commander sends the idle armed units of one faction at the enemy in waves
type Commander struct {
	Faction    int
	Difficulty Difficulty
	MinWave    int // idle units needed before a wave leaves

	env           *combat.Env
	thinkTimer    float64
	thinkInterval float64
	waveTimer     float64
	waveInterval  float64
	waves         int
	log           zerolog.Logger
}

func NewCommander(faction int, diff Difficulty, env *combat.Env, log zerolog.Logger) *Commander {
	think, wave := 5.0, 45.0
	switch diff {
	case DiffEasy:
		think, wave = 8, 60
	case DiffHard:
		think, wave = 3, 30
	}
	return &Commander{
		Faction:       faction,
		Difficulty:    diff,
		MinWave:       2,
		env:           env,
		thinkInterval: think,
		waveInterval:  wave,
		waveTimer:     wave,
		log:           log.With().Str("component", "ai").Int("faction", faction).Logger(),
	}
}

// Waves is the number of attack waves launched so far.
func (c *Commander) Waves() int { return c.waves }

// System runs all commanders after combat has settled for the tick
type System struct {
	Commanders []*Commander
}

func (s *System) Priority() int { return 50 }

func (s *System) Update(w *core.World, dt float64) {
	for _, c := range s.Commanders {
		if c.env.Factions.InPeaceTime() {
			continue
		}
		c.waveTimer += dt
		c.thinkTimer += dt
		if c.thinkTimer >= c.thinkInterval {
			c.thinkTimer = 0
			c.Think(w)
		}
	}
}

// Think launches a wave when the timer is up and enough units stand idle.
func (c *Commander) Think(w *core.World) {
	if c.waveTimer < c.waveInterval {
		return
	}
	idle := c.idleUnits(w)
	if len(idle) < c.MinWave {
		return
	}
	target, ok := c.pickTarget(w, idle)
	if !ok {
		return
	}
	c.waveTimer = 0
	c.waves++

	at, _ := w.CommittedPosition(target)
	sent := 0
	for _, id := range idle {
		code := combat.SwitcherOf(w, id).SetTarget(target, at)
		if code != core.CodeNone {
			code = systems.IssueMove(c.env, id, at, false)
		}
		if code == core.CodeNone {
			sent++
		}
	}
	c.log.Info().Int("wave", c.waves).Int("units", sent).Uint64("target", uint64(target)).Msg("attack wave launched")
}

// idleUnits lists armed movers of the faction with nothing to do.
func (c *Commander) idleUnits(w *core.World) []core.EntityID {
	var out []core.EntityID
	for _, id := range w.Query(core.CompOwner, core.CompMover, core.CompAttackSet) {
		if w.Owner(id).FactionID != c.Faction || w.Dead(id) {
			continue
		}
		if sw := combat.SwitcherOf(w, id); sw.Active().HasTarget() || sw.Active().TerrainAttack() {
			continue
		}
		if m, ok := w.Get(id, core.CompMover).(*movement.Mover); ok && m.IsMoving() {
			continue
		}
		out = append(out, id)
	}
	return out
}

// pickTarget prefers the least defended enemy, then the one closest to the
// group. Ties keep world order.
func (c *Commander) pickTarget(w *core.World, group []core.EntityID) (core.EntityID, bool) {
	var center core.Vec
	for _, id := range group {
		p, _ := w.CommittedPosition(id)
		center = center.Add(p)
	}
	center = center.Scale(1 / float64(len(group)))

	var best core.EntityID
	bestThreat, bestDist := math.MaxFloat64, math.MaxFloat64
	for _, id := range w.Query(core.CompPosition, core.CompOwner, core.CompHealth) {
		if w.Dead(id) || !c.hostile(w.Owner(id)) {
			continue
		}
		if h := w.Health(id); h.Unattackable {
			continue
		}
		p, _ := w.CommittedPosition(id)
		threat := ThreatAssessment(w, c.env.Factions, c.Faction, p, threatRadius)
		d := center.Dist(p)
		if threat < bestThreat || (threat == bestThreat && d < bestDist) {
			best, bestThreat, bestDist = id, threat, d
		}
	}
	return best, best != 0
}

func (c *Commander) hostile(o *core.Owner) bool {
	if o.Free {
		return false
	}
	return o.FactionID != c.Faction && !c.env.Factions.AreAllies(c.Faction, o.FactionID)
}

// ThreatAssessment returns the weighted damage the enemies of faction can bring
// to bear around a position
func ThreatAssessment(w *core.World, fm *core.FactionManager, faction int, at core.Vec, radius float64) float64 {
	threat := 0.0
	for _, id := range w.Query(core.CompPosition, core.CompAttackSet, core.CompOwner) {
		own := w.Owner(id)
		if own.FactionID == faction || fm.AreAllies(faction, own.FactionID) || w.Dead(id) {
			continue
		}
		p, _ := w.CommittedPosition(id)
		d := p.Dist(at)
		if d <= radius {
			dmg := combat.SwitcherOf(w, id).Active().Spec().Damage.Unit
			threat += float64(dmg) * (1.0 - d/radius)
		}
	}
	return threat
}
