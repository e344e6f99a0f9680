package systems

import (
	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
)

// CombatSystem counts the peace timer down and updates every attack set.
type CombatSystem struct {
	Factions *core.FactionManager
}

func (s *CombatSystem) Priority() int { return 20 }

func (s *CombatSystem) Update(w *core.World, dt float64) {
	if s.Factions != nil {
		s.Factions.Tick(dt)
	}
	for _, id := range w.Query(core.CompAttackSet) {
		if w.Dead(id) {
			continue
		}
		w.Get(id, core.CompAttackSet).(*combat.Switcher).Update(dt)
	}
}
