package systems

import (
	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
)

// AttackJobs cancels the active attack of a unit whose movement failed.
// It implements movement.JobCanceller.
type AttackJobs struct {
	World *core.World
}

func (j AttackJobs) CancelJobs(id core.EntityID) {
	if sw := combat.SwitcherOf(j.World, id); sw != nil {
		sw.Stop()
	}
}
