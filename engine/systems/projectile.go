package systems

import (
	"math"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
)

// hitRadius is how close an attack object must get to land.
const hitRadius = 0.3

// ProjectileSystem moves attack objects and handles impact
type ProjectileSystem struct {
	Combat *combat.Env
}

func (s *ProjectileSystem) Priority() int { return 25 }

func (s *ProjectileSystem) Update(w *core.World, dt float64) {
	ids := w.Query(core.CompPosition, core.CompProjectile)
	for _, id := range ids {
		pos := w.Position(id)
		proj := w.Get(id, core.CompProjectile).(*core.Projectile)

		// Home on the target while it lives
		if proj.TargetID != 0 && !w.Dead(proj.TargetID) {
			if tp, ok := w.CommittedPosition(proj.TargetID); ok {
				proj.TargetX, proj.TargetY = tp.X, tp.Y
			}
		}

		dx := proj.TargetX - pos.X
		dy := proj.TargetY - pos.Y
		dist := math.Sqrt(dx*dx + dy*dy)

		if dist <= hitRadius {
			s.Combat.ResolveHit(proj, core.V(proj.TargetX, proj.TargetY))
			w.Destroy(id)
			continue
		}

		// Move toward target
		step := proj.Speed * dt
		if step >= dist {
			pos.X, pos.Y = proj.TargetX, proj.TargetY
		} else {
			pos.X += dx / dist * step
			pos.Y += dy / dist * step
		}
		pos.Facing = math.Atan2(dy, dx)
	}
}
