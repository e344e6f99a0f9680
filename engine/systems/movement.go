package systems

import (
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
)

// MovementSystem grants path admissions, advances every mover and keeps
// passengers riding their transports.
type MovementSystem struct {
	Queue *movement.Queue
}

func (s *MovementSystem) Priority() int { return 10 }

func (s *MovementSystem) Update(w *core.World, dt float64) {
	if s.Queue != nil {
		s.Queue.Tick()
	}
	for _, id := range w.Query(core.CompPosition, core.CompMover) {
		m := w.Get(id, core.CompMover).(*movement.Mover)
		m.Update(dt)
	}
	for _, id := range w.Query(core.CompPosition, core.CompTransport) {
		t := w.Get(id, core.CompTransport).(*movement.Transport)
		t.Carry(w, id)
	}
}
