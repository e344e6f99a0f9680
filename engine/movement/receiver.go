package movement

import (
	"math"

	"github.com/1siamBot/rts-combat/engine/core"
)

// Receiver is an entity a mover can walk into: it exposes a possibly moving
// interaction point and takes the unit over on arrival.
type Receiver interface {
	InteractionPoint(w *core.World, self core.EntityID) core.Vec
	CanReceive(w *core.World, self, unit core.EntityID) bool
	Receive(w *core.World, self, unit core.EntityID) bool
}

func receiverOf(w *core.World, id core.EntityID) Receiver {
	if t, ok := w.Get(id, core.CompTransport).(*Transport); ok {
		return t
	}
	if p, ok := w.Get(id, core.CompPortal).(*Portal); ok {
		return p
	}
	return nil
}

// Transport carries up to Capacity ground units. Passengers are hidden from
// targeting until unloaded.
type Transport struct {
	Capacity   int
	Passengers []core.EntityID
}

func (t *Transport) Type() core.ComponentType { return core.CompTransport }

func (t *Transport) InteractionPoint(w *core.World, self core.EntityID) core.Vec {
	v, _ := w.CommittedPosition(self)
	return v
}

func (t *Transport) CanReceive(w *core.World, self, unit core.EntityID) bool {
	if len(t.Passengers) >= t.Capacity || unit == self {
		return false
	}
	b := w.Body(unit)
	return b == nil || (b.Kind == core.KindUnit && !b.Flying)
}

func (t *Transport) Receive(w *core.World, self, unit core.EntityID) bool {
	if !t.CanReceive(w, self, unit) {
		return false
	}
	t.Passengers = append(t.Passengers, unit)
	if b := w.Body(unit); b != nil {
		b.Interactable = false
	}
	t.Carry(w, self)
	return true
}

// Carry keeps passengers on top of the transport.
func (t *Transport) Carry(w *core.World, self core.EntityID) {
	pos := w.Position(self)
	if pos == nil {
		return
	}
	alive := t.Passengers[:0]
	for _, id := range t.Passengers {
		if w.Dead(id) {
			continue
		}
		if p := w.Position(id); p != nil {
			p.X, p.Y, p.Z = pos.X, pos.Y, pos.Z
		}
		alive = append(alive, id)
	}
	t.Passengers = alive
}

// Unload releases every passenger on a ring around at.
func (t *Transport) Unload(w *core.World, at core.Vec) []core.EntityID {
	out := t.Passengers
	t.Passengers = nil
	for i, id := range out {
		angle := 2 * math.Pi * float64(i) / float64(len(out))
		if p := w.Position(id); p != nil {
			p.Set(at.Add(core.V(math.Cos(angle), math.Sin(angle)).Scale(0.75)))
		}
		if b := w.Body(id); b != nil {
			b.Interactable = true
		}
	}
	return out
}

// Portal moves an arriving unit to Exit.
type Portal struct {
	Exit core.Vec
}

func (p *Portal) Type() core.ComponentType { return core.CompPortal }

func (p *Portal) InteractionPoint(w *core.World, self core.EntityID) core.Vec {
	v, _ := w.CommittedPosition(self)
	return v
}

func (p *Portal) CanReceive(w *core.World, self, unit core.EntityID) bool {
	return unit != self
}

func (p *Portal) Receive(w *core.World, self, unit core.EntityID) bool {
	pos := w.Position(unit)
	if pos == nil {
		return false
	}
	pos.Set(p.Exit)
	return true
}
