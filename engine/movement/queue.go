package movement

import "github.com/1siamBot/rts-combat/engine/core"

// Queue admits pending movement requests. At the start of every tick up to Budget
// waiting movers are granted one path computation, first come first served.
type Queue struct {
	Budget  int // grants per tick, <= 0 means unlimited
	waiting []core.EntityID
	granted map[core.EntityID]bool
}

func NewQueue(budget int) *Queue {
	return &Queue{Budget: budget, granted: make(map[core.EntityID]bool)}
}

// Enqueue registers a mover. Enqueuing a waiting mover keeps its place.
func (q *Queue) Enqueue(id core.EntityID) {
	if q.granted[id] {
		return
	}
	for _, w := range q.waiting {
		if w == id {
			return
		}
	}
	q.waiting = append(q.waiting, id)
}

// Cancel drops a mover's request and any unused grant.
func (q *Queue) Cancel(id core.EntityID) {
	delete(q.granted, id)
	for i, w := range q.waiting {
		if w == id {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}

// Tick hands out this tick's grants. A grant not taken during the tick it was
// handed out belongs to a mover that is gone, so it lapses.
func (q *Queue) Tick() {
	clear(q.granted)
	n := len(q.waiting)
	if q.Budget > 0 && q.Budget < n {
		n = q.Budget
	}
	for _, id := range q.waiting[:n] {
		q.granted[id] = true
	}
	q.waiting = append(q.waiting[:0], q.waiting[n:]...)
}

// Take consumes the mover's grant for this tick.
func (q *Queue) Take(id core.EntityID) bool {
	if !q.granted[id] {
		return false
	}
	delete(q.granted, id)
	return true
}

func (q *Queue) Waiting() int { return len(q.waiting) }
