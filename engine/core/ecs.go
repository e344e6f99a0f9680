package core

// EntityID is a handle to a simulated entity. Zero is never issued and means "no entity".
type EntityID uint64

// Component is a marker interface for all components
type Component interface {
	Type() ComponentType
}

// ComponentType identifies the type of component
type ComponentType uint32

const (
	CompPosition ComponentType = iota
	CompHealth
	CompOwner
	CompBody
	CompArmor
	CompProjectile
	CompMover
	CompAttackSet
	CompTransport
	CompPortal
	CompMax
)

// World holds all entities and their components.
// Entities are iterated in spawn order so every replica runs systems identically.
type World struct {
	entities  map[EntityID]map[ComponentType]Component
	order     []EntityID
	nextID    EntityID
	systems   []System
	toRemove  []EntityID
	committed map[EntityID]Vec
	Events    *EventBus
	TickCount uint64
	TickRate  float64 // ticks per second (for deterministic lockstep)
}

// System processes entities each tick
type System interface {
	Update(w *World, dt float64)
	Priority() int
}

// NewWorld creates a new ECS world
func NewWorld(tickRate float64) *World {
	return &World{
		entities:  make(map[EntityID]map[ComponentType]Component),
		committed: make(map[EntityID]Vec),
		Events:    NewEventBus(),
		TickRate:  tickRate,
	}
}

// Spawn creates a new entity and returns its ID
func (w *World) Spawn() EntityID {
	w.nextID++
	id := w.nextID
	w.entities[id] = make(map[ComponentType]Component)
	w.order = append(w.order, id)
	return id
}

// Attach adds a component to an entity
func (w *World) Attach(id EntityID, c Component) {
	if comps, ok := w.entities[id]; ok {
		comps[c.Type()] = c
	}
}

// Detach removes a component from an entity
func (w *World) Detach(id EntityID, ct ComponentType) {
	if comps, ok := w.entities[id]; ok {
		delete(comps, ct)
	}
}

// Get returns a component for an entity, or nil
func (w *World) Get(id EntityID, ct ComponentType) Component {
	if comps, ok := w.entities[id]; ok {
		return comps[ct]
	}
	return nil
}

// Has checks if an entity has a component
func (w *World) Has(id EntityID, ct ComponentType) bool {
	if comps, ok := w.entities[id]; ok {
		_, exists := comps[ct]
		return exists
	}
	return false
}

// Exists reports whether the handle still resolves to an entity.
func (w *World) Exists(id EntityID) bool {
	_, ok := w.entities[id]
	return ok
}

// Destroy marks an entity for removal at the end of the current tick
func (w *World) Destroy(id EntityID) {
	for _, r := range w.toRemove {
		if r == id {
			return
		}
	}
	w.toRemove = append(w.toRemove, id)
}

// Query returns all entity IDs that have ALL specified component types, in spawn order
func (w *World) Query(types ...ComponentType) []EntityID {
	var result []EntityID
	for _, id := range w.order {
		comps, ok := w.entities[id]
		if !ok {
			continue
		}
		match := true
		for _, t := range types {
			if _, ok := comps[t]; !ok {
				match = false
				break
			}
		}
		if match {
			result = append(result, id)
		}
	}
	return result
}

// AddSystem registers a system
func (w *World) AddSystem(s System) {
	w.systems = append(w.systems, s)
	// Sort by priority (simple insertion)
	for i := len(w.systems) - 1; i > 0; i-- {
		if w.systems[i].Priority() < w.systems[i-1].Priority() {
			w.systems[i], w.systems[i-1] = w.systems[i-1], w.systems[i]
		}
	}
}

// Tick runs all systems once, then commits positions and removes destroyed entities.
func (w *World) Tick(dt float64) {
	w.Events.tick = w.TickCount
	for _, s := range w.systems {
		s.Update(w, dt)
	}
	w.Commit()
	if len(w.toRemove) > 0 {
		for _, id := range w.toRemove {
			delete(w.entities, id)
			delete(w.committed, id)
		}
		w.toRemove = w.toRemove[:0]
		alive := w.order[:0]
		for _, id := range w.order {
			if _, ok := w.entities[id]; ok {
				alive = append(alive, id)
			}
		}
		w.order = alive
	}
	w.TickCount++
}

// Commit snapshots every entity position. Reads of other entities during a tick
// go through CommittedPosition so update order does not leak into results.
func (w *World) Commit() {
	for _, id := range w.order {
		if p := w.Position(id); p != nil {
			w.committed[id] = p.Vec()
		}
	}
}

// CommittedPosition returns the position recorded at the end of the previous tick.
// Entities spawned during this tick fall back to their live position.
func (w *World) CommittedPosition(id EntityID) (Vec, bool) {
	if v, ok := w.committed[id]; ok {
		return v, true
	}
	if p := w.Position(id); p != nil {
		return p.Vec(), true
	}
	return Vec{}, false
}

// EntityCount returns the number of alive entities
func (w *World) EntityCount() int {
	return len(w.entities)
}

func (w *World) Position(id EntityID) *Position {
	p, _ := w.Get(id, CompPosition).(*Position)
	return p
}

func (w *World) Health(id EntityID) *Health {
	h, _ := w.Get(id, CompHealth).(*Health)
	return h
}

func (w *World) Owner(id EntityID) *Owner {
	o, _ := w.Get(id, CompOwner).(*Owner)
	return o
}

func (w *World) Body(id EntityID) *Body {
	b, _ := w.Get(id, CompBody).(*Body)
	return b
}

// Dead reports whether the entity is gone or its health reached zero.
func (w *World) Dead(id EntityID) bool {
	if !w.Exists(id) {
		return true
	}
	h := w.Health(id)
	return h != nil && h.Dead
}
