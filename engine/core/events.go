package core

// Event is one outbound simulation message
type Event struct {
	Type     EventType
	Tick     uint64
	Source   EntityID
	Target   EntityID
	AttackID int
	Faction  int
	Pos      Vec
	Amount   int
	Flag     bool
	Text     string
}

type EventType uint16

const (
	EvtEnteredRange EventType = iota
	EvtTargetLocked
	EvtAttackPerformed
	EvtDamageDealt
	EvtCooldownChanged
	EvtAttackSwitch
	EvtMoveAttempt
	EvtInvalidPath
	EvtMoveStopped
	EvtEntityDead
	EvtHealthUpdated
	EvtResourceAwarded
	EvtProjectileHit
	EvtStuck
)

var eventNames = [...]string{
	EvtEnteredRange:    "entered_range",
	EvtTargetLocked:    "target_locked",
	EvtAttackPerformed: "attack_performed",
	EvtDamageDealt:     "damage_dealt",
	EvtCooldownChanged: "cooldown_changed",
	EvtAttackSwitch:    "attack_switch",
	EvtMoveAttempt:     "move_attempt",
	EvtInvalidPath:     "invalid_path",
	EvtMoveStopped:     "move_stopped",
	EvtEntityDead:      "entity_dead",
	EvtHealthUpdated:   "health_updated",
	EvtResourceAwarded: "resource_awarded",
	EvtProjectileHit:   "projectile_hit",
	EvtStuck:           "stuck",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// EventBus collects events during a tick. Nothing is delivered until Dispatch.
type EventBus struct {
	listeners map[EventType][]EventHandler
	any       []EventHandler
	queue     []Event
	tick      uint64
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// OnAny registers a handler that sees every event
func (eb *EventBus) OnAny(h EventHandler) {
	eb.any = append(eb.any, h)
}

// Emit queues an event stamped with the current tick
func (eb *EventBus) Emit(e Event) {
	e.Tick = eb.tick
	eb.queue = append(eb.queue, e)
}

// Pending returns the queued events without consuming them.
func (eb *EventBus) Pending() []Event {
	return eb.queue
}

// Dispatch processes all queued events and returns them.
// The returned slice is owned by the caller.
func (eb *EventBus) Dispatch() []Event {
	out := make([]Event, len(eb.queue))
	copy(out, eb.queue)
	eb.queue = eb.queue[:0]
	for _, e := range out {
		for _, h := range eb.any {
			h(e)
		}
		if handlers, ok := eb.listeners[e.Type]; ok {
			for _, h := range handlers {
				h(e)
			}
		}
	}
	return out
}
