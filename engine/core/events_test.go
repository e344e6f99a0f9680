package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusQueuesUntilDispatch(t *testing.T) {
	w := NewWorld(20)
	var seen []EventType
	var all int
	w.Events.On(EvtTargetLocked, func(e Event) { seen = append(seen, e.Type) })
	w.Events.OnAny(func(e Event) { all++ })

	w.Events.Emit(Event{Type: EvtTargetLocked, Source: 1})
	w.Events.Emit(Event{Type: EvtDamageDealt, Source: 1})
	assert.Empty(t, seen)
	assert.Len(t, w.Events.Pending(), 2)

	out := w.Events.Dispatch()
	assert.Len(t, out, 2)
	assert.Equal(t, []EventType{EvtTargetLocked}, seen)
	assert.Equal(t, 2, all)
	assert.Empty(t, w.Events.Pending())
	assert.Equal(t, "damage_dealt", out[1].Type.String())
}

func TestEventsCarryTheirTick(t *testing.T) {
	w := NewWorld(20)
	w.AddSystem(emitSystem{})
	w.Tick(0.05)
	w.Tick(0.05)
	out := w.Events.Dispatch()
	if assert.Len(t, out, 2) {
		assert.EqualValues(t, 0, out[0].Tick)
		assert.EqualValues(t, 1, out[1].Tick)
	}
}

type emitSystem struct{}

func (emitSystem) Update(w *World, dt float64) { w.Events.Emit(Event{Type: EvtMoveStopped}) }
func (emitSystem) Priority() int               { return 0 }

func TestCodesAreErrors(t *testing.T) {
	assert.NoError(t, CodeNone.Err())
	assert.ErrorIs(t, CodeTargetDead.Err(), CodeTargetDead)
	assert.EqualError(t, CodeAttackLocked, "attack locked")
}

func TestFactionResourcesAndPeace(t *testing.T) {
	fm := NewFactionManager()
	fm.Events = NewEventBus()
	fm.AddFaction(&Faction{ID: 1, TeamID: 1})
	fm.AddFaction(&Faction{ID: 2, TeamID: 1})
	fm.AddFaction(&Faction{ID: 3, TeamID: 2})

	assert.True(t, fm.AreAllies(1, 2))
	assert.False(t, fm.AreAllies(1, 3))

	fm.UpdateResource(3, "gold", 50)
	fm.UpdateResource(9, "gold", 50)
	assert.Equal(t, 50, fm.GetFaction(3).Resources["gold"])
	assert.Len(t, fm.Events.Pending(), 1)

	fm.PeaceTime = 0.1
	assert.True(t, fm.InPeaceTime())
	fm.Tick(0.1)
	assert.False(t, fm.InPeaceTime())

	var nilManager *FactionManager
	assert.False(t, nilManager.InPeaceTime())
}
