package recorder

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/1siamBot/rts-combat/engine/core"
)

func openMemory(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open("", "test", 20, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(0) })
	return r
}

func TestSummary(t *testing.T) {
	r := openMemory(t)
	require.NoError(t, r.RegisterEntity(1, 1, "unit", "tank"))
	require.NoError(t, r.RegisterEntity(2, 1, "unit", "trooper"))
	require.NoError(t, r.RegisterEntity(3, 2, "building", "bunker"))
	require.NoError(t, r.RegisterEntity(4, 2, "unit", "trooper"))

	bus := core.NewEventBus()
	r.Attach(bus)
	for _, e := range []core.Event{
		{Type: core.EvtAttackPerformed, Source: 1, Target: 3},
		{Type: core.EvtDamageDealt, Source: 1, Target: 3, Amount: 40},
		{Type: core.EvtDamageDealt, Source: 2, Target: 4, Amount: 8},
		{Type: core.EvtDamageDealt, Source: 1, Target: 4, Amount: 25},
		{Type: core.EvtDamageDealt, Source: 4, Target: 2, Amount: 8},
		{Type: core.EvtEntityDead, Source: 4, Target: 1},
		{Type: core.EvtResourceAwarded, Faction: 1, Amount: 50, Text: "credits"},
	} {
		bus.Emit(e)
	}
	bus.Dispatch()

	s, err := r.Summary(2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Events["damage_dealt"])
	assert.Equal(t, int64(1), s.Events["attack_performed"])
	assert.Equal(t, map[int]int64{1: 73, 2: 8}, s.DamageByFaction)
	assert.Equal(t, map[int]int64{1: 1}, s.KillsByFaction)
	assert.Equal(t, map[int]int64{2: 1}, s.LossesByFaction)
	require.Len(t, s.TopDealers, 2)
	assert.Equal(t, Dealer{EntityID: 1, Code: "tank", Faction: 1, Damage: 65}, s.TopDealers[0])
	assert.Equal(t, uint64(2), s.TopDealers[1].EntityID, "ties rank by entity id")
}

func TestBatchFlush(t *testing.T) {
	r := openMemory(t)
	r.BatchSize = 3
	for i := 0; i < 7; i++ {
		r.Capture(core.Event{Type: core.EvtMoveAttempt, Tick: uint64(i)})
	}
	assert.Len(t, r.pending, 1)

	var n int64
	require.NoError(t, r.db.Model(&CombatEvent{}).Count(&n).Error)
	assert.Equal(t, int64(6), n)
}

func TestFileLogSurvivesClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combat.db")
	r, err := Open(path, "first", 20, zerolog.Nop())
	require.NoError(t, err)
	r.Capture(core.Event{Type: core.EvtInvalidPath, Tick: 9, Source: 5, Pos: core.V(1.5, 2)})
	matchID := r.Match().ID
	require.NoError(t, r.Close(120))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	var m Match
	require.NoError(t, db.First(&m, matchID).Error)
	assert.Equal(t, "first", m.Name)
	assert.Equal(t, uint64(120), m.Ticks)
	assert.Len(t, m.UUID, 36)

	var events []CombatEvent
	require.NoError(t, db.Where("match_id = ?", matchID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "invalid_path", events[0].Type)
	assert.Equal(t, 1.5, events[0].X)
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()

	r2, err := Open(path, "second", 20, zerolog.Nop())
	require.NoError(t, err)
	assert.NotEqual(t, matchID, r2.Match().ID)
	require.NoError(t, r2.Close(0))
}
