package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/config"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
	"github.com/1siamBot/rts-combat/engine/scenario"
)

const skirmish = `
sim:
  path_budget: 0
recorder:
  path: ""
attacks:
  rifle:
    direct: true
    search_range: 3
    engage_in_range: false
movers:
  infantry: {speed: 2}
scenario:
  name: skirmish
  factions:
    - {id: 1, name: blue, team: 1}
    - {id: 2, name: red, team: 2}
  units:
    - {faction: 1, code: trooper, x: 2.5, y: 2.5, mover: infantry, attacks: [rifle], count: 3}
    - {faction: 2, code: trooper, x: 20.5, y: 2.5, mover: infantry, attacks: [rifle]}
`

func loadSettings(t *testing.T) *config.Settings {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skirmish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(skirmish), 0o644))
	s, err := config.Load(path)
	require.NoError(t, err)
	return s
}

func build(t *testing.T) *scenario.Match {
	t.Helper()
	m, err := scenario.Build(loadSettings(t), scenario.Options{Log: zerolog.Nop()})
	require.NoError(t, err)
	return m
}

func TestPick(t *testing.T) {
	m := build(t)
	assert.Equal(t, m.Units[1], pick(m.World, core.V(3.7, 2.4)))
	assert.Equal(t, core.EntityID(0), pick(m.World, core.V(10, 10)))
}

func TestBoxSelectKeepsOwnFaction(t *testing.T) {
	m := build(t)
	got := boxSelect(m.World, 1, core.V(30, 5), core.V(0, 0))
	assert.Equal(t, m.Units[:3], got)
	assert.Empty(t, boxSelect(m.World, 1, core.V(3, 0), core.V(4, 1)))
}

func TestOrderMovesOrAttacks(t *testing.T) {
	m := build(t)
	blue, red := m.Units[:2], m.Units[3]

	require.Equal(t, core.CodeNone, order(m.Combat, blue[:1], core.V(10.5, 8.5)))
	mover := m.World.Get(blue[0], core.CompMover).(*movement.Mover)
	assert.True(t, mover.IsMoving())
	assert.Equal(t, core.V(10.5, 8.5), mover.FinalDestination())

	require.Equal(t, core.CodeNone, order(m.Combat, blue[1:2], core.V(20.6, 2.4)))
	assert.Equal(t, red, combat.SwitcherOf(m.World, blue[1]).Active().Target())

	// clicking a friendly unit is a move order onto it
	require.Equal(t, core.CodeNone, order(m.Combat, blue[:1], core.V(4.5, 2.5)))
	assert.Equal(t, core.V(4.5, 2.5), mover.FinalDestination())
}

func TestPruneDropsDead(t *testing.T) {
	m := build(t)
	m.Combat.DestroyEntityLocal(m.Units[0], 0)
	assert.Equal(t, m.Units[1:3], prune(m.World, append([]core.EntityID(nil), m.Units[:3]...)))
}

func TestHeadlessSummary(t *testing.T) {
	s := loadSettings(t)
	s.Recorder.Enabled = true
	a, err := newApp(s, "", true, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	require.NoError(t, a.runHeadless(10, &out))
	assert.Contains(t, out.String(), "skirmish: 10 ticks (0.5s simulated)")
	assert.Contains(t, out.String(), "undecided")
	assert.Contains(t, out.String(), "events:")
}
