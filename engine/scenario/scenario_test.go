package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/ai"
	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/config"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
	"github.com/1siamBot/rts-combat/engine/network"
	"github.com/1siamBot/rts-combat/engine/recorder"
)

const duel = `
sim:
  tick_rate: 10
attacks:
  rifle:
    direct: true
    reload: 1
    search_range: 8
    damage: {unit: 10, building: 5}
scenario:
  name: duel
  factions:
    - {id: 1, name: blue, team: 1}
    - {id: 2, name: red, team: 2}
  map:
    - "............"
    - "............"
    - "............"
    - "............"
    - "............"
  units:
    - {faction: 1, code: gunner, x: 2.5, y: 2.5, attacks: [rifle]}
    - {faction: 2, code: dummy, x: 6.5, y: 2.5, health: 30, award: {credits: 25}}
`

func load(t *testing.T, body string) *config.Settings {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	s, err := config.Load(path)
	require.NoError(t, err)
	return s
}

func TestDuelIsDecidedAndRecorded(t *testing.T) {
	s := load(t, duel)
	rec, err := recorder.Open("", "duel", s.Sim.TickRate, zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close(0)

	m, err := Build(s, Options{Log: zerolog.Nop(), Recorder: rec})
	require.NoError(t, err)
	require.Len(t, m.Units, 2)
	assert.Equal(t, map[int]int{1: 1, 2: 1}, m.Alive())

	ticks := m.Run(200)
	assert.Less(t, ticks, 200)
	assert.Equal(t, core.StateFinished, m.Loop.State)

	winner, ok := m.Winner()
	require.True(t, ok)
	assert.Equal(t, 1, winner)
	assert.Equal(t, 25, m.Factions.GetFaction(1).Resources["credits"])

	sum, err := rec.Summary(3)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{1: 30}, sum.DamageByFaction)
	assert.Equal(t, map[int]int64{1: 1}, sum.KillsByFaction)
	assert.Equal(t, map[int]int64{2: 1}, sum.LossesByFaction)
	require.Len(t, sum.TopDealers, 1)
	assert.Equal(t, "gunner", sum.TopDealers[0].Code)
	assert.Equal(t, int64(3), sum.Events[core.EvtDamageDealt.String()])
}

func TestSingleFactionNeverDecides(t *testing.T) {
	s := load(t, `
scenario:
  factions: [{id: 1, team: 1}]
  units:
    - {faction: 1, code: a, x: 1.5, y: 1.5}
`)
	m, err := Build(s, Options{Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, 32, m.Map.Width, "no map rows gives the default open map")
	assert.Equal(t, 5, m.Run(5))
	_, ok := m.Winner()
	assert.False(t, ok)
}

func TestSandboxScenarioBuilds(t *testing.T) {
	s, err := config.Load("../../configs/sandbox.yaml")
	require.NoError(t, err)
	m, err := Build(s, Options{Log: zerolog.Nop()})
	require.NoError(t, err)

	assert.Len(t, m.Units, 13)
	assert.Equal(t, map[int]int{1: 7, 2: 6}, m.Alive())
	assert.Equal(t, 2.0, m.Factions.PeaceTime)
	require.NotNil(t, m.AI)
	require.Len(t, m.AI.Commanders, 1)
	assert.Equal(t, 2, m.AI.Commanders[0].Faction)

	var tanks, buildings int
	for _, id := range m.Units {
		b := m.World.Body(id)
		switch {
		case b.Code == "tank":
			tanks++
			set := combat.SwitcherOf(m.World, id)
			require.NotNil(t, set)
			assert.Equal(t, 2, set.Len())
			assert.Equal(t, "cannon", set.Active().Code())
			_, ok := m.World.Get(id, core.CompMover).(*movement.Mover)
			assert.True(t, ok)
			assert.Equal(t, core.ArmorHeavy, m.World.Get(id, core.CompArmor).(*core.Armor).ArmorType)
		case b.Kind == core.KindBuilding:
			buildings++
			assert.False(t, m.World.Has(id, core.CompMover))
		}
	}
	assert.Equal(t, 2, tanks)
	assert.Equal(t, 3, buildings)

	m.Run(40)
	assert.Equal(t, uint64(40), m.World.TickCount)
}

func TestUnknownAttackFailsSpawn(t *testing.T) {
	s := load(t, duel)
	m, err := Build(s, Options{Log: zerolog.Nop()})
	require.NoError(t, err)
	_, err = m.Spawn(config.UnitDef{Faction: 1, Code: "x", Attacks: []string{"laser"}}, core.V(1, 1))
	assert.ErrorContains(t, err, `unknown attack "laser"`)
}

func TestCommandersFollowConfigAndAutoPlay(t *testing.T) {
	body := `
scenario:
  factions:
    - {id: 1, team: 1}
    - {id: 2, team: 2, ai: hard}
`
	m, err := Build(load(t, body), Options{Log: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, m.AI.Commanders, 1)
	assert.Equal(t, ai.DiffHard, m.AI.Commanders[0].Difficulty)

	m, err = Build(load(t, body), Options{Log: zerolog.Nop(), AutoPlay: true})
	require.NoError(t, err)
	require.Len(t, m.AI.Commanders, 2)
	assert.Equal(t, ai.DiffMedium, m.AI.Commanders[0].Difficulty)

	m, err = Build(load(t, body), Options{Log: zerolog.Nop(), Relay: &network.Replay{}})
	require.NoError(t, err)
	assert.Nil(t, m.AI, "networked and replayed matches have no ai")

	_, err = Build(load(t, `
scenario:
  factions: [{id: 1, ai: nightmare}]
`), Options{Log: zerolog.Nop()})
	assert.ErrorContains(t, err, `faction 1: unknown ai difficulty "nightmare"`)
}
