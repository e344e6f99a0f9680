package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, 20.0, s.Sim.TickRate)
	assert.Equal(t, 1.0, s.Sim.TimeScale)
	assert.Equal(t, 1, s.Sim.LocalFaction)
	assert.Equal(t, 8, s.Sim.PathBudget)
	assert.Equal(t, 2, s.Net.InputDelay)
	assert.False(t, s.Net.Enabled)
	assert.Equal(t, "combat.db", s.Recorder.Path)
	assert.Equal(t, combat.DefaultRange(), s.Ranges[combat.DefaultRangeType])
	assert.Empty(t, s.Attacks)
	assert.Empty(t, s.Movers)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	path := writeFile(t, "match.yaml", `
log_level: debug
sim:
  tick_rate: 10
  peace_time: 30
ranges:
  artillery:
    unit: {min: 6, max: 14}
    include_target_radius: false
attacks:
  rifle:
    direct: true
    reload: 1.5
    damage: {unit: 12, building: 4, custom: {tank: 2}}
  mortar:
    range_type: artillery
    require_target: false
    filter: 'Kind == "building" || Health < 50'
    launcher:
      in_order: true
      sources:
        - offset: {x: 0.5, y: 0}
        - offset: {x: -0.5, y: 0}
          delay: 0.25
movers:
  tank:
    speed: 2.5
    escape_speed: 4
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 10.0, s.Sim.TickRate)
	assert.Equal(t, 30.0, s.Sim.PeaceTime)
	assert.Equal(t, 8, s.Sim.PathBudget, "unset keys keep their defaults")

	art := s.Ranges["artillery"]
	assert.Equal(t, "artillery", art.Code)
	assert.Equal(t, combat.Span{Min: 6, Max: 14}, art.Unit)
	assert.False(t, art.IncludeTargetRadius)
	assert.Equal(t, combat.DefaultRange().Building, art.Building)

	rifle := s.Attacks["rifle"]
	assert.Equal(t, "rifle", rifle.Code)
	assert.True(t, rifle.Direct)
	assert.Equal(t, 1.5, rifle.Reload)
	assert.Equal(t, 12, rifle.Damage.Unit)
	assert.Equal(t, map[string]int{"tank": 2}, rifle.Damage.Custom)
	assert.True(t, rifle.IsBasic, "defaults fill what the file omits")
	assert.Equal(t, combat.DefaultRangeType, rifle.RangeType)

	mortar := s.Attacks["mortar"]
	assert.False(t, mortar.RequireTarget)
	assert.False(t, mortar.Direct)
	assert.True(t, mortar.Launcher.InOrder)
	require.Len(t, mortar.Launcher.Sources, 2)
	assert.Equal(t, core.V(-0.5, 0), mortar.Launcher.Sources[1].Offset)
	assert.Equal(t, 0.25, mortar.Launcher.Sources[1].Delay)
	assert.Equal(t, 8.0, mortar.Launcher.Speed)
	_, err = combat.CompileFilter(mortar.Filter)
	assert.NoError(t, err)

	tank := s.Movers["tank"]
	assert.Equal(t, 2.5, tank.Speed)
	assert.Equal(t, 4.0, tank.EscapeSpeed)
	assert.Equal(t, movement.DefaultConfig().AngularSpeed, tank.AngularSpeed)

	assert.Equal(t, []string{"mortar", "rifle"}, s.AttackNames())
}

func TestLoad_JSONScenario(t *testing.T) {
	path := writeFile(t, "scenario.json", `{
		"attacks": {"rifle": {"direct": true}},
		"movers": {"infantry": {"speed": 2}},
		"scenario": {
			"name": "skirmish",
			"map": ["....", "...."],
			"factions": [{"id": 1, "team": 1}, {"id": 2, "team": 2}],
			"units": [
				{"faction": 1, "code": "trooper", "x": 0.5, "y": 0.5, "health": 80, "mover": "infantry", "attacks": ["rifle"], "count": 3},
				{"faction": 2, "kind": "building", "code": "bunker", "x": 3.5, "y": 1.5, "award": {"credits": 200}}
			]
		}
	}`)
	s, err := Load(path)
	require.NoError(t, err)

	sc := s.Scenario
	assert.Equal(t, "skirmish", sc.Name)
	assert.Len(t, sc.Map, 2)
	assert.Len(t, sc.Factions, 2)
	require.Len(t, sc.Units, 2)
	assert.Equal(t, []string{"rifle"}, sc.Units[0].Attacks)
	assert.Equal(t, 3, sc.Units[0].Count)
	assert.Equal(t, "building", sc.Units[1].Kind)
	assert.Equal(t, 200, sc.Units[1].Award["credits"])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"unknown range type", "attacks:\n  gun:\n    range_type: nowhere\n", `unknown range type "nowhere"`},
		{"unknown scenario attack", "scenario:\n  units:\n    - attacks: [laser]\n", `unknown attack "laser"`},
		{"unknown scenario mover", "scenario:\n  units:\n    - mover: hover\n", `unknown mover "hover"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/match.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSandboxConfigLoads(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "configs", "sandbox.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, s.Scenario.Units)
	assert.NotEmpty(t, s.Scenario.Map)
	for _, spec := range s.Attacks {
		_, err := combat.CompileFilter(spec.Filter)
		assert.NoError(t, err, spec.Code)
	}
}
