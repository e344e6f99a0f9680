// Package scenario turns loaded settings into a running match: map, factions,
// systems and the placed units.
package scenario

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/ai"
	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/config"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/logging"
	"github.com/1siamBot/rts-combat/engine/maplib"
	"github.com/1siamBot/rts-combat/engine/movement"
	"github.com/1siamBot/rts-combat/engine/network"
	"github.com/1siamBot/rts-combat/engine/pathfind"
	"github.com/1siamBot/rts-combat/engine/systems"
)

const (
	defaultMapSize = 32
	defaultHealth  = 100
)

// Recorder receives the spawned entities and every dispatched event.
type Recorder interface {
	RegisterEntity(id core.EntityID, faction int, kind, code string) error
	Attach(bus *core.EventBus)
}

// Options carries the optional collaborators of a match.
type Options struct {
	Log      zerolog.Logger
	Audio    core.AudioSink
	Relay    core.InputRelay
	Commands systems.CommandSource
	Replay   *network.Replay
	Recorder Recorder
	AutoPlay bool // factions without an ai entry get a medium commander too
}

// Match is a built world ready to step.
type Match struct {
	Settings *config.Settings
	Loop     *core.GameLoop
	World    *core.World
	Map      *maplib.TileMap
	Factions *core.FactionManager
	Combat   *combat.Env
	Move     *movement.Env
	AI       *ai.System
	Units    []core.EntityID

	recorder  Recorder
	contested bool
	log       zerolog.Logger
}

// Build creates the match described by s.Scenario.
func Build(s *config.Settings, opts Options) (*Match, error) {
	tm, err := buildMap(s.Scenario)
	if err != nil {
		return nil, err
	}

	loop := core.NewGameLoop(s.Sim.TickRate)
	w := loop.World
	loop.OnTick = func(w *core.World) { w.Events.Dispatch() }

	fm := core.NewFactionManager()
	fm.Events = w.Events
	fm.LocalFactionID = s.Sim.LocalFaction
	fm.PeaceTime = s.Sim.PeaceTime
	for _, f := range s.Scenario.Factions {
		fm.AddFaction(&core.Faction{ID: f.ID, Name: f.Name, TeamID: f.Team})
	}

	combatMetrics, err := combat.NewMetrics()
	if err != nil {
		return nil, err
	}
	moveMetrics, err := movement.NewMetrics()
	if err != nil {
		return nil, err
	}

	var queue *movement.Queue
	if s.Sim.PathBudget > 0 {
		queue = movement.NewQueue(s.Sim.PathBudget)
	}

	m := &Match{
		Settings: s,
		Loop:     loop,
		World:    w,
		Map:      tm,
		Factions: fm,
		recorder: opts.Recorder,
		log:      logging.Component(opts.Log, "scenario"),
	}
	m.Combat = &combat.Env{
		World:    w,
		Factions: fm,
		Relay:    opts.Relay,
		Audio:    opts.Audio,
		Ranges:   s.Ranges,
		Metrics:  combatMetrics,
		Log:      logging.Component(opts.Log, "combat"),
	}
	m.Move = &movement.Env{
		World:    w,
		Nav:      pathfind.NewGridNavigator(tm, maplib.PassGround),
		AirNav:   pathfind.NewGridNavigator(tm, maplib.PassAir),
		Heights:  tm,
		Queue:    queue,
		Jobs:     systems.AttackJobs{World: w},
		Audio:    opts.Audio,
		Factions: fm,
		Metrics:  moveMetrics,
		Log:      logging.Component(opts.Log, "movement"),
	}

	if opts.Commands != nil {
		w.AddSystem(&systems.CommandSystem{
			Source: opts.Commands,
			Combat: m.Combat,
			Replay: opts.Replay,
			Log:    logging.Component(opts.Log, "commands"),
		})
	}
	w.AddSystem(&systems.MovementSystem{Queue: queue})
	w.AddSystem(&systems.CombatSystem{Factions: fm})
	w.AddSystem(&systems.ProjectileSystem{Combat: m.Combat})
	if err := m.addCommanders(s.Scenario.Factions, opts); err != nil {
		return nil, err
	}

	if opts.Recorder != nil {
		opts.Recorder.Attach(w.Events)
	}

	for i, u := range s.Scenario.Units {
		for k := 0; k < max(u.Count, 1); k++ {
			if _, err := m.Spawn(u, core.V(u.X+float64(k), u.Y)); err != nil {
				return nil, fmt.Errorf("scenario unit %d: %w", i, err)
			}
		}
	}
	w.Commit()
	m.contested = len(m.Alive()) > 1

	m.log.Info().
		Str("scenario", s.Scenario.Name).
		Int("width", tm.Width).
		Int("height", tm.Height).
		Int("units", len(m.Units)).
		Msg("match built")
	return m, nil
}

// addCommanders puts the ai in charge of the factions that ask for it. Networked
// matches have no ai: every faction belongs to a peer.
func (m *Match) addCommanders(factions []config.FactionDef, opts Options) error {
	if opts.Relay != nil {
		return nil
	}
	sys := &ai.System{}
	for _, f := range factions {
		name := f.AI
		if name == "" {
			if !opts.AutoPlay {
				continue
			}
			name = "medium"
		}
		diff, err := ai.ParseDifficulty(name)
		if err != nil {
			return fmt.Errorf("faction %d: %w", f.ID, err)
		}
		sys.Commanders = append(sys.Commanders, ai.NewCommander(f.ID, diff, m.Combat, opts.Log))
	}
	if len(sys.Commanders) > 0 {
		m.AI = sys
		m.World.AddSystem(sys)
	}
	return nil
}

func buildMap(sc config.Scenario) (*maplib.TileMap, error) {
	name := sc.Name
	if name == "" {
		name = "sandbox"
	}
	if len(sc.Map) == 0 {
		return maplib.NewTileMap(name, defaultMapSize, defaultMapSize), nil
	}
	return maplib.ParseRows(name, sc.Map)
}

// Spawn places one unit or building of the given definition at `at`.
func (m *Match) Spawn(u config.UnitDef, at core.Vec) (core.EntityID, error) {
	w := m.World
	body := &core.Body{
		Kind:         core.KindUnit,
		Code:         u.Code,
		Category:     u.Category,
		Radius:       u.Radius,
		Flying:       u.Flying,
		Interactable: true,
		Built:        true,
	}
	if u.Kind == core.KindBuilding.String() {
		body.Kind = core.KindBuilding
	}
	if body.Radius <= 0 {
		body.Radius = 0.5
		if body.Kind == core.KindBuilding {
			body.Radius = 1
		}
	}
	hp := u.Health
	if hp <= 0 {
		hp = defaultHealth
	}

	id := w.Spawn()
	pos := &core.Position{X: at.X, Y: at.Y, Z: m.Map.SampleHeight(at)}
	if at.X > float64(m.Map.Width)/2 {
		pos.Facing = math.Pi
	}
	w.Attach(id, pos)
	w.Attach(id, body)
	w.Attach(id, &core.Health{Current: hp, Max: hp, DestroyAward: u.Award})
	w.Attach(id, &core.Armor{ArmorType: armorFor(body), Value: u.Armor})
	w.Attach(id, &core.Owner{FactionID: u.Faction, Free: u.Faction == 0})

	if u.Mover != "" && body.Kind == core.KindUnit {
		cfg := m.Settings.Movers[u.Mover]
		if u.Flying {
			cfg.CanFly = true
		}
		w.Attach(id, movement.NewMover(id, cfg, m.Move, m.Settings.Sim.TimeScale))
	}

	if len(u.Attacks) > 0 {
		attacks := make([]*combat.Attacker, 0, len(u.Attacks))
		for _, name := range u.Attacks {
			spec, ok := m.Settings.Attacks[name]
			if !ok {
				w.Destroy(id)
				return 0, fmt.Errorf("unknown attack %q", name)
			}
			a, err := combat.NewAttacker(id, spec, m.Combat, combat.CapabilityFor(w, id), m.Settings.Sim.TimeScale)
			if err != nil {
				w.Destroy(id)
				return 0, fmt.Errorf("attack %q: %w", name, err)
			}
			attacks = append(attacks, a)
		}
		set, err := combat.NewSwitcher(id, m.Combat, true, attacks...)
		if err != nil {
			w.Destroy(id)
			return 0, err
		}
		w.Attach(id, set)
	}

	if m.recorder != nil {
		if err := m.recorder.RegisterEntity(id, u.Faction, body.Kind.String(), u.Code); err != nil {
			m.log.Warn().Err(err).Uint64("entity", uint64(id)).Msg("registering entity")
		}
	}
	m.Units = append(m.Units, id)
	return id, nil
}

func armorFor(b *core.Body) core.ArmorType {
	switch {
	case b.Kind == core.KindBuilding:
		return core.ArmorBuilding
	case b.Category == "vehicle":
		return core.ArmorHeavy
	case b.Category == "infantry":
		return core.ArmorLight
	}
	return core.ArmorNone
}

// Alive counts the living entities of each faction. Free entities are skipped.
func (m *Match) Alive() map[int]int {
	out := make(map[int]int)
	for _, id := range m.World.Query(core.CompOwner, core.CompHealth) {
		o := m.World.Owner(id)
		if o.Free || m.World.Dead(id) {
			continue
		}
		out[o.FactionID]++
	}
	return out
}

// Winner reports the last faction standing. A match that started with a
// single faction is never decided.
func (m *Match) Winner() (int, bool) {
	if !m.contested {
		return 0, false
	}
	alive := m.Alive()
	if len(alive) != 1 {
		return 0, false
	}
	for f := range alive {
		return f, true
	}
	return 0, false
}

// Run steps up to n ticks and stops early once a single faction is left.
// It returns the number of ticks taken.
func (m *Match) Run(n int) int {
	for i := 0; i < n; i++ {
		m.Loop.Step()
		if f, ok := m.Winner(); ok {
			m.Loop.State = core.StateFinished
			m.log.Info().Int("winner", f).Uint64("tick", m.World.TickCount).Msg("match decided")
			return i + 1
		}
	}
	return n
}
