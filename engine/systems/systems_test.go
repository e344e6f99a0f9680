package systems

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/maplib"
	"github.com/1siamBot/rts-combat/engine/movement"
	"github.com/1siamBot/rts-combat/engine/network"
	"github.com/1siamBot/rts-combat/engine/pathfind"
)

type sim struct {
	w      *core.World
	fm     *core.FactionManager
	combat *combat.Env
	move   *movement.Env
	events []core.Event
}

func newSim(t *testing.T, tm *maplib.TileMap, queue *movement.Queue) *sim {
	t.Helper()
	w := core.NewWorld(4)
	fm := core.NewFactionManager()
	fm.Events = w.Events
	fm.LocalFactionID = 1
	fm.AddFaction(&core.Faction{ID: 1, TeamID: 1})
	fm.AddFaction(&core.Faction{ID: 2, TeamID: 2})

	s := &sim{
		w:      w,
		fm:     fm,
		combat: &combat.Env{World: w, Factions: fm, Log: zerolog.Nop()},
	}
	s.move = &movement.Env{
		World:    w,
		Nav:      pathfind.NewGridNavigator(tm, maplib.PassGround),
		Heights:  tm,
		Queue:    queue,
		Jobs:     AttackJobs{World: w},
		Factions: fm,
		Log:      zerolog.Nop(),
	}
	w.AddSystem(&MovementSystem{Queue: queue})
	w.AddSystem(&ProjectileSystem{Combat: s.combat})
	w.AddSystem(&CombatSystem{Factions: fm})
	return s
}

func (s *sim) run(n int) {
	for i := 0; i < n; i++ {
		s.w.Tick(1 / s.w.TickRate)
		s.events = append(s.events, s.w.Events.Dispatch()...)
	}
}

func (s *sim) count(t core.EventType) int {
	n := 0
	for _, e := range s.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (s *sim) unit(t *testing.T, faction int, at core.Vec, hp int, specs ...combat.Spec) core.EntityID {
	t.Helper()
	id := s.w.Spawn()
	s.w.Attach(id, &core.Position{X: at.X, Y: at.Y})
	s.w.Attach(id, &core.Owner{FactionID: faction})
	s.w.Attach(id, &core.Body{Kind: core.KindUnit, Code: "infantry", Radius: 0.5, Interactable: true, Built: true})
	s.w.Attach(id, &core.Health{Current: hp, Max: hp})
	if len(specs) == 0 {
		return id
	}
	attacks := make([]*combat.Attacker, 0, len(specs))
	for _, spec := range specs {
		a, err := combat.NewAttacker(id, spec, s.combat, combat.CapabilityFor(s.w, id), 1)
		require.NoError(t, err)
		attacks = append(attacks, a)
	}
	sw, err := combat.NewSwitcher(id, s.combat, true, attacks...)
	require.NoError(t, err)
	s.w.Attach(id, sw)
	return id
}

func rifle() combat.Spec {
	spec := combat.DefaultSpec()
	spec.Code = "rifle"
	spec.Direct = true
	return spec
}

func TestApproachAndKill(t *testing.T) {
	s := newSim(t, maplib.NewTileMap("open", 20, 9), nil)
	src := s.unit(t, 1, core.V(2.5, 4.5), 100, rifle())
	s.w.Attach(src, movement.NewMover(src, movement.DefaultConfig(), s.move, 1))
	dst := s.unit(t, 2, core.V(14.5, 4.5), 30)
	s.w.Health(dst).DestroyAward = map[string]int{"credits": 50}

	require.Equal(t, core.CodeNone, combat.SwitcherOf(s.w, src).SetTarget(dst, core.V(14.5, 4.5)))
	s.run(200)

	assert.False(t, s.w.Exists(dst))
	assert.Greater(t, s.w.Position(src).X, 2.5)
	assert.Equal(t, 3, s.count(core.EvtAttackPerformed))
	assert.Equal(t, 1, s.count(core.EvtEntityDead))
	assert.Equal(t, 50, s.fm.GetFaction(1).Resources["credits"])
	assert.Equal(t, 30, combat.SwitcherOf(s.w, src).Active().DealtDamage())
}

func TestInvalidPathCancelsAttack(t *testing.T) {
	tm, err := maplib.ParseRows("walled", []string{
		"........############",
		"........#..........#",
		"........#..........#",
		"........#..........#",
		"........#..........#",
		"........#..........#",
		"........#..........#",
		"........#..........#",
		"........############",
	})
	require.NoError(t, err)
	s := newSim(t, tm, movement.NewQueue(1))
	spec := rifle()
	spec.EngageInRange = false
	src := s.unit(t, 1, core.V(2.5, 4.5), 100, spec)
	s.w.Attach(src, movement.NewMover(src, movement.DefaultConfig(), s.move, 1))
	dst := s.unit(t, 2, core.V(16.5, 4.5), 100)

	sw := combat.SwitcherOf(s.w, src)
	require.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(16.5, 4.5)))
	assert.Equal(t, dst, sw.Active().Target())

	s.run(1)
	assert.Equal(t, 1, s.count(core.EvtInvalidPath))
	assert.False(t, sw.Active().HasTarget())
	assert.Equal(t, combat.StateIdle, sw.Active().State())
}

func TestIndirectHitThroughProjectileSystem(t *testing.T) {
	s := newSim(t, maplib.NewTileMap("open", 20, 9), nil)
	mortar := combat.DefaultSpec()
	mortar.Code = "mortar"
	src := s.unit(t, 1, core.V(0.5, 0.5), 100, mortar)
	dst := s.unit(t, 2, core.V(5.5, 0.5), 100)

	require.Equal(t, core.CodeNone, combat.SwitcherOf(s.w, src).SetTarget(dst, core.V(5.5, 0.5)))
	s.run(6)

	assert.Equal(t, 90, s.w.Health(dst).Current)
	assert.Equal(t, 1, s.count(core.EvtProjectileHit))
	assert.Empty(t, s.w.Query(core.CompProjectile), "landed projectiles are removed")
	assert.Equal(t, 10, combat.SwitcherOf(s.w, src).Active().DealtDamage())
}

func TestRelayedCommandsApplyOnDelivery(t *testing.T) {
	s := newSim(t, maplib.NewTileMap("open", 8, 8), nil)
	ls := network.NewLockstep(1, true, 2, zerolog.Nop())
	s.combat.Relay = ls
	s.w.AddSystem(&CommandSystem{Source: ls, Combat: s.combat, Log: zerolog.Nop()})

	// faction 2 is the remote peer
	src := s.unit(t, 2, core.V(1, 1), 100, rifle())
	dst := s.unit(t, 1, core.V(2, 1), 100)
	sw := combat.SwitcherOf(s.w, src)

	assert.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(2, 1)))
	assert.False(t, sw.Active().HasTarget(), "remote attackers only change on delivery")

	require.True(t, ls.Receive(network.Command{
		ID:      uuid.New(),
		Tick:    1,
		Faction: 2,
		Seq:     1,
		Relay:   core.RelayCommand{Mode: core.RelaySetTarget, Source: src, Target: dst, AttackID: sw.ActiveID(), Pos: core.V(2, 1)},
	}))

	s.run(1)
	assert.False(t, sw.Active().HasTarget())

	s.run(1)
	assert.Equal(t, dst, sw.Active().Target())
	assert.Equal(t, 1, s.count(core.EvtAttackPerformed))
	assert.Equal(t, 100, s.w.Health(dst).Current, "damage to a local unit waits for its relay round trip")

	s.run(2)
	assert.Equal(t, 100, s.w.Health(dst).Current)
	s.run(1)
	assert.Equal(t, 90, s.w.Health(dst).Current)
}

func TestCommandSystemRecordsReplayAndAppliesMoves(t *testing.T) {
	s := newSim(t, maplib.NewTileMap("open", 10, 10), nil)
	ls := network.NewLockstep(1, true, 1, zerolog.Nop())
	s.combat.Relay = ls
	rp := &network.Replay{}
	s.w.AddSystem(&CommandSystem{Source: ls, Combat: s.combat, Replay: rp, Log: zerolog.Nop()})

	id := s.unit(t, 1, core.V(1.5, 1.5), 100)
	m := movement.NewMover(id, movement.DefaultConfig(), s.move, 1)
	s.w.Attach(id, m)

	assert.Equal(t, core.CodeNone, IssueMove(s.combat, id, core.V(6.5, 1.5), false))
	assert.False(t, m.IsMoving())

	s.run(2)
	assert.True(t, m.IsMoving())
	require.Len(t, rp.Commands, 1)
	assert.Equal(t, core.RelayMove, rp.Commands[0].Relay.Mode)

	s.run(40)
	assert.True(t, m.DestinationReached())
	assert.InDelta(t, 6.5, s.w.Position(id).X, 0.31)
}

func TestEnableAndLockThroughRelay(t *testing.T) {
	s := newSim(t, maplib.NewTileMap("open", 8, 8), nil)
	ls := network.NewLockstep(1, true, 1, zerolog.Nop())
	s.combat.Relay = ls
	s.w.AddSystem(&CommandSystem{Source: ls, Combat: s.combat, Log: zerolog.Nop()})

	cannon := rifle()
	cannon.Code = "cannon"
	cannon.IsBasic = false
	id := s.unit(t, 1, core.V(1, 1), 100, rifle(), cannon)
	sw := combat.SwitcherOf(s.w, id)

	assert.Equal(t, core.CodeNone, sw.ToggleLock("cannon", true))
	s.run(2)
	assert.True(t, sw.Attack(1).IsLocked())
	assert.Equal(t, core.CodeAttackLocked, sw.EnableAttack(1))

	assert.Equal(t, core.CodeNone, sw.ToggleLock("cannon", false))
	s.run(2)
	assert.False(t, sw.Attack(1).IsLocked())
	assert.Equal(t, core.CodeNone, sw.EnableAttack(1))
	assert.Equal(t, 0, sw.ActiveID())
	s.run(2)
	assert.Equal(t, 1, sw.ActiveID())
	assert.Equal(t, 1, s.count(core.EvtAttackSwitch))
}

func TestCombatSystemCountsPeaceTime(t *testing.T) {
	s := newSim(t, maplib.NewTileMap("open", 8, 8), nil)
	s.fm.PeaceTime = 1
	src := s.unit(t, 1, core.V(1, 1), 100, rifle())
	s.unit(t, 2, core.V(2, 1), 100)

	s.run(3)
	assert.True(t, s.fm.InPeaceTime())
	assert.Zero(t, s.count(core.EvtAttackPerformed))

	s.run(2)
	assert.False(t, s.fm.InPeaceTime())
	assert.True(t, combat.SwitcherOf(s.w, src).Active().HasTarget())
}
