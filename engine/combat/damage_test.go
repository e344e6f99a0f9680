package combat

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/core"
	"github.com/1siamBot/rts-combat/engine/movement"
)

func TestMitigate(t *testing.T) {
	tests := []struct {
		name  string
		armor *core.Armor
		base  int
		typ   core.DamageType
		want  int
	}{
		{"no armor", nil, 10, core.DmgKinetic, 10},
		{"heavy vs kinetic", &core.Armor{ArmorType: core.ArmorHeavy, Value: 2}, 10, core.DmgKinetic, 3},
		{"building vs explosive", &core.Armor{ArmorType: core.ArmorBuilding}, 10, core.DmgExplosive, 15},
		{"armor soaks everything", &core.Armor{ArmorType: core.ArmorHeavy, Value: 50}, 10, core.DmgKinetic, 1},
		{"zero damage", &core.Armor{}, 0, core.DmgFire, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := core.NewWorld(10)
			id := w.Spawn()
			if tt.armor != nil {
				w.Attach(id, tt.armor)
			}
			assert.Equal(t, tt.want, Mitigate(w, id, tt.base, tt.typ))
		})
	}
}

func TestApplyDamage(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))

	cur, dead := env.ApplyDamage(dst, 30, src)
	assert.Equal(t, 70, cur)
	assert.False(t, dead)
	assert.Equal(t, 1, countPending(env, core.EvtDamageDealt))
	assert.Equal(t, 1, countPending(env, core.EvtHealthUpdated))

	cur, dead = env.ApplyDamage(dst, 500, src)
	assert.Equal(t, 0, cur)
	assert.True(t, dead)
	assert.Equal(t, src, env.World.Health(dst).KilledBy)

	cur, dead = env.ApplyDamage(dst, 10, src)
	assert.Equal(t, 0, cur)
	assert.True(t, dead)
	assert.Equal(t, 1, countPending(env, core.EvtEntityDead))
}

func TestIgnoreDamageAndHealClamp(t *testing.T) {
	env := newTestEnv()
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	h := env.World.Health(dst)

	h.IgnoreDamage = true
	cur, _ := env.ApplyDamage(dst, 30, 0)
	assert.Equal(t, 100, cur)
	env.AddHealth(dst, -30, 0)
	assert.Equal(t, 100, h.Current)

	h.IgnoreDamage = false
	env.AddHealth(dst, -30, 0)
	env.AddHealth(dst, 500, 0)
	assert.Equal(t, 100, h.Current)
}

func TestNoAwardForOwnFaction(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 1, core.V(1, 0))
	env.World.Health(dst).DestroyAward = map[string]int{"gold": 50}

	env.ApplyDamage(dst, 100, src)
	assert.True(t, env.World.Health(dst).Dead)
	assert.Zero(t, env.Factions.GetFaction(1).Resources["gold"])
}

type economyRecorder struct{ awards []string }

func (e *economyRecorder) UpdateResource(faction int, name string, amount int) {
	e.awards = append(e.awards, name)
}

func TestAwardsInNameOrder(t *testing.T) {
	env := newTestEnv()
	eco := &economyRecorder{}
	env.Economy = eco
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	env.World.Health(dst).DestroyAward = map[string]int{"wood": 1, "gold": 2, "stone": 3}

	env.ApplyDamage(dst, 100, src)
	assert.Equal(t, []string{"gold", "stone", "wood"}, eco.awards)
}

func TestDeathStopsOwnAttacks(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	sw := arm(t, env, src, directSpec())
	require.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(1, 0)))

	env.DestroyEntityLocal(src, 0)
	assert.False(t, sw.Active().HasTarget())
	assert.False(t, sw.Active().CanEngage())
	assert.False(t, env.World.Body(src).Interactable)
}

func TestDeathReleasesPathSlot(t *testing.T) {
	env := newTestEnv()
	id := spawn(env, core.KindUnit, 1, core.V(0, 0))
	queue := movement.NewQueue(1)
	menv := &movement.Env{World: env.World, Nav: lineNav{}, Queue: queue, Factions: env.Factions, Log: zerolog.Nop()}
	m := movement.NewMover(id, movement.DefaultConfig(), menv, 1)
	env.World.Attach(id, m)

	require.Equal(t, core.CodeNone, m.RequestMove(movement.Request{Destination: core.V(5, 0)}))
	require.Equal(t, 1, queue.Waiting())

	env.DestroyEntityLocal(id, 0)
	assert.False(t, m.IsMoving())
	assert.Equal(t, 0, queue.Waiting())
}

func TestRelayedHealthChanges(t *testing.T) {
	env := newTestEnv()
	relay := &relayRecorder{}
	env.Relay = relay
	mine := spawn(env, core.KindUnit, 1, core.V(0, 0))
	theirs := spawn(env, core.KindUnit, 2, core.V(1, 0))

	env.ApplyDamage(mine, 10, theirs)
	env.ApplyDamage(theirs, 10, mine)
	env.DestroyEntity(mine, 0)
	env.DestroyEntity(theirs, 0)

	require.Len(t, relay.cmds, 2)
	assert.Equal(t, core.RelayCommand{Mode: core.RelayAddHealth, Source: mine, Target: theirs, Amount: -10}, relay.cmds[0])
	assert.Equal(t, core.RelayCommand{Mode: core.RelayDestroy, Source: mine}, relay.cmds[1])
	assert.Equal(t, 100, env.World.Health(mine).Current)
	assert.False(t, env.World.Health(mine).Dead)
}

func TestResolveHitCreditsLauncher(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(4, 0))
	sw := arm(t, env, src, directSpec())

	dealt := env.ResolveHit(&core.Projectile{SourceID: src, SourceFaction: 1, TargetID: dst, Damage: 25}, core.V(4, 0))
	assert.Equal(t, 25, dealt)
	assert.Equal(t, 25, sw.Active().DealtDamage())
	assert.Equal(t, 75, env.World.Health(dst).Current)
	assert.Equal(t, 1, countPending(env, core.EvtProjectileHit))
}
