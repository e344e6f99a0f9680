package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/core"
)

func specialSpec() Spec {
	s := directSpec()
	s.Code = "grenade"
	s.IsBasic = false
	s.Damage = DamageSpec{Unit: 30, Building: 30}
	return s
}

func TestSwitcherStartsOnBasic(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	sw := arm(t, env, src, specialSpec(), directSpec())

	assert.Equal(t, 1, sw.BasicID())
	assert.Equal(t, 1, sw.ActiveID())
	assert.False(t, sw.Attack(0).IsActive())
	assert.False(t, sw.Attack(0).WeaponVisible())
	assert.True(t, sw.Attack(1).WeaponVisible())
	assert.Equal(t, 0, sw.Attack(0).ID())
	assert.Nil(t, sw.Attack(2))
}

func TestNewSwitcherNeedsAttacks(t *testing.T) {
	_, err := NewSwitcher(1, newTestEnv(), false)
	assert.ErrorIs(t, err, ErrNoAttacks)
}

func TestEnableAttackIsIdempotent(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	sw := arm(t, env, src, directSpec(), specialSpec())

	assert.Equal(t, core.CodeNone, sw.EnableAttack(1))
	assert.Len(t, drain(env, core.EvtAttackSwitch), 1)
	assert.Equal(t, 1, sw.ActiveID())

	assert.Equal(t, core.CodeNone, sw.EnableAttack(1))
	assert.Empty(t, env.World.Events.Pending())
	assert.Equal(t, 1, sw.ActiveID())
}

func TestEnableAttackErrors(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	sw := arm(t, env, src, directSpec(), specialSpec())

	assert.Equal(t, core.CodeAttackTypeNotFound, sw.EnableAttack(5))
	assert.Equal(t, core.CodeAttackTypeNotFound, sw.EnableAttackByCode("laser"))

	require.Equal(t, core.CodeNone, sw.ToggleLock("grenade", true))
	assert.Equal(t, core.CodeAttackLocked, sw.EnableAttackByCode("grenade"))
	assert.Equal(t, 0, sw.ActiveID())

	require.Equal(t, core.CodeNone, sw.ToggleLock("grenade", false))
	assert.Equal(t, core.CodeNone, sw.EnableAttackByCode("grenade"))
	assert.Equal(t, 1, sw.ActiveID())
	assert.Equal(t, core.CodeAttackTypeNotFound, sw.ToggleLock("laser", true))
}

func TestSwitchStopsAndResetsPrevious(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	sw := arm(t, env, src, directSpec(), specialSpec())
	basic := sw.Active()
	require.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(1, 0)))

	sw.EnableAttackLocal(1)
	assert.False(t, basic.HasTarget())
	assert.False(t, basic.IsActive())
	assert.False(t, basic.WeaponVisible())
	assert.Equal(t, basic.reloadDuration, basic.ReloadTimer())
	assert.True(t, sw.Active().IsActive())
}

func TestRevertToBasicOnCompletion(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	sw := arm(t, env, src, directSpec(), specialSpec())
	require.Equal(t, core.CodeNone, sw.EnableAttack(1))
	require.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(1, 0)))
	env.World.Events.Dispatch()

	sw.Update(dt)

	assert.Equal(t, sw.BasicID(), sw.ActiveID())
	assert.Equal(t, 70, env.World.Health(dst).Current)
	var order []core.EventType
	for _, e := range env.World.Events.Dispatch() {
		order = append(order, e.Type)
	}
	assert.Contains(t, order, core.EvtAttackSwitch)
	assert.Less(t, indexOf(order, core.EvtAttackPerformed), indexOf(order, core.EvtAttackSwitch))
}

func TestNoRevertWhenDisabled(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	sw := arm(t, env, src, directSpec(), specialSpec())
	sw.RevertToBasic = false
	require.Equal(t, core.CodeNone, sw.EnableAttack(1))
	require.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(1, 0)))

	sw.Update(dt)
	assert.Equal(t, 1, sw.ActiveID())
}

func TestCooldownBlocksSwitch(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(1, 0))
	special := specialSpec()
	special.CooldownEnabled = true
	special.Cooldown = 1
	sw := arm(t, env, src, directSpec(), special)

	require.Equal(t, core.CodeNone, sw.EnableAttack(1))
	require.Equal(t, core.CodeNone, sw.SetTarget(dst, core.V(1, 0)))
	env.World.Events.Dispatch()
	sw.Update(dt)

	require.Equal(t, 0, sw.ActiveID())
	cd := drain(env, core.EvtCooldownChanged)
	require.Len(t, cd, 1)
	assert.True(t, cd[0].Flag)
	assert.True(t, sw.Attack(1).CooldownActive())
	assert.Equal(t, core.CodeAttackInCooldown, sw.EnableAttack(1))

	for i := 0; i < 4; i++ {
		sw.Update(dt)
	}
	cd = drain(env, core.EvtCooldownChanged)
	require.Len(t, cd, 1)
	assert.False(t, cd[0].Flag)
	assert.False(t, sw.Attack(1).CooldownActive())
	assert.Equal(t, core.CodeNone, sw.EnableAttack(1))
}

func TestRelayedSwitch(t *testing.T) {
	env := newTestEnv()
	relay := &relayRecorder{}
	env.Relay = relay
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	sw := arm(t, env, src, directSpec(), specialSpec())

	assert.Equal(t, core.CodeNone, sw.EnableAttack(1))
	assert.Equal(t, 0, sw.ActiveID())
	require.Len(t, relay.cmds, 1)
	assert.Equal(t, core.RelayEnableAttack, relay.cmds[0].Mode)
	assert.Equal(t, 1, relay.cmds[0].AttackID)

	assert.Equal(t, core.CodeNone, sw.ToggleLock("grenade", true))
	require.Len(t, relay.cmds, 2)
	assert.Equal(t, core.RelayCommand{Mode: core.RelayToggleLock, Source: src, Code: "grenade", Flag: true}, relay.cmds[1])
	assert.False(t, sw.Attack(1).IsLocked())
}

func indexOf(s []core.EventType, t core.EventType) int {
	for i, v := range s {
		if v == t {
			return i
		}
	}
	return -1
}
