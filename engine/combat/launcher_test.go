package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/core"
)

func projectiles(env *Env) []*core.Projectile {
	var out []*core.Projectile
	for _, id := range env.World.Query(core.CompProjectile) {
		out = append(out, env.World.Get(id, core.CompProjectile).(*core.Projectile))
	}
	return out
}

func TestIndirectLaunchInOrder(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(5, 0))
	spec := DefaultSpec()
	spec.Code = "mortar"
	spec.Launcher = LauncherSpec{
		InOrder: true,
		Speed:   6,
		Sources: []LaunchSource{
			{Offset: core.V(0, 0.5)},
			{Offset: core.V(0, -0.5), Delay: 0.5},
		},
	}
	a := arm(t, env, src, spec).Active()
	require.Equal(t, core.CodeNone, a.SetTarget(dst, core.V(5, 0)))

	a.Update(dt)
	require.Len(t, projectiles(env), 1)
	p := projectiles(env)[0]
	assert.Equal(t, dst, p.TargetID)
	assert.Equal(t, src, p.SourceID)
	assert.Equal(t, 6.0, p.Speed)
	assert.Equal(t, 10, p.Damage)
	assert.Zero(t, a.ReloadTimer(), "cycle not finished yet")

	a.Update(dt)
	assert.Len(t, projectiles(env), 1)
	a.Update(dt)
	assert.Len(t, projectiles(env), 2)
	assert.Equal(t, a.reloadDuration, a.ReloadTimer())
	assert.Equal(t, 2, countPending(env, core.EvtAttackPerformed))
}

func TestIndirectLaunchAllAtOnce(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(5, 0))
	spec := DefaultSpec()
	spec.Launcher = LauncherSpec{Speed: 6, Sources: []LaunchSource{{}, {Delay: 3}, {}}}
	a := arm(t, env, src, spec).Active()
	require.Equal(t, core.CodeNone, a.SetTarget(dst, core.V(5, 0)))

	a.Update(dt)
	assert.Len(t, projectiles(env), 3)
	assert.Equal(t, a.reloadDuration, a.ReloadTimer())
}

func TestLaunchOffsetFollowsFacing(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	env.World.Position(src).Facing = core.Deg(90)
	dst := spawn(env, core.KindUnit, 2, core.V(0, 5))
	spec := DefaultSpec()
	spec.Launcher = LauncherSpec{Speed: 6, Sources: []LaunchSource{{Offset: core.V(1, 0)}}}
	a := arm(t, env, src, spec).Active()
	require.Equal(t, core.CodeNone, a.SetTarget(dst, core.V(0, 5)))

	a.Update(dt)
	ids := env.World.Query(core.CompProjectile)
	require.Len(t, ids, 1)
	pos := env.World.Position(ids[0])
	assert.InDelta(t, 0, pos.X, 1e-9)
	assert.InDelta(t, 1, pos.Y, 1e-9)
}
