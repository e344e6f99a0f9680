package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-combat/engine/core"
)

func TestCompileFilter(t *testing.T) {
	f, err := CompileFilter("")
	require.NoError(t, err)
	assert.Nil(t, f)
	ok, err := f.Match(TargetEnv{})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = CompileFilter("Health +")
	assert.Error(t, err)

	_, err = CompileFilter(`Code + "x"`)
	assert.Error(t, err, "non-boolean filters are rejected")
}

func TestFilterGatesTargets(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	dst := spawn(env, core.KindUnit, 2, core.V(3, 0))
	spec := directSpec()
	spec.Filter = `Kind == "unit" && HealthRatio < 0.5 && Distance <= 5`
	a := arm(t, env, src, spec).Active()

	assert.Equal(t, core.CodeTargetNotAllowed, a.CanEngageTarget(dst))
	env.World.Health(dst).Current = 40
	assert.Equal(t, core.CodeNone, a.CanEngageTarget(dst))
	env.World.Position(dst).X = 6
	assert.Equal(t, core.CodeTargetNotAllowed, a.CanEngageTarget(dst))
}

func TestNewAttackerRejectsBadFilter(t *testing.T) {
	env := newTestEnv()
	src := spawn(env, core.KindUnit, 1, core.V(0, 0))
	spec := directSpec()
	spec.Filter = "Health >"
	_, err := NewAttacker(src, spec, env, UnitCapability{}, 1)
	assert.Error(t, err)
}
