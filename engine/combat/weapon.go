package combat

import (
	"math"

	"github.com/1siamBot/rts-combat/engine/core"
)

// weapon tracks the aim of one attack independently of the body.
type weapon struct {
	spec    WeaponSpec
	facing  float64
	visible bool
}

func (wp *weapon) aim(from, to core.Vec, dt float64) {
	if from.Equal(to) {
		return
	}
	wp.facing = core.RotateTowards(wp.facing, from.AngleTo(to), rotationStep(wp.spec.RotationSpeed, dt))
}

// idle swings the weapon back toward the body's facing.
func (wp *weapon) idle(bodyFacing, dt float64) {
	if !wp.spec.IdleRotation {
		return
	}
	wp.facing = core.RotateTowards(wp.facing, bodyFacing, rotationStep(wp.spec.RotationSpeed, dt))
}

func (wp *weapon) toggle(visible bool) { wp.visible = visible }

// inSight reports whether the target lies inside the allowed firing cone.
func (s SightSpec) inSight(from, to core.Vec, bodyFacing, weaponFacing float64) bool {
	if !s.Enabled || from.Equal(to) {
		return true
	}
	facing := bodyFacing
	if s.UseWeapon {
		facing = weaponFacing
	}
	return math.Abs(core.AngleDiff(facing, from.AngleTo(to))) <= core.Deg(s.MaxAngle)
}

// rotationStep converts degrees per second into this tick's radians. Zero means instant.
func rotationStep(degPerSec, dt float64) float64 {
	if degPerSec <= 0 {
		return 2 * math.Pi
	}
	return core.Deg(degPerSec) * dt
}
