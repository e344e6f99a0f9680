package combat

import "github.com/1siamBot/rts-combat/engine/core"

const DefaultRangeType = "shortrange"

// Span is a min/max pair loaded from configuration. Only Min is used for stopping.
type Span struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// RangeSpec is the stopping-distance policy of one range type.
type RangeSpec struct {
	Code                string  `mapstructure:"code"`
	Unit                Span    `mapstructure:"unit"`
	Building            Span    `mapstructure:"building"`
	NoTarget            Span    `mapstructure:"no_target"`
	IncludeTargetRadius bool    `mapstructure:"include_target_radius"`
	MoveOnAttackOffset  float64 `mapstructure:"move_on_attack_offset"`
	UpdateMoveDistance  float64 `mapstructure:"update_move_distance"`
}

func DefaultRange() RangeSpec {
	return RangeSpec{
		Code:                DefaultRangeType,
		Unit:                Span{Min: 2, Max: 6},
		Building:            Span{Min: 5, Max: 10},
		NoTarget:            Span{Min: 5, Max: 10},
		IncludeTargetRadius: true,
		MoveOnAttackOffset:  3,
		UpdateMoveDistance:  2,
	}
}

// StoppingDistance is how close an attacker must get to target. A nil body means a
// terrain attack.
func (r RangeSpec) StoppingDistance(target *core.Body) float64 {
	if target == nil {
		return r.NoTarget.Min
	}
	d := r.Unit.Min
	if target.Kind == core.KindBuilding {
		d = r.Building.Min
	}
	if r.IncludeTargetRadius {
		d += target.Radius
	}
	return d
}

// ShouldRecomputePath reports whether the target moved far enough from where the
// current approach path was aimed.
func (r RangeSpec) ShouldRecomputePath(last, current core.Vec) bool {
	return last.Dist(current) > r.UpdateMoveDistance
}
