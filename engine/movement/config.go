package movement

// Config is the load-time description of a mover type. Angles are in degrees,
// distances in world units, durations in seconds.
type Config struct {
	CanMove             bool    `mapstructure:"can_move"`
	CanFly              bool    `mapstructure:"can_fly"`
	FlyHeight           float64 `mapstructure:"fly_height"`
	Speed               float64 `mapstructure:"speed"`
	Acceleration        float64 `mapstructure:"acceleration"` // 0 means instant
	EscapeSpeed         float64 `mapstructure:"escape_speed"`
	AngularSpeed        float64 `mapstructure:"angular_speed"`
	IdleAngularSpeed    float64 `mapstructure:"idle_angular_speed"`
	CanMoveRotate       bool    `mapstructure:"can_move_rotate"` // rotate toward the corner before moving
	MinMoveAngle        float64 `mapstructure:"min_move_angle"`
	CanIdleRotate       bool    `mapstructure:"can_idle_rotate"`
	StoppingDistance    float64 `mapstructure:"stopping_distance"`
	MinCornerDistance   float64 `mapstructure:"min_corner_distance"`
	CornerThreshold     float64 `mapstructure:"corner_threshold"`
	StuckWindow         float64 `mapstructure:"stuck_window"`
	StuckEpsilon        float64 `mapstructure:"stuck_epsilon"`
	HeightCheckInterval float64 `mapstructure:"height_check_interval"`
	AgentRadius         float64 `mapstructure:"agent_radius"`
	PathRetries         int     `mapstructure:"path_retries"`
}

func DefaultConfig() Config {
	return Config{
		CanMove:             true,
		Speed:               3,
		Acceleration:        8,
		AngularSpeed:        360,
		IdleAngularSpeed:    180,
		CanMoveRotate:       true,
		MinMoveAngle:        40,
		CanIdleRotate:       true,
		StoppingDistance:    0.3,
		MinCornerDistance:   0.5,
		CornerThreshold:     0.1,
		StuckWindow:         2,
		StuckEpsilon:        0.1,
		HeightCheckInterval: 0.25,
		AgentRadius:         0.4,
		PathRetries:         2,
	}
}
