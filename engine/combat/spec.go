package combat

import "github.com/1siamBot/rts-combat/engine/core"

// Spec is the load-time description of one attack type. Durations are in seconds,
// distances in world units, angles in degrees.
type Spec struct {
	Code     string `mapstructure:"code"`
	Category string `mapstructure:"category"`
	IsBasic  bool   `mapstructure:"is_basic"`

	RequireTarget bool `mapstructure:"require_target"`
	Direct        bool `mapstructure:"direct"`
	EngageOnce    bool `mapstructure:"engage_once"`

	UseReload       bool    `mapstructure:"use_reload"`
	Reload          float64 `mapstructure:"reload"`
	CooldownEnabled bool    `mapstructure:"cooldown_enabled"`
	Cooldown        float64 `mapstructure:"cooldown"`
	Delay           float64 `mapstructure:"delay"`
	DelayTrigger    bool    `mapstructure:"delay_trigger"` // firing waits for TriggerAttack

	EngageWhenAttacked bool     `mapstructure:"engage_when_attacked"`
	EngageInRange      bool     `mapstructure:"engage_in_range"`
	EngageFriendly     bool     `mapstructure:"engage_friendly"`
	EngageAllTypes     bool     `mapstructure:"engage_all_types"`
	EngageUnits        bool     `mapstructure:"engage_units"`
	EngageFlying       bool     `mapstructure:"engage_flying"`
	EngageBuildings    bool     `mapstructure:"engage_buildings"`
	EngageInList       bool     `mapstructure:"engage_in_list"` // true: only listed codes, false: all but listed
	CodeList           []string `mapstructure:"code_list"`
	Filter             string   `mapstructure:"filter"`

	SearchRange    float64 `mapstructure:"search_range"`
	SearchReload   float64 `mapstructure:"search_reload"`
	FollowDistance float64 `mapstructure:"follow_distance"`
	MoveOnAttack   bool    `mapstructure:"move_on_attack"`
	RangeType      string  `mapstructure:"range_type"`

	ReloadDealtDamage bool `mapstructure:"reload_dealt_damage"`

	Sight    SightSpec    `mapstructure:"sight"`
	Weapon   WeaponSpec   `mapstructure:"weapon"`
	Damage   DamageSpec   `mapstructure:"damage"`
	Launcher LauncherSpec `mapstructure:"launcher"`

	AttackSound string `mapstructure:"attack_sound"`
}

// SightSpec limits firing to targets within MaxAngle of the facing direction.
type SightSpec struct {
	Enabled   bool    `mapstructure:"enabled"`
	UseWeapon bool    `mapstructure:"use_weapon"` // measure from the weapon instead of the body
	MaxAngle  float64 `mapstructure:"max_angle"`
}

type WeaponSpec struct {
	RotationSpeed float64 `mapstructure:"rotation_speed"` // 0 snaps instantly
	IdleRotation  bool    `mapstructure:"idle_rotation"`  // swing back to the body's facing when idle
}

// DamageSpec describes what one hit deals. Custom overrides the per-kind value for
// targets whose code or category is listed.
type DamageSpec struct {
	Unit     int             `mapstructure:"unit"`
	Building int             `mapstructure:"building"`
	Custom   map[string]int  `mapstructure:"custom"`
	Type     core.DamageType `mapstructure:"type"`
	Splash   float64         `mapstructure:"splash"`
}

// LauncherSpec configures indirect attacks.
type LauncherSpec struct {
	Sources []LaunchSource `mapstructure:"sources"`
	InOrder bool           `mapstructure:"in_order"` // one source after another instead of all at once
	Speed   float64        `mapstructure:"speed"`
}

// LaunchSource is one muzzle. Offset is relative to the body, rotated by its facing.
type LaunchSource struct {
	Offset core.Vec `mapstructure:"offset"`
	Delay  float64  `mapstructure:"delay"`
}

func DefaultSpec() Spec {
	return Spec{
		IsBasic:         true,
		RequireTarget:   true,
		UseReload:       true,
		Reload:          2,
		Cooldown:        10,
		EngageInRange:   true,
		EngageAllTypes:  true,
		EngageUnits:     true,
		EngageFlying:    true,
		EngageBuildings: true,
		SearchRange:     10,
		SearchReload:    1,
		FollowDistance:  15,
		RangeType:       DefaultRangeType,
		Damage:          DamageSpec{Unit: 10, Building: 10},
		Launcher:        LauncherSpec{Speed: 8},
	}
}

// damageFor returns the damage one hit deals to target.
func (d DamageSpec) damageFor(b *core.Body) int {
	if b == nil {
		return d.Unit
	}
	if v, ok := d.Custom[b.Code]; ok {
		return v
	}
	if v, ok := d.Custom[b.Category]; ok && b.Category != "" {
		return v
	}
	if b.Kind == core.KindBuilding {
		return d.Building
	}
	return d.Unit
}
