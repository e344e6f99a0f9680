package core

import "math"

// ---- Position & Transform ----

// Position represents a world position on the ground plane
type Position struct {
	X, Y   float64 // world position (tile coords, fractional)
	Z      float64 // height (terrain elevation or flight altitude)
	Facing float64 // direction in radians (0 = east)
}

func (p *Position) Type() ComponentType { return CompPosition }

func (p *Position) Vec() Vec { return Vec{p.X, p.Y} }

func (p *Position) Set(v Vec) {
	p.X, p.Y = v.X, v.Y
}

// DistanceTo returns euclidean distance to another position
func (p *Position) DistanceTo(other *Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AngleTo returns the angle from this position to another
func (p *Position) AngleTo(other *Position) float64 {
	return math.Atan2(other.Y-p.Y, other.X-p.X)
}

// ---- Health ----

// Health represents hit points. The zero value of every flag is the ordinary case.
type Health struct {
	Current      int
	Max          int
	Unattackable bool // attackers refuse it as a target
	IgnoreDamage bool // takes no damage but can still be targeted
	Dead         bool
	KilledBy     EntityID
	DestroyAward map[string]int // resources granted to the killer's faction
}

func (h *Health) Type() ComponentType { return CompHealth }

func (h *Health) Ratio() float64 {
	if h.Max <= 0 {
		return 0
	}
	return float64(h.Current) / float64(h.Max)
}

type DamageType uint8

const (
	DmgKinetic DamageType = iota
	DmgExplosive
	DmgFire
	DmgElectric
	DmgRadiation
)

// Armor represents defensive stats
type Armor struct {
	ArmorType ArmorType
	Value     int
}

func (a *Armor) Type() ComponentType { return CompArmor }

type ArmorType uint8

const (
	ArmorNone ArmorType = iota
	ArmorLight
	ArmorMedium
	ArmorHeavy
	ArmorBuilding
)

// ---- Ownership ----

// Owner identifies which faction controls this entity. Free entities belong to nobody
// and are valid targets for everyone.
type Owner struct {
	FactionID int
	Free      bool
}

func (o *Owner) Type() ComponentType { return CompOwner }

// ---- Body ----

type BodyKind uint8

const (
	KindUnit BodyKind = iota
	KindBuilding
)

func (k BodyKind) String() string {
	if k == KindBuilding {
		return "building"
	}
	return "unit"
}

// Body describes what an entity is for targeting and stopping-distance purposes.
type Body struct {
	Kind         BodyKind
	Code         string
	Category     string
	Radius       float64
	Flying       bool
	Interactable bool
	Built        bool // buildings only fight once construction is done
}

func (b *Body) Type() ComponentType { return CompBody }

// ---- Projectile ----

// Projectile represents a launched attack object
type Projectile struct {
	SourceID      EntityID
	SourceFaction int
	AttackID      int
	TargetID      EntityID
	TargetX       float64
	TargetY       float64
	Speed         float64
	Damage        int
	Splash        float64
	DmgType       DamageType
}

func (p *Projectile) Type() ComponentType { return CompProjectile }
