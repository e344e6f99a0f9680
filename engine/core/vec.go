package core

import "math"

// Vec is a point or direction on the ground plane.
type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (a Vec) Add(b Vec) Vec         { return Vec{a.X + b.X, a.Y + b.Y} }
func (a Vec) Sub(b Vec) Vec         { return Vec{a.X - b.X, a.Y - b.Y} }
func (a Vec) Scale(s float64) Vec   { return Vec{a.X * s, a.Y * s} }
func (a Vec) Len() float64          { return math.Hypot(a.X, a.Y) }
func (a Vec) Dist(b Vec) float64    { return math.Hypot(b.X-a.X, b.Y-a.Y) }
func (a Vec) Equal(b Vec) bool      { return a.X == b.X && a.Y == b.Y }
func (a Vec) AngleTo(b Vec) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) }

// Norm returns the unit vector, or the zero vector for a zero-length input.
func (a Vec) Norm() Vec {
	l := a.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{a.X / l, a.Y / l}
}

// MoveTowards steps from a toward b by at most maxDelta without overshooting.
func (a Vec) MoveTowards(b Vec, maxDelta float64) Vec {
	d := b.Sub(a)
	l := d.Len()
	if l <= maxDelta || l == 0 {
		return b
	}
	return a.Add(d.Scale(maxDelta / l))
}

// WrapAngle maps an angle into (-Pi, Pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDiff is the signed shortest rotation from a to b.
func AngleDiff(a, b float64) float64 {
	return WrapAngle(b - a)
}

// RotateTowards turns from toward target by at most maxStep radians.
func RotateTowards(from, target, maxStep float64) float64 {
	d := AngleDiff(from, target)
	if math.Abs(d) <= maxStep {
		return WrapAngle(target)
	}
	if d < 0 {
		return WrapAngle(from - maxStep)
	}
	return WrapAngle(from + maxStep)
}

// Deg converts degrees to radians.
func Deg(d float64) float64 { return d * math.Pi / 180 }
