package types

import "math"

// Vec3 is a world-space vector. Distances are centimeters unless a field or
// function documents otherwise.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// IsNearlyZero reports whether every component is within eps of zero.
func (v Vec3) IsNearlyZero(eps float64) bool {
	return math.Abs(v.X) <= eps && math.Abs(v.Y) <= eps && math.Abs(v.Z) <= eps
}

// Normalized returns the unit vector pointing along v. Degenerate inputs
// return the +X axis so downstream directional math never sees a zero
// vector.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length < 1e-8 {
		return Vec3{X: 1}
	}
	return v.Scale(1 / length)
}

// Quat is a rotation quaternion.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Transform is a location/rotation/scale triple for a placed world object.
type Transform struct {
	Location Vec3 `json:"location"`
	Rotation Quat `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// IdentityTransform returns a transform with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: Quat{W: 1},
		Scale:    Vec3{X: 1, Y: 1, Z: 1},
	}
}
