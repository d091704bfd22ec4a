// Package math3d holds the vector and matrix types the software renderer
// works in: model-space points, euler rotations and clip-space positions.
package math3d

import "math"

// Vec2 is a texture coordinate.
type Vec2 struct {
	X, Y float64
}

// V2 creates a Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Vec3 is a point or direction. Model rotations store euler angles in it:
// X is pitch, Y is yaw and Z is roll, all in radians.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the origin.
func Zero3() Vec3 { return Vec3{} }

// One3 returns the unit scale (1, 1, 1).
func One3() Vec3 { return Vec3{1, 1, 1} }

// Up returns +Y, the camera's up direction.
func Up() Vec3 { return Vec3{0, 1, 0} }

// Uniform returns (s, s, s).
func Uniform(s float64) Vec3 { return Vec3{s, s, s} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Negate() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a × b. Counter-clockwise triangle edges give an outward normal.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.Dot(a))
}

// Normalize returns a scaled to unit length, or the zero vector.
func (a Vec3) Normalize() Vec3 {
	if l := a.Len(); l > 0 {
		return a.Scale(1 / l)
	}
	return Vec3{}
}

// Min and Max are component-wise; bounding boxes grow with them.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

// ApproxEqual reports whether every component of a and b is within eps.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	d := a.Sub(b)
	return math.Abs(d.X) <= eps && math.Abs(d.Y) <= eps && math.Abs(d.Z) <= eps
}

// Vec4 is a clip-space position produced by Mat4.Project.
type Vec4 struct {
	X, Y, Z, W float64
}

// NDC divides by W. It reports false for points at or behind the eye, and
// for points outside the [-1, 1] cube.
func (v Vec4) NDC() (Vec3, bool) {
	if v.W <= 0 {
		return Vec3{}, false
	}
	n := Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
	inside := math.Abs(n.X) <= 1 && math.Abs(n.Y) <= 1 && math.Abs(n.Z) <= 1
	return n, inside
}
