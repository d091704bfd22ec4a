package render

import (
	"math"
	"testing"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.normalize()

	if math.Abs(plane.Normal.Len()-1) > 1e-9 {
		t.Errorf("normal length = %v, want 1", plane.Normal.Len())
	}
	if math.Abs(plane.D-2) > 1e-9 {
		t.Errorf("D = %v, want 2", plane.D)
	}
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}

	moved := box.Transform(math3d.Compose(math3d.V3(1, 2, 3), math3d.Zero3(), math3d.One3()))
	if !moved.Min.ApproxEqual(math3d.V3(0, 1, 2), 1e-9) || !moved.Max.ApproxEqual(math3d.V3(2, 3, 4), 1e-9) {
		t.Errorf("translated box = %+v", moved)
	}

	// A 45° turn about Y widens the footprint to ±√2 in X and Z.
	turned := box.Transform(math3d.Compose(math3d.Zero3(), math3d.V3(0, math.Pi/4, 0), math3d.One3()))
	if math.Abs(turned.Max.X-math.Sqrt2) > 1e-9 || math.Abs(turned.Max.Z-math.Sqrt2) > 1e-9 {
		t.Errorf("rotated box = %+v", turned)
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	cam := NewCamera()
	f := FrustumFromMatrix(cam.ViewProjectionMatrix())

	tests := []struct {
		name    string
		box     AABB
		visible bool
	}{
		{"at origin", AABB{Min: math3d.V3(-0.5, -0.5, -0.5), Max: math3d.V3(0.5, 0.5, 0.5)}, true},
		{"straddling near plane", AABB{Min: math3d.V3(-1, -1, 4), Max: math3d.V3(1, 1, 6)}, true},
		{"behind camera", AABB{Min: math3d.V3(-1, -1, 8), Max: math3d.V3(1, 1, 10)}, false},
		{"far to the left", AABB{Min: math3d.V3(-120, -1, -1), Max: math3d.V3(-100, 1, 1)}, false},
		{"beyond far plane", AABB{Min: math3d.V3(-1, -1, -2000), Max: math3d.V3(1, 1, -1500)}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectAABB(tc.box); got != tc.visible {
				t.Errorf("IntersectAABB() = %v, want %v", got, tc.visible)
			}
		})
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := FrustumFromMatrix(NewCamera().ViewProjectionMatrix())
	box := AABB{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}
	b.ResetTimer()
	for b.Loop() {
		f.IntersectAABB(box)
	}
}
