package models

import (
	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

// AuthoredScale is the uniform downscale applied to loaded assets. Source
// assets are authored in units twenty times larger than the viewport's.
const AuthoredScale = 0.05

// Model is a mesh placed in the scene.
type Model struct {
	Mesh     *Mesh
	Position math3d.Vec3
	Rotation math3d.Vec3 // Euler angles in radians (pitch, yaw, roll)
	Scale    math3d.Vec3
}

// NewModel places mesh at the origin with no rotation and AuthoredScale.
func NewModel(mesh *Mesh) *Model {
	return &Model{
		Mesh:  mesh,
		Scale: math3d.Uniform(AuthoredScale),
	}
}

// Matrix returns the model-to-world transform.
func (m *Model) Matrix() math3d.Mat4 {
	return math3d.Compose(m.Position, m.Rotation, m.Scale)
}

// ResetRotation zeroes the rotation.
func (m *Model) ResetRotation() {
	m.Rotation = math3d.Zero3()
}

// MaterialLib rebuilds a material library from the mesh's bound materials.
func (m *Mesh) MaterialLib() *MaterialLib {
	lib := NewMaterialLib()
	for _, mat := range m.Materials {
		lib.Add(mat)
	}
	return lib
}
