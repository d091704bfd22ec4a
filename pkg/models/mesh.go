// Package models provides mesh, material and model representations along with
// the OBJ, MTL and GLB codecs used by the viewer.
package models

import (
	"slices"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

// Mesh is an indexed triangle list. Each face points at the material it was
// bound to when parsed.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Axis-aligned bounds in model units, set by Finish.
	BoundsMin, BoundsMax math3d.Vec3
}

type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is one triangle. Material indexes Mesh.Materials; -1 draws with the
// default white material.
type Face struct {
	V        [3]int
	Material int
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Finish prepares a parsed mesh for rendering: vertices without normals
// get area-weighted smooth normals, then the bounds are computed.
func (m *Mesh) Finish() {
	if !m.HasNormals() {
		m.smoothNormals()
	}
	m.bounds()
}

func (m *Mesh) bounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		lo, hi = lo.Min(v.Position), hi.Max(v.Position)
	}
	m.BoundsMin, m.BoundsMax = lo, hi
}

// smoothNormals sums unnormalized face normals into each vertex, so larger
// triangles weigh more.
func (m *Mesh) smoothNormals() {
	sums := make([]math3d.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f.V {
			sums[idx] = sums[idx].Add(n)
		}
	}
	for i, n := range sums {
		m.Vertices[i].Normal = n.Normalize()
	}
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (m *Mesh) HasNormals() bool {
	return slices.ContainsFunc(m.Vertices, func(v MeshVertex) bool {
		return v.Normal.Len() > 0.001
	})
}

// Center returns the middle of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the extent of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

func (m *Mesh) TriangleCount() int { return len(m.Faces) }
func (m *Mesh) VertexCount() int   { return len(m.Vertices) }

// MaterialCount returns the number of materials bound by usemtl or by the
// glTF document.
func (m *Mesh) MaterialCount() int { return len(m.Materials) }

// FaceMaterial returns the material bound to f, or nil when f has none.
func (m *Mesh) FaceMaterial(f Face) *Material {
	if f.Material < 0 || f.Material >= len(m.Materials) {
		return nil
	}
	return &m.Materials[f.Material]
}
