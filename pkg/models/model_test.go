package models

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

func TestNewModelPlacement(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(unitCubeOBJ), "cube", nil)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	m := NewModel(mesh)

	if m.Position != math3d.Zero3() {
		t.Errorf("Position = %v, want origin", m.Position)
	}
	if m.Scale != math3d.V3(0.05, 0.05, 0.05) {
		t.Errorf("Scale = %v, want 0.05", m.Scale)
	}

	// The cube corner lands at 0.025 in world space.
	corner := m.Matrix().MulVec3(math3d.V3(0.5, 0.5, 0.5))
	if !corner.ApproxEqual(math3d.V3(0.025, 0.025, 0.025), 1e-9) {
		t.Errorf("corner = %v, want (0.025, 0.025, 0.025)", corner)
	}
}

func TestResetRotation(t *testing.T) {
	m := NewModel(NewMesh("empty"))
	m.Rotation = math3d.V3(0.3, 1.2, 0)
	m.ResetRotation()
	if m.Rotation != math3d.Zero3() {
		t.Errorf("Rotation = %v, want zero", m.Rotation)
	}
}

func TestEncodeGLBDecodes(t *testing.T) {
	lib := NewMaterialLib()
	red := DefaultMaterial("red")
	red.Diffuse = [3]float64{1, 0, 0}
	lib.Add(red)
	mesh, err := ParseOBJ(strings.NewReader(unitCubeOBJ), "cube", lib)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeGLB(&buf, mesh); err != nil {
		t.Fatalf("EncodeGLB: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatalf("output is not a GLB container")
	}

	decoded, err := DecodeGLB(&buf, "cube.glb")
	if err != nil {
		t.Fatalf("DecodeGLB: %v", err)
	}
	if decoded.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", decoded.TriangleCount())
	}
	if decoded.MaterialCount() != 1 || decoded.Materials[0].Diffuse != red.Diffuse {
		t.Errorf("materials = %+v, want one red", decoded.Materials)
	}
}

func TestDecodeGLBRejectsGarbage(t *testing.T) {
	_, err := DecodeGLB(strings.NewReader("not a gltf document"), "junk.glb")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(err.Error(), "parse glb") {
		t.Errorf("error = %q, want parse glb prefix", err)
	}
}

func TestMeshFinish(t *testing.T) {
	tests := []struct {
		name   string
		normal math3d.Vec3
		want   math3d.Vec3
	}{
		{"computes missing normals", math3d.Zero3(), math3d.V3(0, 0, 1)},
		{"keeps authored normals", math3d.V3(0, 1, 0), math3d.V3(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := NewMesh("tri")
			for _, p := range []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(2, 0, 0), math3d.V3(0, 4, -1)} {
				mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: p, Normal: tt.normal})
			}
			mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: -1}}
			mesh.Finish()

			if tt.normal == math3d.Zero3() {
				// The face tilts back, so only the sign of Z is fixed.
				if n := mesh.Vertices[0].Normal; n.Z <= 0 || math.Abs(n.Len()-1) > 1e-9 {
					t.Errorf("normal = %v, want unit length facing +Z", n)
				}
			} else if n := mesh.Vertices[0].Normal; n != tt.want {
				t.Errorf("normal = %v, want %v", n, tt.want)
			}
			if mesh.BoundsMin != math3d.V3(0, 0, -1) || mesh.BoundsMax != math3d.V3(2, 4, 0) {
				t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
			}
			if mesh.FaceMaterial(mesh.Faces[0]) != nil {
				t.Error("unbound face has a material")
			}
		})
	}
}
