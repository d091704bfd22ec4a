package models

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

// LoadGLB loads a binary or JSON glTF file from disk.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &ParseError{Format: "glb", Err: err}
	}
	return meshFromDocument(doc, filepath.Base(path))
}

// DecodeGLB decodes a self-contained glTF document (GLB or embedded-buffer
// JSON) from r.
func DecodeGLB(r io.Reader, name string) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, &ParseError{Format: "glb", Err: err}
	}
	return meshFromDocument(doc, name)
}

func meshFromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for i, mat := range doc.Materials {
		m := DefaultMaterial(mat.Name)
		if m.Name == "" {
			m.Name = fmt.Sprintf("material%d", i)
		}
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			c := *pbr.BaseColorFactor
			m.Diffuse = [3]float64{c[0], c[1], c[2]}
			m.Opacity = c[3]
		}
		mesh.Materials = append(mesh.Materials, m)
	}

	for _, m := range doc.Meshes {
		if err := processPrimitives(doc, m, mesh); err != nil {
			return nil, &ParseError{Format: "glb", Msg: fmt.Sprintf("mesh %q", m.Name), Err: err}
		}
	}

	mesh.Finish()
	return mesh, nil
}

func processPrimitives(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points have nothing to shade.
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))}
			if i < len(normals) {
				n := normals[i]
				v.Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image.
				v.UV = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			face := Face{Material: material}
			for j := range 3 {
				idx := int(indices[i+j])
				if idx >= len(positions) {
					return fmt.Errorf("index %d out of range (have %d)", idx, len(positions))
				}
				face.V[j] = base + idx
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	return nil
}

// EncodeGLB writes mesh as a binary glTF document with one primitive per
// material group.
func EncodeGLB(w io.Writer, mesh *Mesh) error {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	uvs := make([][2]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
		uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
	}
	posAcc := modeler.WritePosition(doc, positions)
	normAcc := modeler.WriteNormal(doc, normals)
	uvAcc := modeler.WriteTextureCoord(doc, uvs)

	for _, m := range mesh.Materials {
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: m.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], m.Opacity},
			},
		})
	}

	groups := make(map[int][]uint32)
	var order []int
	for _, f := range mesh.Faces {
		if _, ok := groups[f.Material]; !ok {
			order = append(order, f.Material)
		}
		groups[f.Material] = append(groups[f.Material], uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	gm := &gltf.Mesh{Name: mesh.Name}
	for _, mat := range order {
		prim := &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, groups[mat])),
			Attributes: map[string]int{
				gltf.POSITION:   posAcc,
				gltf.NORMAL:     normAcc,
				gltf.TEXCOORD_0: uvAcc,
			},
		}
		if mat >= 0 {
			prim.Material = gltf.Index(mat)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}
	doc.Meshes = []*gltf.Mesh{gm}
	doc.Nodes = []*gltf.Node{{Name: mesh.Name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
