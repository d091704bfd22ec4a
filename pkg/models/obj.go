package models

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

// objIndex is a resolved v/vt/vn triple; -1 marks an absent attribute.
type objIndex struct {
	v, vt, vn int
}

type objParser struct {
	lib  *MaterialLib
	mesh *Mesh

	positions []math3d.Vec3
	uvs       []math3d.Vec2
	normals   []math3d.Vec3

	vertexCache map[objIndex]int
	materialIdx map[string]int
	current     int
}

// ParseOBJ reads Wavefront OBJ geometry and binds usemtl statements to lib.
// lib may be nil, in which case every referenced material gets defaults.
// Polygons are fan-triangulated. Missing normals are computed smoothly.
func ParseOBJ(r io.Reader, name string, lib *MaterialLib) (*Mesh, error) {
	p := &objParser{
		lib:         lib,
		mesh:        NewMesh(name),
		vertexCache: make(map[objIndex]int),
		materialIdx: make(map[string]int),
		current:     -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		if err := p.statement(fields[0], fields[1:]); err != nil {
			return nil, &ParseError{Format: "obj", Line: lineNo, Msg: fields[0], Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	p.mesh.Finish()
	return p.mesh, nil
}

func (p *objParser) statement(key string, args []string) error {
	switch key {
	case "v":
		v, err := parseVec3(args)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)
	case "vn":
		v, err := parseVec3(args)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v.Normalize())
	case "vt":
		if len(args) < 1 {
			return fmt.Errorf("expected at least 1 component")
		}
		u, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		var v float64
		if len(args) > 1 {
			if v, err = strconv.ParseFloat(args[1], 64); err != nil {
				return err
			}
		}
		p.uvs = append(p.uvs, math3d.V2(u, v))
	case "f":
		return p.face(args)
	case "usemtl":
		if len(args) == 0 {
			return fmt.Errorf("missing material name")
		}
		p.current = p.material(strings.Join(args, " "))
	}
	// mtllib, o, g and s carry no geometry: the library is bound by the caller.
	return nil
}

func (p *objParser) material(name string) int {
	if idx, ok := p.materialIdx[name]; ok {
		return idx
	}
	m, ok := p.lib.Lookup(name)
	if !ok {
		def := DefaultMaterial(name)
		m = &def
	}
	idx := len(p.mesh.Materials)
	p.mesh.Materials = append(p.mesh.Materials, *m)
	p.materialIdx[name] = idx
	return idx
}

func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(args))
	}

	verts := make([]int, len(args))
	for i, arg := range args {
		idx, err := p.resolve(arg)
		if err != nil {
			return err
		}
		verts[i] = p.vertex(idx)
	}

	for i := 1; i+1 < len(verts); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{
			V:        [3]int{verts[0], verts[i], verts[i+1]},
			Material: p.current,
		})
	}
	return nil
}

// resolve turns "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based indices.
func (p *objParser) resolve(ref string) (objIndex, error) {
	parts := strings.Split(ref, "/")
	idx := objIndex{v: -1, vt: -1, vn: -1}

	var err error
	if idx.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return idx, fmt.Errorf("vertex %q: %w", ref, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.vt, err = resolveIndex(parts[1], len(p.uvs)); err != nil {
			return idx, fmt.Errorf("texcoord %q: %w", ref, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return idx, fmt.Errorf("normal %q: %w", ref, err)
		}
	}
	return idx, nil
}

func (p *objParser) vertex(idx objIndex) int {
	if i, ok := p.vertexCache[idx]; ok {
		return i
	}
	v := MeshVertex{Position: p.positions[idx.v]}
	if idx.vt >= 0 {
		v.UV = p.uvs[idx.vt]
	}
	if idx.vn >= 0 {
		v.Normal = p.normals[idx.vn]
	}
	i := len(p.mesh.Vertices)
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.vertexCache[idx] = i
	return i
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	}
	return 0, fmt.Errorf("index %d out of range (have %d)", n, count)
}

func parseVec3(args []string) (math3d.Vec3, error) {
	if len(args) < 3 {
		return math3d.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(args))
	}
	var c [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		c[i] = v
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

// WriteOBJ writes mesh in Wavefront OBJ format. When mtllib is non-empty the
// output references it and groups faces by usemtl.
func WriteOBJ(w io.Writer, mesh *Mesh, mtllib string) error {
	bw := bufio.NewWriter(w)
	if mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtllib)
	}
	if mesh.Name != "" {
		fmt.Fprintf(bw, "o %s\n", mesh.Name)
	}

	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.Position.X), formatFloat(v.Position.Y), formatFloat(v.Position.Z))
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vt %s %s\n", formatFloat(v.UV.X), formatFloat(v.UV.Y))
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(v.Normal.X), formatFloat(v.Normal.Y), formatFloat(v.Normal.Z))
	}

	current := -1
	for _, f := range mesh.Faces {
		if mtllib != "" && f.Material != current && f.Material >= 0 {
			fmt.Fprintf(bw, "usemtl %s\n", mesh.Materials[f.Material].Name)
			current = f.Material
		}
		a, b, c := f.V[0]+1, f.V[1]+1, f.V[2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return bw.Flush()
}
