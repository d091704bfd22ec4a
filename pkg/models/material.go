package models

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
)

// Material is a Wavefront MTL material.
type Material struct {
	Name      string
	Ambient   [3]float64 // Ka
	Diffuse   [3]float64 // Kd
	Specular  [3]float64 // Ks
	Shininess float64    // Ns
	Opacity   float64    // d (or 1 - Tr)

	DiffuseMap string      // map_Kd reference, relative to the library
	Texture    image.Image // Resolved map_Kd, nil until preloaded
}

// HasTexture reports whether the diffuse map has been resolved.
func (m *Material) HasTexture() bool {
	return m.Texture != nil
}

// DefaultMaterial returns the material used for faces without usemtl.
func DefaultMaterial(name string) Material {
	return Material{
		Name:    name,
		Ambient: [3]float64{1, 1, 1},
		Diffuse: [3]float64{0.8, 0.8, 0.8},
		Opacity: 1,
	}
}

// MaterialLib is an ordered set of materials addressable by name.
type MaterialLib struct {
	Materials []Material
	index     map[string]int
}

// NewMaterialLib creates an empty library.
func NewMaterialLib() *MaterialLib {
	return &MaterialLib{index: make(map[string]int)}
}

// Add appends a material, replacing any existing one with the same name.
func (l *MaterialLib) Add(m Material) {
	if i, ok := l.index[m.Name]; ok {
		l.Materials[i] = m
		return
	}
	l.index[m.Name] = len(l.Materials)
	l.Materials = append(l.Materials, m)
}

// Lookup returns the material named name.
func (l *MaterialLib) Lookup(name string) (*Material, bool) {
	if l == nil {
		return nil, false
	}
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return &l.Materials[i], true
}

// Len returns the number of materials.
func (l *MaterialLib) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Materials)
}

// TextureRefs returns the distinct map_Kd references in declaration order.
func (l *MaterialLib) TextureRefs() []string {
	if l == nil {
		return nil
	}
	seen := make(map[string]bool)
	var refs []string
	for _, m := range l.Materials {
		if m.DiffuseMap == "" || seen[m.DiffuseMap] {
			continue
		}
		seen[m.DiffuseMap] = true
		refs = append(refs, m.DiffuseMap)
	}
	return refs
}

// SetTexture binds img to every material referencing ref.
func (l *MaterialLib) SetTexture(ref string, img image.Image) {
	for i := range l.Materials {
		if l.Materials[i].DiffuseMap == ref {
			l.Materials[i].Texture = img
		}
	}
}

// ParseMTL reads a Wavefront material library.
func ParseMTL(r io.Reader) (*MaterialLib, error) {
	lib := NewMaterialLib()
	var cur *Material

	flush := func() {
		if cur != nil {
			lib.Add(*cur)
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		key, args := fields[0], fields[1:]
		if key == "newmtl" {
			if len(args) == 0 {
				return nil, &ParseError{Format: "mtl", Line: lineNo, Msg: "newmtl without a name"}
			}
			flush()
			m := DefaultMaterial(strings.Join(args, " "))
			cur = &m
			continue
		}

		if cur == nil {
			if isMaterialStatement(key) {
				return nil, &ParseError{Format: "mtl", Line: lineNo, Msg: key + " before newmtl"}
			}
			continue
		}

		var err error
		switch key {
		case "Ka":
			cur.Ambient, err = parseRGB(args)
		case "Kd":
			cur.Diffuse, err = parseRGB(args)
		case "Ks":
			cur.Specular, err = parseRGB(args)
		case "Ns":
			cur.Shininess, err = parseScalar(args)
		case "d":
			cur.Opacity, err = parseScalar(args)
		case "Tr":
			var tr float64
			tr, err = parseScalar(args)
			cur.Opacity = 1 - tr
		case "map_Kd":
			if len(args) == 0 {
				err = fmt.Errorf("map_Kd without a path")
			} else {
				// Options such as -s or -o precede the path.
				cur.DiffuseMap = args[len(args)-1]
			}
		}
		if err != nil {
			return nil, &ParseError{Format: "mtl", Line: lineNo, Msg: key, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mtl: %w", err)
	}

	flush()
	return lib, nil
}

// WriteMTL writes lib in Wavefront MTL format.
func WriteMTL(w io.Writer, lib *MaterialLib) error {
	bw := bufio.NewWriter(w)
	for i, m := range lib.Materials {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "newmtl %s\n", m.Name)
		fmt.Fprintf(bw, "Ka %s\n", formatRGB(m.Ambient))
		fmt.Fprintf(bw, "Kd %s\n", formatRGB(m.Diffuse))
		fmt.Fprintf(bw, "Ks %s\n", formatRGB(m.Specular))
		if m.Shininess != 0 {
			fmt.Fprintf(bw, "Ns %s\n", formatFloat(m.Shininess))
		}
		if m.Opacity != 1 {
			fmt.Fprintf(bw, "d %s\n", formatFloat(m.Opacity))
		}
		if m.DiffuseMap != "" {
			fmt.Fprintf(bw, "map_Kd %s\n", m.DiffuseMap)
		}
	}
	return bw.Flush()
}

func isMaterialStatement(key string) bool {
	switch key {
	case "Ka", "Kd", "Ks", "Ns", "d", "Tr", "map_Kd":
		return true
	}
	return false
}

func parseRGB(args []string) ([3]float64, error) {
	var c [3]float64
	if len(args) == 0 {
		return c, fmt.Errorf("missing color components")
	}
	// A single component means grey.
	if len(args) < 3 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return c, err
		}
		return [3]float64{v, v, v}, nil
	}
	for i := range 3 {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return c, err
		}
		c[i] = v
	}
	return c, nil
}

func parseScalar(args []string) (float64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(args[0], 64)
}

func formatRGB(c [3]float64) string {
	return formatFloat(c[0]) + " " + formatFloat(c[1]) + " " + formatFloat(c[2])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
