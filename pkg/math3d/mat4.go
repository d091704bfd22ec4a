package math3d

import "math"

// Mat4 is a 4x4 transform stored column-major: element (row, col) lives at
// index row+4*col and the translation occupies indices 12 to 14.
type Mat4 [16]float64

// Compose builds the model-to-world matrix T * Rx * Ry * Rz * S for a model
// at position with euler rotation (radians) and per-axis scale.
func Compose(position, rotation, scale Vec3) Mat4 {
	sx, cx := math.Sincos(rotation.X)
	sy, cy := math.Sincos(rotation.Y)
	sz, cz := math.Sincos(rotation.Z)

	// Rows of Rx * Ry * Rz.
	r0 := Vec3{cy * cz, -cy * sz, sy}
	r1 := Vec3{cx*sz + sx*sy*cz, cx*cz - sx*sy*sz, -sx * cy}
	r2 := Vec3{sx*sz - cx*sy*cz, sx*cz + cx*sy*sz, cx * cy}

	return Mat4{
		r0.X * scale.X, r1.X * scale.X, r2.X * scale.X, 0,
		r0.Y * scale.Y, r1.Y * scale.Y, r2.Y * scale.Y, 0,
		r0.Z * scale.Z, r1.Z * scale.Z, r2.Z * scale.Z, 0,
		position.X, position.Y, position.Z, 1,
	}
}

// LookAt returns the view matrix of a camera at eye facing center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective returns a projection for a vertical field of view fovy
// (radians) and width/height aspect. Depth maps near to -1 and far to 1.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	nf := 1 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Mul returns a * b, which applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// Project transforms point p (w = 1) into clip space.
func (m Mat4) Project(p Vec3) Vec4 {
	return Vec4{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
		m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15],
	}
}

// MulVec3 transforms point p, dividing by w when the matrix is projective.
func (m Mat4) MulVec3(p Vec3) Vec3 {
	c := m.Project(p)
	if c.W == 0 || c.W == 1 {
		return Vec3{c.X, c.Y, c.Z}
	}
	return Vec3{c.X / c.W, c.Y / c.W, c.Z / c.W}
}

// MulVec3Dir transforms direction d, ignoring translation.
func (m Mat4) MulVec3Dir(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}
