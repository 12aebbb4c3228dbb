package geom

import "math"

// Matrix is a 2D affine transformation:
//
//	| XX  XY |   | x |   | X0 |
//	| YX  YY | * | y | + | Y0 |
type Matrix struct {
	XX, XY float64
	YX, YY float64
	X0, Y0 float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

// TranslateMatrix returns a matrix that translates by (tx, ty).
func TranslateMatrix(tx, ty float64) Matrix {
	return Matrix{XX: 1, YY: 1, X0: tx, Y0: ty}
}

// ScaleMatrix returns a matrix that scales by (sx, sy).
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{XX: sx, YY: sy}
}

// RotateMatrix returns a counterclockwise rotation by angle degrees.
func RotateMatrix(degrees float64) Matrix {
	s, c := sincosDeg(degrees)
	return Matrix{XX: c, XY: -s, YX: s, YY: c}
}

// sincosDeg returns exact values at multiples of 90 degrees, so a quarter
// turn yields exactly zero diagonal terms and a half turn exactly zero
// off-diagonal terms.
func sincosDeg(degrees float64) (s, c float64) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}

// Then returns the matrix that applies m first and n second,
// so that m.Then(n).Apply(p) == n.Apply(m.Apply(p)).
func (m Matrix) Then(n Matrix) Matrix {
	return Matrix{
		XX: n.XX*m.XX + n.XY*m.YX,
		XY: n.XX*m.XY + n.XY*m.YY,
		YX: n.YX*m.XX + n.YY*m.YX,
		YY: n.YX*m.XY + n.YY*m.YY,
		X0: n.XX*m.X0 + n.XY*m.Y0 + n.X0,
		Y0: n.YX*m.X0 + n.YY*m.Y0 + n.Y0,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.XX*p.X + m.XY*p.Y + m.X0,
		Y: m.YX*p.X + m.YY*p.Y + m.Y0,
	}
}

// ApplyDistance transforms a vector, ignoring the translation.
func (m Matrix) ApplyDistance(v Point) Point {
	return Point{
		X: m.XX*v.X + m.XY*v.Y,
		Y: m.YX*v.X + m.YY*v.Y,
	}
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float64 {
	return m.XX*m.YY - m.XY*m.YX
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.Det()
	if det == 0 || math.IsInf(det, 0) || math.IsNaN(det) {
		return Matrix{}, false
	}
	d := 1 / det
	return Matrix{
		XX: m.YY * d,
		XY: -m.XY * d,
		YX: -m.YX * d,
		YY: m.XX * d,
		X0: (m.XY*m.Y0 - m.YY*m.X0) * d,
		Y0: (m.YX*m.X0 - m.XX*m.Y0) * d,
	}, true
}

// Norm returns the spectral norm of the linear part: the largest factor by
// which m can stretch a unit vector.
func (m Matrix) Norm() float64 {
	a := m.XX*m.XX + m.YX*m.YX
	b := m.XX*m.XY + m.YX*m.YY
	c := m.XY*m.XY + m.YY*m.YY
	// largest eigenvalue of the symmetric matrix [a b; b c]
	tr := a + c
	disc := math.Sqrt(math.Max(0, (a-c)*(a-c)+4*b*b))
	return math.Sqrt((tr + disc) / 2)
}

// MinorNorm returns the smallest stretch factor of the linear part.
func (m Matrix) MinorNorm() float64 {
	a := m.XX*m.XX + m.YX*m.YX
	b := m.XX*m.XY + m.YX*m.YY
	c := m.XY*m.XY + m.YY*m.YY
	tr := a + c
	disc := math.Sqrt(math.Max(0, (a-c)*(a-c)+4*b*b))
	return math.Sqrt(math.Max(0, (tr-disc)/2))
}

// maxAbs returns the largest magnitude among the linear coefficients.
func (m Matrix) maxAbs() float64 {
	return math.Max(math.Max(math.Abs(m.XX), math.Abs(m.XY)),
		math.Max(math.Abs(m.YX), math.Abs(m.YY)))
}
