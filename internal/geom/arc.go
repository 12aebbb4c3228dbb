package geom

import "math"

// SegmentsPerCircle is the number of chords used to approximate a full
// circle. Partial arcs use a proportional number, never less than one.
const SegmentsPerCircle = 72

// BezierSegments is the number of chords used to flatten a Bézier curve.
const BezierSegments = 24

func chords(sweep float64) int {
	n := int(math.Ceil(math.Abs(sweep)/(2*math.Pi)*SegmentsPerCircle - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}

// ArcPoints approximates the counterclockwise circular arc about c that
// starts at p0 and ends on the ray from c through p1. The radius is
// |p0-c|. The returned polyline starts exactly at p0; when p1 is not at
// the same distance from c the last vertex is pulled onto the circle.
// Coincident endpoints yield a single point: there is no arc to draw.
func ArcPoints(c, p0, p1 Point) []Point {
	if p0 == p1 {
		return []Point{p0}
	}
	r := p0.Sub(c).Len()
	a0 := math.Atan2(p0.Y-c.Y, p0.X-c.X)
	a1 := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	sweep := a1 - a0
	for sweep <= 0 {
		sweep += 2 * math.Pi
	}
	n := chords(sweep)
	pts := make([]Point, 0, n+1)
	pts = append(pts, p0)
	for i := 1; i <= n; i++ {
		s, co := math.Sincos(a0 + sweep*float64(i)/float64(n))
		pts = append(pts, Point{X: c.X + r*co, Y: c.Y + r*s})
	}
	return pts
}

// EllArcPoints approximates the quarter ellipse about c whose conjugate
// radii are p0-c and p1-c, running from p0 to p1.
func EllArcPoints(c, p0, p1 Point) []Point {
	u := p0.Sub(c)
	v := p1.Sub(c)
	n := chords(math.Pi / 2)
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := math.Pi / 2 * float64(i) / float64(n)
		s, co := math.Sincos(t)
		pts = append(pts, c.Add(u.Mul(co)).Add(v.Mul(s)))
	}
	pts[0], pts[n] = p0, p1
	return pts
}

// EllipsePoints approximates a full ellipse with semi-axes rx and ry, the
// rx axis inclined by angle degrees. The polygon is closed: its last vertex
// equals its first.
func EllipsePoints(c Point, rx, ry, angle float64) []Point {
	rot := RotateMatrix(angle)
	n := SegmentsPerCircle
	pts := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		s, co := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts = append(pts, c.Add(rot.ApplyDistance(Point{X: rx * co, Y: ry * s})))
	}
	return append(pts, pts[0])
}

// Bezier2Points flattens a quadratic Bézier curve.
func Bezier2Points(p0, p1, p2 Point) []Point {
	pts := make([]Point, 0, BezierSegments+1)
	for i := 0; i <= BezierSegments; i++ {
		t := float64(i) / BezierSegments
		u := 1 - t
		pts = append(pts, p0.Mul(u*u).Add(p1.Mul(2*u*t)).Add(p2.Mul(t*t)))
	}
	return pts
}

// Bezier3Points flattens a cubic Bézier curve.
func Bezier3Points(p0, p1, p2, p3 Point) []Point {
	pts := make([]Point, 0, BezierSegments+1)
	for i := 0; i <= BezierSegments; i++ {
		t := float64(i) / BezierSegments
		u := 1 - t
		pts = append(pts, p0.Mul(u*u*u).
			Add(p1.Mul(3*u*u*t)).
			Add(p2.Mul(3*u*t*t)).
			Add(p3.Mul(t*t*t)))
	}
	return pts
}

// EllipseAxes returns the semi-axes and inclination, in device space, of
// the image under m of the ellipse with semi-axes rx, ry inclined by angle
// degrees. It lets a backend with a native ellipse primitive draw ellipses
// under any affine map.
func EllipseAxes(m Matrix, rx, ry, angle float64) (drx, dry, dangle float64) {
	rot := RotateMatrix(angle)
	u := m.ApplyDistance(rot.ApplyDistance(Point{X: rx}))
	v := m.ApplyDistance(rot.ApplyDistance(Point{Y: ry}))
	// Conjugate diameters u, v; the principal axes follow from the
	// quadratic form Q = u uᵀ + v vᵀ.
	a := u.X*u.X + v.X*v.X
	b := u.X*u.Y + v.X*v.Y
	c := u.Y*u.Y + v.Y*v.Y
	theta := 0.5 * math.Atan2(2*b, a-c)
	tr := a + c
	disc := math.Sqrt(math.Max(0, (a-c)*(a-c)+4*b*b))
	drx = math.Sqrt((tr + disc) / 2)
	dry = math.Sqrt(math.Max(0, (tr-disc)/2))
	return drx, dry, theta * 180 / math.Pi
}
