package geom

// ClipFlags reports the outcome of ClipLine.
type ClipFlags uint8

const (
	// ClipAccepted is set when some part of the segment is inside the window.
	ClipAccepted ClipFlags = 1 << iota
	// ClipFirstMoved is set when the first endpoint had to be moved.
	ClipFirstMoved
	// ClipSecondMoved is set when the second endpoint had to be moved.
	ClipSecondMoved
)

// Accepted reports whether the segment survived clipping.
func (f ClipFlags) Accepted() bool { return f&ClipAccepted != 0 }

// outcode bits
const (
	outLeft = 1 << iota
	outRight
	outBottom
	outTop
)

// clipFuzz is the margin, relative to the window extent, inside which a
// point just outside the window is treated as lying on its boundary.
const clipFuzz = 1e-10

func outcode(p Point, w Rect, fx, fy float64) int {
	code := 0
	switch {
	case p.X < w.Min.X-fx:
		code |= outLeft
	case p.X > w.Max.X+fx:
		code |= outRight
	}
	switch {
	case p.Y < w.Min.Y-fy:
		code |= outBottom
	case p.Y > w.Max.Y+fy:
		code |= outTop
	}
	return code
}

// ClipLine clips the segment p0-p1 to the window w with the Cohen-Sutherland
// algorithm. It returns the clipped endpoints and flags telling whether the
// segment was accepted and which endpoints were moved. A rejected segment is
// returned unchanged.
func ClipLine(p0, p1 Point, w Rect) (Point, Point, ClipFlags) {
	fx := clipFuzz * w.Dx()
	fy := clipFuzz * w.Dy()
	q0, q1 := p0, p1
	c0 := outcode(q0, w, fx, fy)
	c1 := outcode(q1, w, fx, fy)
	var flags ClipFlags

	// each pass clears at least one outcode bit, so four passes suffice
	for i := 0; i <= 4; i++ {
		if c0|c1 == 0 {
			return q0, q1, flags | ClipAccepted
		}
		if c0&c1 != 0 {
			return p0, p1, 0
		}

		code := c0
		if code == 0 {
			code = c1
		}

		var p Point
		dx, dy := q1.X-q0.X, q1.Y-q0.Y
		switch {
		case code&outTop != 0:
			p = Point{X: q0.X + dx*(w.Max.Y-q0.Y)/dy, Y: w.Max.Y}
		case code&outBottom != 0:
			p = Point{X: q0.X + dx*(w.Min.Y-q0.Y)/dy, Y: w.Min.Y}
		case code&outRight != 0:
			p = Point{X: w.Max.X, Y: q0.Y + dy*(w.Max.X-q0.X)/dx}
		case code&outLeft != 0:
			p = Point{X: w.Min.X, Y: q0.Y + dy*(w.Min.X-q0.X)/dx}
		}

		if code == c0 {
			q0 = p
			c0 = outcode(q0, w, fx, fy)
			flags |= ClipFirstMoved
		} else {
			q1 = p
			c1 = outcode(q1, w, fx, fy)
			flags |= ClipSecondMoved
		}
	}
	return p0, p1, 0
}

// ClipPolyline clips every segment of a connected polyline and returns the
// surviving runs. Consecutive accepted segments that share an unmoved
// endpoint are merged into a single run.
func ClipPolyline(pts []Point, w Rect) [][]Point {
	var runs [][]Point
	var cur []Point
	for i := 0; i+1 < len(pts); i++ {
		q0, q1, flags := ClipLine(pts[i], pts[i+1], w)
		if !flags.Accepted() {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		if len(cur) == 0 || flags&ClipFirstMoved != 0 {
			if len(cur) > 0 {
				runs = append(runs, cur)
			}
			cur = []Point{q0}
		}
		cur = append(cur, q1)
		if flags&ClipSecondMoved != 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}
