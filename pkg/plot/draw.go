package plot

import (
	"github.com/opd-ai/go-plotutils/internal/geom"
)

// endPath finishes the path of the current state. Zero- and one-vertex
// paths are discarded without reaching the device.
func (p *Plotter) endPath() error {
	s := p.state
	path := &s.path
	if path.Len() < 2 {
		path.reset()
		return nil
	}
	path.classify()
	err := p.renderPath(OpEndPath, s, path)
	path.reset()
	return err
}

// renderPath hands a finished path to the device override, falling back to
// the generic renderer when there is none or it declines.
func (p *Plotter) renderPath(op Op, s *State, path *Path) error {
	if p.ovr.path != nil {
		handled, err := p.ovr.path.RenderPath(s, path)
		if err != nil {
			return opErr(op, err)
		}
		if handled {
			return nil
		}
	}
	return opErr(op, p.genericPath(s, path.Points, path.Closed))
}

// renderShape renders a closed or open polyline built by the engine (an
// approximated arc, ellipse or box) through the path route.
func (p *Plotter) renderShape(op Op, pts []geom.Point) error {
	if len(pts) < 2 {
		return nil
	}
	path := &Path{Points: pts}
	path.classify()
	return p.renderPath(op, p.state, path)
}

func (p *Plotter) cont(pt geom.Point) error {
	s := p.state
	if s.path.Len() == 0 {
		s.path.add(s.Pos)
	}
	s.path.add(pt)
	s.Pos = pt
	if limit := p.info.MaxUnfilledPath; limit > 0 && !s.Filled() && s.path.Len() >= limit {
		// the cursor is the last vertex, so the next Cont continues from it
		return p.endPath()
	}
	return nil
}

// Move ends the path in progress and moves the cursor.
func (p *Plotter) Move(x, y float64) error {
	if err := p.check(OpMove); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	p.state.Pos = geom.Pt(x, y)
	return nil
}

// MoveRel is Move relative to the cursor.
func (p *Plotter) MoveRel(dx, dy float64) error {
	if err := p.check(OpMove); err != nil {
		return err
	}
	return p.Move(p.state.Pos.X+dx, p.state.Pos.Y+dy)
}

// Cont extends the path in progress to (x, y), starting it at the cursor
// if necessary.
func (p *Plotter) Cont(x, y float64) error {
	if err := p.check(OpCont); err != nil {
		return err
	}
	return p.cont(geom.Pt(x, y))
}

// ContRel is Cont relative to the cursor.
func (p *Plotter) ContRel(dx, dy float64) error {
	if err := p.check(OpCont); err != nil {
		return err
	}
	return p.cont(p.state.Pos.Add(geom.Pt(dx, dy)))
}

// Line draws from (x0,y0) to (x1,y1), continuing the path in progress when
// (x0,y0) is the cursor.
func (p *Plotter) Line(x0, y0, x1, y1 float64) error {
	if err := p.check(OpCont); err != nil {
		return err
	}
	start := geom.Pt(x0, y0)
	if p.state.path.Len() == 0 || start != p.state.Pos {
		if err := p.Move(x0, y0); err != nil {
			return err
		}
	}
	return p.cont(geom.Pt(x1, y1))
}

// LineRel is Line with both endpoints relative to the cursor.
func (p *Plotter) LineRel(dx0, dy0, dx1, dy1 float64) error {
	if err := p.check(OpCont); err != nil {
		return err
	}
	pos := p.state.Pos
	return p.Line(pos.X+dx0, pos.Y+dy0, pos.X+dx1, pos.Y+dy1)
}

// EndPath finishes the path in progress.
func (p *Plotter) EndPath() error {
	if err := p.check(OpEndPath); err != nil {
		return err
	}
	return p.endPath()
}

// EndSubpath finishes the path in progress. Compound paths are not kept,
// so it is the same as EndPath.
func (p *Plotter) EndSubpath() error {
	if err := p.check(OpEndSubpath); err != nil {
		return err
	}
	return p.endPath()
}

// ClosePath joins the path in progress back to its first vertex and
// finishes it. The cursor moves to the first vertex.
func (p *Plotter) ClosePath() error {
	if err := p.check(OpClosePath); err != nil {
		return err
	}
	path := &p.state.path
	if path.Len() >= 2 {
		first := path.Points[0]
		if path.Points[path.Len()-1] != first {
			path.add(first)
		}
		p.state.Pos = first
	}
	return p.endPath()
}

// Box draws the rectangle with opposite corners (x0,y0) and (x1,y1). The
// cursor moves to its center.
func (p *Plotter) Box(x0, y0, x1, y1 float64) error {
	if err := p.check(OpBox); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	s := p.state
	p0, p1 := geom.Pt(x0, y0), geom.Pt(x1, y1)
	defer func() { s.Pos = geom.Pt((x0+x1)/2, (y0+y1)/2) }()
	if p.ovr.box != nil {
		handled, err := p.ovr.box.RenderBox(s, p0, p1)
		if err != nil || handled {
			return opErr(OpBox, err)
		}
	}
	pts := []geom.Point{p0, geom.Pt(x1, y0), p1, geom.Pt(x0, y1), p0}
	if s.Orientation < 0 {
		reverse(pts)
	}
	return p.renderShape(OpBox, pts)
}

// BoxRel is Box with corners relative to the cursor.
func (p *Plotter) BoxRel(dx0, dy0, dx1, dy1 float64) error {
	if err := p.check(OpBox); err != nil {
		return err
	}
	pos := p.state.Pos
	return p.Box(pos.X+dx0, pos.Y+dy0, pos.X+dx1, pos.Y+dy1)
}

// Circle draws a circle. The cursor moves to its center.
func (p *Plotter) Circle(x, y, r float64) error {
	if err := p.check(OpCircle); err != nil {
		return err
	}
	if r < 0 {
		return badParam(OpCircle, "negative radius %g", r)
	}
	if err := p.endPath(); err != nil {
		return err
	}
	c := geom.Pt(x, y)
	defer func() { p.state.Pos = c }()
	if p.ovr.circle != nil {
		handled, err := p.ovr.circle.RenderCircle(p.state, c, r)
		if err != nil || handled {
			return opErr(OpCircle, err)
		}
	}
	return p.ellipse(OpCircle, c, r, r, 0)
}

// CircleRel is Circle with its center relative to the cursor.
func (p *Plotter) CircleRel(dx, dy, r float64) error {
	if err := p.check(OpCircle); err != nil {
		return err
	}
	return p.Circle(p.state.Pos.X+dx, p.state.Pos.Y+dy, r)
}

// Ellipse draws an ellipse with semi-axes rx, ry, the first inclined by
// angle degrees. The cursor moves to its center.
func (p *Plotter) Ellipse(x, y, rx, ry, angle float64) error {
	if err := p.check(OpEllipse); err != nil {
		return err
	}
	if rx < 0 || ry < 0 {
		return badParam(OpEllipse, "negative semi-axis %g, %g", rx, ry)
	}
	if err := p.endPath(); err != nil {
		return err
	}
	c := geom.Pt(x, y)
	defer func() { p.state.Pos = c }()
	return p.ellipse(OpEllipse, c, rx, ry, angle)
}

// EllipseRel is Ellipse with its center relative to the cursor.
func (p *Plotter) EllipseRel(dx, dy, rx, ry, angle float64) error {
	if err := p.check(OpEllipse); err != nil {
		return err
	}
	return p.Ellipse(p.state.Pos.X+dx, p.state.Pos.Y+dy, rx, ry, angle)
}

// ellipse is the table's ellipse entry, shared by Circle.
func (p *Plotter) ellipse(op Op, c geom.Point, rx, ry, angle float64) error {
	if p.ovr.ellipse != nil {
		handled, err := p.ovr.ellipse.RenderEllipse(p.state, c, rx, ry, angle)
		if err != nil || handled {
			return opErr(op, err)
		}
	}
	pts := geom.EllipsePoints(c, rx, ry, angle)
	if p.state.Orientation < 0 {
		reverse(pts)
	}
	return p.renderShape(op, pts)
}

// Arc draws the counterclockwise circular arc about (xc,yc) from (x0,y0)
// toward (x1,y1). Coincident endpoints draw nothing. The cursor moves to
// (x1,y1).
func (p *Plotter) Arc(xc, yc, x0, y0, x1, y1 float64) error {
	if err := p.check(OpArc); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	c, p0, p1 := geom.Pt(xc, yc), geom.Pt(x0, y0), geom.Pt(x1, y1)
	defer func() { p.state.Pos = p1 }()
	if p0 == p1 {
		return nil
	}
	if p.ovr.arc != nil {
		handled, err := p.ovr.arc.RenderArc(p.state, c, p0, p1)
		if err != nil || handled {
			return opErr(OpArc, err)
		}
	}
	return p.renderShape(OpArc, geom.ArcPoints(c, p0, p1))
}

// ArcRel is Arc with all points relative to the cursor.
func (p *Plotter) ArcRel(dxc, dyc, dx0, dy0, dx1, dy1 float64) error {
	if err := p.check(OpArc); err != nil {
		return err
	}
	o := p.state.Pos
	return p.Arc(o.X+dxc, o.Y+dyc, o.X+dx0, o.Y+dy0, o.X+dx1, o.Y+dy1)
}

// EllArc draws the quarter ellipse about (xc,yc) with conjugate radii
// ending at (x0,y0) and (x1,y1). The cursor moves to (x1,y1).
func (p *Plotter) EllArc(xc, yc, x0, y0, x1, y1 float64) error {
	if err := p.check(OpEllArc); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	c, p0, p1 := geom.Pt(xc, yc), geom.Pt(x0, y0), geom.Pt(x1, y1)
	defer func() { p.state.Pos = p1 }()
	if p0 == p1 || p0 == c || p1 == c {
		return nil
	}
	if p.ovr.ellArc != nil {
		handled, err := p.ovr.ellArc.RenderEllArc(p.state, c, p0, p1)
		if err != nil || handled {
			return opErr(OpEllArc, err)
		}
	}
	return p.renderShape(OpEllArc, geom.EllArcPoints(c, p0, p1))
}

// EllArcRel is EllArc with all points relative to the cursor.
func (p *Plotter) EllArcRel(dxc, dyc, dx0, dy0, dx1, dy1 float64) error {
	if err := p.check(OpEllArc); err != nil {
		return err
	}
	o := p.state.Pos
	return p.EllArc(o.X+dxc, o.Y+dyc, o.X+dx0, o.Y+dy0, o.X+dx1, o.Y+dy1)
}

// bezier appends a flattened curve to the path in progress, starting a new
// path when the curve does not begin at the cursor.
func (p *Plotter) bezier(pts []geom.Point) error {
	start := pts[0]
	if p.state.path.Len() == 0 || start != p.state.Pos {
		if err := p.endPath(); err != nil {
			return err
		}
		p.state.Pos = start
	}
	for _, pt := range pts[1:] {
		if err := p.cont(pt); err != nil {
			return err
		}
	}
	return nil
}

// Bezier2 appends a quadratic Bézier curve to the path.
func (p *Plotter) Bezier2(x0, y0, x1, y1, x2, y2 float64) error {
	if err := p.check(OpBezier2); err != nil {
		return err
	}
	return p.bezier(geom.Bezier2Points(geom.Pt(x0, y0), geom.Pt(x1, y1), geom.Pt(x2, y2)))
}

// Bezier2Rel is Bezier2 relative to the cursor.
func (p *Plotter) Bezier2Rel(dx0, dy0, dx1, dy1, dx2, dy2 float64) error {
	if err := p.check(OpBezier2); err != nil {
		return err
	}
	o := p.state.Pos
	return p.Bezier2(o.X+dx0, o.Y+dy0, o.X+dx1, o.Y+dy1, o.X+dx2, o.Y+dy2)
}

// Bezier3 appends a cubic Bézier curve to the path.
func (p *Plotter) Bezier3(x0, y0, x1, y1, x2, y2, x3, y3 float64) error {
	if err := p.check(OpBezier3); err != nil {
		return err
	}
	return p.bezier(geom.Bezier3Points(geom.Pt(x0, y0), geom.Pt(x1, y1), geom.Pt(x2, y2), geom.Pt(x3, y3)))
}

// Bezier3Rel is Bezier3 relative to the cursor.
func (p *Plotter) Bezier3Rel(dx0, dy0, dx1, dy1, dx2, dy2, dx3, dy3 float64) error {
	if err := p.check(OpBezier3); err != nil {
		return err
	}
	o := p.state.Pos
	return p.Bezier3(o.X+dx0, o.Y+dy0, o.X+dx1, o.Y+dy1, o.X+dx2, o.Y+dy2, o.X+dx3, o.Y+dy3)
}

// Point draws a single point and moves the cursor there.
func (p *Plotter) Point(x, y float64) error {
	if err := p.check(OpPoint); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	pt := geom.Pt(x, y)
	p.state.Pos = pt
	return opErr(OpPoint, p.point(pt))
}

// PointRel is Point relative to the cursor.
func (p *Plotter) PointRel(dx, dy float64) error {
	if err := p.check(OpPoint); err != nil {
		return err
	}
	return p.Point(p.state.Pos.X+dx, p.state.Pos.Y+dy)
}

func (p *Plotter) point(pt geom.Point) error {
	s := p.state
	if p.ovr.point != nil {
		handled, err := p.ovr.point.RenderPoint(s, pt)
		if err != nil || handled {
			return err
		}
	}
	if !s.Stroked() {
		return nil
	}
	if err := p.dev.SetPenColor(s); err != nil {
		return err
	}
	d := s.Transform.ToDevice(pt)
	if p.info.ClipSegments && !p.info.View.Bounds.Contains(d) {
		return nil
	}
	return p.dev.EmitSegment(s, d, d)
}

func reverse(pts []geom.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
