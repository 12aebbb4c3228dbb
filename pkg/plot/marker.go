package plot

import (
	"math"

	"github.com/opd-ai/go-plotutils/internal/geom"
)

// Marker types 1 through 31 are the standard symbols; larger values draw
// the character with that code point, centered.
const (
	MarkerNone = iota
	MarkerDot
	MarkerPlus
	MarkerAsterisk
	MarkerCircle
	MarkerCross
	MarkerSquare
	MarkerTriangle
	MarkerDiamond
	MarkerStar
	MarkerInvertedTriangle
	MarkerStarburst
	MarkerFancyPlus
	MarkerFancyCross
	MarkerFancySquare
	MarkerFancyDiamond
	MarkerFilledCircle
	MarkerFilledSquare
	MarkerFilledTriangle
	MarkerFilledDiamond
	MarkerFilledInvertedTriangle
	MarkerFilledFancySquare
	MarkerFilledFancyDiamond
	MarkerHalfFilledCircle
	MarkerHalfFilledSquare
	MarkerHalfFilledTriangle
	MarkerHalfFilledDiamond
	MarkerHalfFilledInvertedTriangle
	MarkerHalfFilledFancySquare
	MarkerHalfFilledFancyDiamond
	MarkerOctagon
	MarkerFilledOctagon

	numMarkers
)

// markerShape is a symbol in a unit frame of radius 1, y up. The first
// stroke is the outline that gets filled.
type markerShape struct {
	strokes [][]geom.Point
	level   int
}

func regular(n int, phase float64, r float64) []geom.Point {
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i < n; i++ {
		s, c := math.Sincos(phase + 2*math.Pi*float64(i)/float64(n))
		pts = append(pts, geom.Pt(r*c, r*s))
	}
	return append(pts, pts[0])
}

func star5() []geom.Point {
	pts := make([]geom.Point, 0, 11)
	for i := 0; i < 10; i++ {
		r := 1.0
		if i%2 == 1 {
			r = 0.4
		}
		s, c := math.Sincos(math.Pi/2 + math.Pi*float64(i)/5)
		pts = append(pts, geom.Pt(r*c, r*s))
	}
	return append(pts, pts[0])
}

func seg(x0, y0, x1, y1 float64) []geom.Point {
	return []geom.Point{geom.Pt(x0, y0), geom.Pt(x1, y1)}
}

var markerShapes = func() [numMarkers]markerShape {
	var m [numMarkers]markerShape
	circle := regular(geom.SegmentsPerCircle/3, 0, 1)
	square := regular(4, math.Pi/4, math.Sqrt2)
	triangle := regular(3, math.Pi/2, 1)
	inverted := regular(3, -math.Pi/2, 1)
	diamond := regular(4, 0, 1)
	octagon := regular(8, math.Pi/8, 1)
	plus := [][]geom.Point{seg(-1, 0, 1, 0), seg(0, -1, 0, 1)}
	d := math.Sqrt2 / 2
	cross := [][]geom.Point{seg(-d, -d, d, d), seg(-d, d, d, -d)}
	innerSquare := regular(4, math.Pi/4, math.Sqrt2/2)
	innerDiamond := regular(4, 0, 0.5)

	m[MarkerPlus] = markerShape{strokes: plus}
	m[MarkerAsterisk] = markerShape{strokes: append(append([][]geom.Point{}, plus...), cross...)}
	m[MarkerCircle] = markerShape{strokes: [][]geom.Point{circle}}
	m[MarkerCross] = markerShape{strokes: cross}
	m[MarkerSquare] = markerShape{strokes: [][]geom.Point{square}}
	m[MarkerTriangle] = markerShape{strokes: [][]geom.Point{triangle}}
	m[MarkerDiamond] = markerShape{strokes: [][]geom.Point{diamond}}
	m[MarkerStar] = markerShape{strokes: [][]geom.Point{star5()}}
	m[MarkerInvertedTriangle] = markerShape{strokes: [][]geom.Point{inverted}}
	m[MarkerStarburst] = markerShape{strokes: [][]geom.Point{
		seg(-1, 0, 1, 0), seg(0, -1, 0, 1),
		seg(-1, -1, 1, 1), seg(-1, 1, 1, -1),
	}}
	m[MarkerFancyPlus] = markerShape{strokes: append([][]geom.Point{square}, plus...)}
	m[MarkerFancyCross] = markerShape{strokes: append([][]geom.Point{diamond}, cross...)}
	m[MarkerFancySquare] = markerShape{strokes: [][]geom.Point{square, innerSquare}}
	m[MarkerFancyDiamond] = markerShape{strokes: [][]geom.Point{diamond, innerDiamond}}

	solid := func(base markerShape) markerShape {
		base.level = 1
		return base
	}
	half := func(base markerShape) markerShape {
		base.level = 0x8000
		return base
	}
	m[MarkerFilledCircle] = solid(m[MarkerCircle])
	m[MarkerFilledSquare] = solid(m[MarkerSquare])
	m[MarkerFilledTriangle] = solid(m[MarkerTriangle])
	m[MarkerFilledDiamond] = solid(m[MarkerDiamond])
	m[MarkerFilledInvertedTriangle] = solid(m[MarkerInvertedTriangle])
	m[MarkerFilledFancySquare] = solid(m[MarkerFancySquare])
	m[MarkerFilledFancyDiamond] = solid(m[MarkerFancyDiamond])
	m[MarkerHalfFilledCircle] = half(m[MarkerCircle])
	m[MarkerHalfFilledSquare] = half(m[MarkerSquare])
	m[MarkerHalfFilledTriangle] = half(m[MarkerTriangle])
	m[MarkerHalfFilledDiamond] = half(m[MarkerDiamond])
	m[MarkerHalfFilledInvertedTriangle] = half(m[MarkerInvertedTriangle])
	m[MarkerHalfFilledFancySquare] = half(m[MarkerFancySquare])
	m[MarkerHalfFilledFancyDiamond] = half(m[MarkerFancyDiamond])
	m[MarkerOctagon] = markerShape{strokes: [][]geom.Point{octagon}}
	m[MarkerFilledOctagon] = solid(m[MarkerOctagon])
	return m
}()

// Marker draws a marker symbol of the given type and size (user units)
// at (x, y), and moves the cursor there. Symbols keep their shape under
// any transform.
func (p *Plotter) Marker(x, y float64, typ int, size float64) error {
	if err := p.check(OpMarker); err != nil {
		return err
	}
	if typ < 0 {
		return badParam(OpMarker, "marker type %d", typ)
	}
	if size < 0 || math.IsNaN(size) {
		return badParam(OpMarker, "marker size %g", size)
	}
	if err := p.endPath(); err != nil {
		return err
	}
	pt := geom.Pt(x, y)
	s := p.state
	defer func() { s.Pos = pt }()
	if p.ovr.marker != nil {
		handled, err := p.ovr.marker.RenderMarker(s, pt, typ, size)
		if err != nil || handled {
			return opErr(OpMarker, err)
		}
	}
	return opErr(OpMarker, p.genericMarker(s, pt, typ, size))
}

// MarkerRel is Marker relative to the cursor.
func (p *Plotter) MarkerRel(dx, dy float64, typ int, size float64) error {
	if err := p.check(OpMarker); err != nil {
		return err
	}
	return p.Marker(p.state.Pos.X+dx, p.state.Pos.Y+dy, typ, size)
}

func (p *Plotter) genericMarker(s *State, pt geom.Point, typ int, size float64) error {
	switch {
	case typ == MarkerNone:
		return nil
	case typ == MarkerDot:
		return p.point(pt)
	case typ >= numMarkers:
		return p.markerGlyph(s, pt, rune(typ), size)
	}

	shape := markerShapes[typ]
	d := s.Transform.ToDevice(pt)
	r := s.Transform.DeviceLength(size) / 2
	sy := r
	if p.info.View.FlipY {
		sy = -r
	}
	place := func(unit []geom.Point) []geom.Point {
		out := make([]geom.Point, len(unit))
		for i, u := range unit {
			out[i] = geom.Pt(d.X+u.X*r, d.Y+u.Y*sy)
		}
		return out
	}

	if shape.level > 0 {
		ink := s.clone()
		ink.FillColor = s.PenColor
		ink.FillLevel = shape.level
		if err := p.fill(ink, [][]geom.Point{place(shape.strokes[0])}, NonZero); err != nil {
			return err
		}
	}
	if err := p.dev.SetPenColor(s); err != nil {
		return err
	}
	for _, stroke := range shape.strokes {
		if err := p.stroke(s, place(stroke), false); err != nil {
			return err
		}
	}
	return nil
}

// markerGlyph draws a character marker centered on pt, upright and sized
// so the em square equals size.
func (p *Plotter) markerGlyph(s *State, pt geom.Point, r rune, size float64) error {
	savedSize, savedAngle := s.FontSize, s.TextAngle
	defer func() { s.FontSize, s.TextAngle = savedSize, savedAngle }()
	s.FontSize, s.TextAngle, s.Pos = size, 0, pt
	return p.ALabel(AlignCenter, AlignMiddle, string(r))
}
