package raster

import (
	"math"

	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// pen describes how a polyline is stroked, in device pixels.
type pen struct {
	half  float64
	join  plot.JoinMode
	cap   plot.CapMode
	limit float64
}

func penOf(s *plot.State) pen {
	return pen{
		half:  math.Max(s.DeviceLineWidth(), 1) / 2,
		join:  s.Join,
		cap:   s.Cap,
		limit: s.MiterLimit,
	}
}

// area returns twice the signed area of a polygon.
func area(poly []geom.Point) float64 {
	a := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		a += poly[i].Cross(poly[j])
	}
	return a
}

// orient returns poly with positive (counterclockwise) area when ccw is
// set, negative otherwise.
func orient(poly []geom.Point, ccw bool) []geom.Point {
	if (area(poly) > 0) == ccw {
		return poly
	}
	out := make([]geom.Point, len(poly))
	for i, p := range poly {
		out[len(poly)-1-i] = p
	}
	return out
}

func disc(c geom.Point, r float64) []geom.Point {
	n := int(math.Ceil(r * 2))
	n = max(8, min(n, 64))
	pts := make([]geom.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))
	}
	return pts
}

func unit(v geom.Point) geom.Point {
	l := v.Len()
	return geom.Pt(v.X/l, v.Y/l)
}

func normal(d geom.Point) geom.Point {
	return geom.Pt(-d.Y, d.X)
}

func dedupe(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for i, p := range pts {
		if i == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// outline returns polygons whose union is the stroke of pts. All of them
// run counterclockwise so the rasterizer's winding accumulation forms a
// union.
func (pn pen) outline(pts []geom.Point, closed bool) [][]geom.Point {
	pts = dedupe(pts)
	if closed && len(pts) > 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	h := pn.half
	if len(pts) == 1 {
		if pn.cap == plot.CapRound {
			return [][]geom.Point{disc(pts[0], h)}
		}
		p := pts[0]
		return [][]geom.Point{{
			geom.Pt(p.X-h, p.Y-h), geom.Pt(p.X+h, p.Y-h),
			geom.Pt(p.X+h, p.Y+h), geom.Pt(p.X-h, p.Y+h),
		}}
	}

	var polys [][]geom.Point
	add := func(poly []geom.Point) {
		polys = append(polys, orient(poly, true))
	}
	n := len(pts)
	segs := n - 1
	if closed && n > 2 {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		d := unit(b.Sub(a))
		nv := normal(d).Mul(h)
		if !closed && pn.cap == plot.CapProjecting {
			if i == 0 {
				a = a.Sub(d.Mul(h))
			}
			if i == segs-1 {
				b = b.Add(d.Mul(h))
			}
		}
		add([]geom.Point{a.Add(nv), b.Add(nv), b.Sub(nv), a.Sub(nv)})
	}

	if !closed {
		pn.addCap(add, pts[0], unit(pts[0].Sub(pts[1])))
		pn.addCap(add, pts[n-1], unit(pts[n-1].Sub(pts[n-2])))
	}
	for i := 0; i < n; i++ {
		if !closed && (i == 0 || i == n-1) {
			continue
		}
		if closed && n <= 2 {
			break
		}
		prev, next := pts[(i+n-1)%n], pts[(i+1)%n]
		pn.addJoin(add, pts[i], unit(pts[i].Sub(prev)), unit(next.Sub(pts[i])))
	}
	return polys
}

// addCap adds the end cap at p, where d points away from the line.
func (pn pen) addCap(add func([]geom.Point), p, d geom.Point) {
	h := pn.half
	nv := normal(d).Mul(h)
	switch pn.cap {
	case plot.CapRound:
		add(disc(p, h))
	case plot.CapTriangular:
		add([]geom.Point{p.Add(nv), p.Add(d.Mul(h)), p.Sub(nv)})
	}
}

// addJoin fills the wedge between two segments meeting at v, with
// incoming direction d0 and outgoing direction d1.
func (pn pen) addJoin(add func([]geom.Point), v, d0, d1 geom.Point) {
	h := pn.half
	turn := d0.Cross(d1)
	if math.Abs(turn) < 1e-12 && d0.X*d1.X+d0.Y*d1.Y > 0 {
		return
	}
	// the outer side is to the right of a left turn
	side := -1.0
	if turn < 0 {
		side = 1
	}
	o0 := normal(d0).Mul(h * side)
	o1 := normal(d1).Mul(h * side)
	switch pn.join {
	case plot.JoinRound:
		add(disc(v, h))
		return
	case plot.JoinMiter, plot.JoinTriangular:
		bis := o0.Add(o1)
		if bis.Len() < 1e-12 {
			break
		}
		cosHalf := bis.Len() / (2 * h)
		if pn.join == plot.JoinTriangular {
			tip := v.Add(unit(bis).Mul(h))
			add([]geom.Point{v, v.Add(o0), tip, v.Add(o1)})
			return
		}
		if 1/cosHalf <= pn.limit {
			tip := v.Add(unit(bis).Mul(h / cosHalf))
			add([]geom.Point{v, v.Add(o0), tip, v.Add(o1)})
			return
		}
	}
	add([]geom.Point{v, v.Add(o0), v.Add(o1)})
}

// evenOdd orients rings so that nonzero accumulation reproduces the
// even-odd rule for rings that do not cross: rings nested at an odd depth
// run clockwise.
func evenOdd(rings [][]geom.Point) [][]geom.Point {
	out := make([][]geom.Point, len(rings))
	for i, r := range rings {
		depth := 0
		if len(r) > 0 {
			for j, other := range rings {
				if j != i && inside(r[0], other) {
					depth++
				}
			}
		}
		out[i] = orient(r, depth%2 == 0)
	}
	return out
}

// inside is the crossing-number point in polygon test.
func inside(p geom.Point, poly []geom.Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
