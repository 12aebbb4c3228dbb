package plot

import (
	"math"

	"github.com/opd-ai/go-plotutils/internal/geom"
)

// genericPath renders a user-space polyline with the primitive hooks: the
// interior is filled first, then the outline is stroked segment by segment.
func (p *Plotter) genericPath(s *State, pts []geom.Point, closed bool) error {
	dev := make([]geom.Point, len(pts))
	for i, pt := range pts {
		dev[i] = s.Transform.ToDevice(pt)
	}

	if s.LineMode == LineDisconnected {
		for _, pt := range pts {
			if err := p.point(pt); err != nil {
				return err
			}
		}
		return nil
	}

	if s.Filled() && len(dev) >= 3 {
		ring := dev
		if !closed {
			ring = append(append([]geom.Point(nil), dev...), dev[0])
		}
		if err := p.fill(s, [][]geom.Point{ring}, s.FillRule); err != nil {
			return err
		}
	}

	if !s.Stroked() {
		return nil
	}
	if err := p.dev.SetPenColor(s); err != nil {
		return err
	}
	return p.stroke(s, dev, true)
}

func (p *Plotter) fill(s *State, rings [][]geom.Point, rule FillRule) error {
	if err := p.dev.SetFillColor(s); err != nil {
		return err
	}
	return p.dev.FillRegion(s, rings, rule)
}

// stroke emits a device-space polyline with the current pen, dashing it
// when requested and clipping when the device needs it.
func (p *Plotter) stroke(s *State, dev []geom.Point, dashed bool) error {
	pieces := [][]geom.Point{dev}
	if dashed {
		if pattern, offset := s.DashPattern(); pattern != nil {
			pieces = dashPolyline(dev, pattern, offset)
		}
	}
	for _, piece := range pieces {
		runs := [][]geom.Point{piece}
		if p.info.ClipSegments {
			runs = geom.ClipPolyline(piece, p.info.View.Bounds)
		}
		for _, run := range runs {
			for i := 0; i+1 < len(run); i++ {
				if err := p.dev.EmitSegment(s, run[i], run[i+1]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// dashPolyline splits a polyline into its "on" pieces under a dash
// pattern. Even pattern entries are drawn, odd ones skipped; an odd-length
// pattern alternates parity on each repeat, as in PostScript.
func dashPolyline(pts []geom.Point, pattern []float64, offset float64) [][]geom.Point {
	total := 0.0
	for _, d := range pattern {
		total += d
	}
	if total <= 0 || len(pts) < 2 {
		return [][]geom.Point{pts}
	}

	i, on, left := 0, true, pattern[0]
	offset = math.Mod(offset, total)
	if offset < 0 {
		offset += total
	}
	for offset > 0 {
		if offset < left {
			left -= offset
			break
		}
		offset -= left
		i = (i + 1) % len(pattern)
		on = !on
		left = pattern[i]
	}

	var out [][]geom.Point
	var cur []geom.Point
	if on {
		cur = []geom.Point{pts[0]}
	}
	for k := 0; k+1 < len(pts); k++ {
		a, b := pts[k], pts[k+1]
		segLen := b.Sub(a).Len()
		pos := 0.0
		for segLen-pos > left {
			pos += left
			q := a.Add(b.Sub(a).Mul(pos / segLen))
			if on {
				out = append(out, append(cur, q))
				cur = nil
			} else {
				cur = []geom.Point{q}
			}
			on = !on
			i = (i + 1) % len(pattern)
			left = pattern[i]
		}
		left -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) >= 2 {
		out = append(out, cur)
	}
	return out
}
