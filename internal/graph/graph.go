// Package graph lays out a two-dimensional plot of a data set: a frame
// with ticked and labelled axes, a title, and the data drawn as a clipped
// polyline and optional marker symbols.
package graph

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Frame placement in the unit square.
const (
	frameLo    = 0.2
	frameHi    = 0.9
	tickLength = 0.015
	labelGap   = 0.015
	fontSize   = 0.03
)

// Range is an axis range. A range that is not Set is taken from the data.
type Range struct {
	Min, Max float64
	Set      bool
}

// Options controls a plot.
type Options struct {
	X, Y  Range
	Title string
	// LineMode selects the line style of the data: 0 draws no line, 1 is
	// solid and 2 to 5 are dotted, dot-dashed, short-dashed and
	// long-dashed; higher values cycle.
	LineMode int
	// Symbol is a marker type drawn at every point; 0 draws none.
	Symbol int
	// SymbolSize is the marker size as a fraction of the frame width.
	SymbolSize float64
	// MaxTicks bounds the tick intervals per axis.
	MaxTicks int
	// FontName is the label font.
	FontName string
}

// DefaultOptions returns a solid line without symbols.
func DefaultOptions() Options {
	return Options{LineMode: 1, SymbolSize: 0.03, MaxTicks: DefaultMaxTicks, FontName: "HersheySerif"}
}

var lineModes = []string{plot.LineSolid, plot.LineDotted, plot.LineDotDashed, plot.LineShortDashed, plot.LineLongDashed}

// axis maps data values on one axis into the frame.
type axis struct {
	lo, hi, step float64
}

func (a axis) pos(v float64) float64 {
	return frameLo + (frameHi-frameLo)*(v-a.lo)/(a.hi-a.lo)
}

// Graph draws plots with a shared Warner.
type Graph struct {
	opts Options
	warn *Warner
}

// New returns a Graph. Warnings go to warn, each at most once.
func New(opts Options, warn *Warner) *Graph {
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = DefaultMaxTicks
	}
	if opts.SymbolSize <= 0 {
		opts.SymbolSize = 0.03
	}
	if warn == nil {
		warn = NewWarner(nil)
	}
	return &Graph{opts: opts, warn: warn}
}

func (g *Graph) axis(name string, r Range, data []float64) (axis, error) {
	if r.Set {
		if r.Min == r.Max {
			return axis{}, fmt.Errorf("%w: empty %s range [%g, %g]", plot.ErrBadParameter, name, r.Min, r.Max)
		}
		step, err := Step(math.Abs(r.Max-r.Min), g.opts.MaxTicks)
		if err != nil {
			return axis{}, err
		}
		return axis{lo: r.Min, hi: r.Max, step: step}, nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if len(data) == 0 {
		lo, hi = 0, 1
	}
	lo, hi, step, widened, err := Widen(lo, hi, g.opts.MaxTicks)
	if err != nil {
		return axis{}, err
	}
	if widened {
		g.warn.Warn("data range is empty, widening it", "axis", name)
	}
	return axis{lo: lo, hi: hi, step: step}, nil
}

// Draw plots pts on p, which must be open, in its default unit-square
// user space.
func (g *Graph) Draw(p *plot.Plotter, pts []geom.Point) error {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
	}
	ax, err := g.axis("x", g.opts.X, xs)
	if err != nil {
		return err
	}
	ay, err := g.axis("y", g.opts.Y, ys)
	if err != nil {
		return err
	}

	if err := p.SaveState(); err != nil {
		return err
	}
	if err := g.frame(p, ax, ay); err != nil {
		return err
	}
	if err := g.data(p, ax, ay, pts); err != nil {
		return err
	}
	return p.RestoreState()
}

func (g *Graph) frame(p *plot.Plotter, ax, ay axis) error {
	if g.opts.FontName != "" {
		if err := p.FontName(g.opts.FontName); err != nil {
			return err
		}
	}
	if err := p.FontSize(fontSize); err != nil {
		return err
	}
	if err := p.FillType(0); err != nil {
		return err
	}
	if err := p.LineMod(plot.LineSolid); err != nil {
		return err
	}
	if err := p.Box(frameLo, frameLo, frameHi, frameHi); err != nil {
		return err
	}

	xt, err := Ticks(ax.lo, ax.hi, ax.step)
	if err != nil {
		return err
	}
	for _, v := range xt {
		u := ax.pos(v)
		if err := p.Line(u, frameLo, u, frameLo+tickLength); err != nil {
			return err
		}
		if err := p.Move(u, frameLo-labelGap); err != nil {
			return err
		}
		if err := p.ALabel(plot.AlignCenter, plot.AlignTop, Format(v, ax.step)); err != nil {
			return err
		}
	}
	if len(xt) < 2 {
		g.warn.Warn("too few labelled ticks", "axis", "x")
	}

	yt, err := Ticks(ay.lo, ay.hi, ay.step)
	if err != nil {
		return err
	}
	for _, v := range yt {
		u := ay.pos(v)
		if err := p.Line(frameLo, u, frameLo+tickLength, u); err != nil {
			return err
		}
		if err := p.Move(frameLo-labelGap, u); err != nil {
			return err
		}
		if err := p.ALabel(plot.AlignRight, plot.AlignMiddle, Format(v, ay.step)); err != nil {
			return err
		}
	}
	if len(yt) < 2 {
		g.warn.Warn("too few labelled ticks", "axis", "y")
	}

	if g.opts.Title != "" {
		if err := p.Move((frameLo+frameHi)/2, frameHi+2*labelGap); err != nil {
			return err
		}
		if err := p.ALabel(plot.AlignCenter, plot.AlignBottom, g.opts.Title); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) data(p *plot.Plotter, ax, ay axis, pts []geom.Point) error {
	box := geom.R(frameLo, frameLo, frameHi, frameHi)
	mapped := make([]geom.Point, len(pts))
	for i, pt := range pts {
		mapped[i] = geom.Pt(ax.pos(pt.X), ay.pos(pt.Y))
	}

	if mode := g.opts.LineMode; mode != 0 && len(mapped) >= 2 {
		if mode < 0 {
			mode = -mode
		}
		if err := p.LineMod(lineModes[(mode-1)%len(lineModes)]); err != nil {
			return err
		}
		pieces, clipped := clip(mapped, box)
		if clipped {
			g.warn.Warn("data outside the plotting area was clipped")
		}
		for _, piece := range pieces {
			if err := p.Move(piece[0].X, piece[0].Y); err != nil {
				return err
			}
			for _, q := range piece[1:] {
				if err := p.Cont(q.X, q.Y); err != nil {
					return err
				}
			}
			if err := p.EndPath(); err != nil {
				return err
			}
		}
	}

	if g.opts.Symbol > 0 {
		size := g.opts.SymbolSize * (frameHi - frameLo)
		for _, q := range mapped {
			if _, _, flags := geom.ClipLine(q, q, box); flags != geom.ClipAccepted {
				continue
			}
			if err := p.Marker(q.X, q.Y, g.opts.Symbol, size); err != nil {
				return err
			}
		}
	}
	return nil
}

// clip splits the polyline pts into the runs visible in box, and reports
// whether any segment lost a part.
func clip(pts []geom.Point, box geom.Rect) (pieces [][]geom.Point, clipped bool) {
	var cur []geom.Point
	for i := 1; i < len(pts); i++ {
		q0, q1, flags := geom.ClipLine(pts[i-1], pts[i], box)
		if flags != geom.ClipAccepted {
			clipped = true
		}
		if !flags.Accepted() {
			if len(cur) > 0 {
				pieces, cur = append(pieces, cur), nil
			}
			continue
		}
		if len(cur) == 0 || flags&geom.ClipFirstMoved != 0 {
			if len(cur) > 0 {
				pieces = append(pieces, cur)
			}
			cur = []geom.Point{q0}
		}
		cur = append(cur, q1)
		if flags&geom.ClipSecondMoved != 0 {
			pieces, cur = append(pieces, cur), nil
		}
	}
	if len(cur) > 0 {
		pieces = append(pieces, cur)
	}
	return pieces, clipped
}
