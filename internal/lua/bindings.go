package lua

import (
	"errors"
	"fmt"
	"sort"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Bindings exposes a Plotter to Lua. Every operation is available as a
// field of the global plot table, which require("plot") also returns, and
// as a global pl_<name> function:
//
//	plot.openpl()
//	plot.fspace(0, 0, 100, 100)
//	plot.pencolorname("red")
//	pl_fbox(10, 10, 90, 90)
//	plot.closepl()
//
// Calls rejected with a bad parameter or a singular transform are logged
// and skipped; any other error raises a Lua error.
type Bindings struct {
	runtime *Runtime
	p       *plot.Plotter
	log     plot.Logger
	table   *rt.Table
}

// NewBindings registers the plot table in runtime. A nil log discards
// warnings.
func NewBindings(runtime *Runtime, p *plot.Plotter, log plot.Logger) (*Bindings, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if p == nil {
		return nil, ErrNilPlotter
	}
	if log == nil {
		log = plot.NopLogger()
	}
	b := &Bindings{runtime: runtime, p: p, log: log, table: rt.NewTable()}

	fns := b.functions()
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := fns[name]
		v := goFunction(name, b.wrap(name, f.fn), f.n, f.varargs)
		b.table.Set(rt.StringValue(name), v)
		runtime.SetGlobal("pl_"+name, v)
	}
	b.registerQueries()
	b.registerModule()
	return b, nil
}

// Plotter returns the plotter scripts draw on.
func (b *Bindings) Plotter() *plot.Plotter {
	return b.p
}

// registerModule publishes the table as the plot global and, when the
// package library is loaded, as package.loaded.plot.
func (b *Bindings) registerModule() {
	tv := rt.TableValue(b.table)
	b.runtime.SetGlobal("plot", tv)

	b.runtime.mu.Lock()
	defer b.runtime.mu.Unlock()
	pkg, ok := b.runtime.runtime.GlobalEnv().Get(rt.StringValue("package")).TryTable()
	if !ok {
		return
	}
	if loaded, ok := pkg.Get(rt.StringValue("loaded")).TryTable(); ok {
		loaded.Set(rt.StringValue("plot"), tv)
	}
}

type args []rt.Value

func (a args) float(i int) (float64, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("argument %d missing (have %d)", i+1, len(a))
	}
	if f, ok := a[i].TryFloat(); ok {
		return f, nil
	}
	if n, ok := a[i].TryInt(); ok {
		return float64(n), nil
	}
	return 0, fmt.Errorf("argument %d is not a number", i+1)
}

func (a args) int(i int) (int, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("argument %d missing (have %d)", i+1, len(a))
	}
	if n, ok := a[i].TryInt(); ok {
		return int(n), nil
	}
	if f, ok := a[i].TryFloat(); ok {
		return int(f), nil
	}
	return 0, fmt.Errorf("argument %d is not an integer", i+1)
}

func (a args) string(i int) (string, error) {
	if i >= len(a) {
		return "", fmt.Errorf("argument %d missing (have %d)", i+1, len(a))
	}
	if s, ok := a[i].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", i+1)
}

func (a args) floats(n int) ([]float64, error) {
	v := make([]float64, n)
	for i := range v {
		f, err := a.float(i)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}

func (a args) color() (colors.RGB, error) {
	v := make([]int, 3)
	for i := range v {
		n, err := a.int(i)
		if err != nil {
			return colors.RGB{}, err
		}
		if n < 0 || n > 0xffff {
			return colors.RGB{}, fmt.Errorf("%w: color component %d", plot.ErrBadParameter, n)
		}
		v[i] = n
	}
	return colors.RGB{R: uint16(v[0]), G: uint16(v[1]), B: uint16(v[2])}, nil
}

func (a args) char(i int) (byte, error) {
	s, err := a.string(i)
	if err != nil {
		return 0, err
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrBadAlignment, s)
	}
	return s[0], nil
}

type binding struct {
	n       int
	varargs bool
	fn      func(a args) ([]rt.Value, error)
}

func (b *Bindings) wrap(name string, fn func(a args) ([]rt.Value, error)) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		vals, err := fn(append(args(c.Args()), c.Etc()...))
		if errors.Is(err, plot.ErrBadParameter) || errors.Is(err, plot.ErrSingularTransform) {
			b.log.Warn("ignoring call", "function", name, "error", err)
			return c.Next(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(vals) == 0 {
			return c.Next(), nil
		}
		return c.PushingNext(t.Runtime, vals...), nil
	}
}

// nums binds a function of n numbers.
func nums(n int, fn func(v []float64) error) binding {
	return binding{n: n, fn: func(a args) ([]rt.Value, error) {
		v, err := a.floats(n)
		if err != nil {
			return nil, err
		}
		return nil, fn(v)
	}}
}

// str binds a function of one string.
func str(fn func(s string) error) binding {
	return binding{n: 1, fn: func(a args) ([]rt.Value, error) {
		s, err := a.string(0)
		if err != nil {
			return nil, err
		}
		return nil, fn(s)
	}}
}

// integer binds a function of one integer.
func integer(fn func(n int) error) binding {
	return binding{n: 1, fn: func(a args) ([]rt.Value, error) {
		n, err := a.int(0)
		if err != nil {
			return nil, err
		}
		return nil, fn(n)
	}}
}

// rgb binds a function of a 48-bit color.
func rgb(fn func(c colors.RGB) error) binding {
	return binding{n: 3, fn: func(a args) ([]rt.Value, error) {
		c, err := a.color()
		if err != nil {
			return nil, err
		}
		return nil, fn(c)
	}}
}

func none(fn func() error) binding {
	return binding{fn: func(args) ([]rt.Value, error) { return nil, fn() }}
}

func matrix(v []float64) geom.Matrix {
	return geom.Matrix{XX: v[0], YX: v[1], XY: v[2], YY: v[3], X0: v[4], Y0: v[5]}
}

func (b *Bindings) marker(rel bool) binding {
	return binding{n: 4, fn: func(a args) ([]rt.Value, error) {
		x, err := a.float(0)
		if err != nil {
			return nil, err
		}
		y, err := a.float(1)
		if err != nil {
			return nil, err
		}
		typ, err := a.int(2)
		if err != nil {
			return nil, err
		}
		size, err := a.float(3)
		if err != nil {
			return nil, err
		}
		if rel {
			return nil, b.p.MarkerRel(x, y, typ, size)
		}
		return nil, b.p.Marker(x, y, typ, size)
	}}
}

// linedash takes a table of dash lengths and an offset.
func (b *Bindings) linedash() binding {
	return binding{n: 2, fn: func(a args) ([]rt.Value, error) {
		if len(a) == 0 {
			return nil, fmt.Errorf("argument 1 missing (have 0)")
		}
		tbl, ok := a[0].TryTable()
		if !ok {
			return nil, fmt.Errorf("argument 1 is not a table")
		}
		var dashes []float64
		for i := int64(1); ; i++ {
			v := tbl.Get(rt.IntValue(i))
			if v == rt.NilValue {
				break
			}
			f, err := args{v}.float(0)
			if err != nil {
				return nil, fmt.Errorf("dash %d is not a number", i)
			}
			dashes = append(dashes, f)
		}
		offset := 0.0
		if len(a) > 1 && a[1] != rt.NilValue {
			var err error
			if offset, err = a.float(1); err != nil {
				return nil, err
			}
		}
		return nil, b.p.LineDash(dashes, offset)
	}}
}

func (b *Bindings) alabel() binding {
	return binding{n: 3, fn: func(a args) ([]rt.Value, error) {
		h, err := a.char(0)
		if err != nil {
			return nil, err
		}
		v, err := a.char(1)
		if err != nil {
			return nil, err
		}
		s, err := a.string(2)
		if err != nil {
			return nil, err
		}
		return nil, b.p.ALabel(plot.HAlign(h), plot.VAlign(v), s)
	}}
}

func (b *Bindings) labelwidth() binding {
	return binding{n: 1, fn: func(a args) ([]rt.Value, error) {
		s, err := a.string(0)
		if err != nil {
			return nil, err
		}
		w, err := b.p.LabelWidth(s)
		if err != nil {
			return nil, err
		}
		return []rt.Value{rt.FloatValue(w)}, nil
	}}
}

// functions returns the drawing and attribute operations by libplot name.
// The f-prefixed names are the floating point forms; integer arguments
// are accepted by both.
func (b *Bindings) functions() map[string]binding {
	p := b.p
	m := map[string]binding{
		"openpl":       none(p.Open),
		"closepl":      none(p.Close),
		"erase":        none(p.Erase),
		"flushpl":      none(p.Flush),
		"savestate":    none(p.SaveState),
		"restorestate": none(p.RestoreState),
		"endpath":      none(p.EndPath),
		"endsubpath":   none(p.EndSubpath),
		"closepath":    none(p.ClosePath),

		"space":      nums(4, func(v []float64) error { return p.Space(v[0], v[1], v[2], v[3]) }),
		"space2":     nums(6, func(v []float64) error { return p.Space2(v[0], v[1], v[2], v[3], v[4], v[5]) }),
		"fsetmatrix": nums(6, func(v []float64) error { return p.SetMatrix(matrix(v)) }),
		"fconcat":    nums(6, func(v []float64) error { return p.Concat(matrix(v)) }),
		"ftranslate": nums(2, func(v []float64) error { return p.Translate(v[0], v[1]) }),
		"frotate":    nums(1, func(v []float64) error { return p.Rotate(v[0]) }),
		"fscale":     nums(2, func(v []float64) error { return p.Scale(v[0], v[1]) }),

		"move":      nums(2, func(v []float64) error { return p.Move(v[0], v[1]) }),
		"moverel":   nums(2, func(v []float64) error { return p.MoveRel(v[0], v[1]) }),
		"cont":      nums(2, func(v []float64) error { return p.Cont(v[0], v[1]) }),
		"contrel":   nums(2, func(v []float64) error { return p.ContRel(v[0], v[1]) }),
		"line":      nums(4, func(v []float64) error { return p.Line(v[0], v[1], v[2], v[3]) }),
		"linerel":   nums(4, func(v []float64) error { return p.LineRel(v[0], v[1], v[2], v[3]) }),
		"box":       nums(4, func(v []float64) error { return p.Box(v[0], v[1], v[2], v[3]) }),
		"boxrel":    nums(4, func(v []float64) error { return p.BoxRel(v[0], v[1], v[2], v[3]) }),
		"circle":    nums(3, func(v []float64) error { return p.Circle(v[0], v[1], v[2]) }),
		"circlerel": nums(3, func(v []float64) error { return p.CircleRel(v[0], v[1], v[2]) }),
		"ellipse":   nums(5, func(v []float64) error { return p.Ellipse(v[0], v[1], v[2], v[3], v[4]) }),
		"ellipserel": nums(5, func(v []float64) error {
			return p.EllipseRel(v[0], v[1], v[2], v[3], v[4])
		}),
		"arc":       nums(6, func(v []float64) error { return p.Arc(v[0], v[1], v[2], v[3], v[4], v[5]) }),
		"arcrel":    nums(6, func(v []float64) error { return p.ArcRel(v[0], v[1], v[2], v[3], v[4], v[5]) }),
		"ellarc":    nums(6, func(v []float64) error { return p.EllArc(v[0], v[1], v[2], v[3], v[4], v[5]) }),
		"ellarcrel": nums(6, func(v []float64) error { return p.EllArcRel(v[0], v[1], v[2], v[3], v[4], v[5]) }),
		"bezier2":   nums(6, func(v []float64) error { return p.Bezier2(v[0], v[1], v[2], v[3], v[4], v[5]) }),
		"bezier2rel": nums(6, func(v []float64) error {
			return p.Bezier2Rel(v[0], v[1], v[2], v[3], v[4], v[5])
		}),
		"bezier3": nums(8, func(v []float64) error {
			return p.Bezier3(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
		}),
		"bezier3rel": nums(8, func(v []float64) error {
			return p.Bezier3Rel(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
		}),
		"point":     nums(2, func(v []float64) error { return p.Point(v[0], v[1]) }),
		"pointrel":  nums(2, func(v []float64) error { return p.PointRel(v[0], v[1]) }),
		"marker":    b.marker(false),
		"markerrel": b.marker(true),

		"label":      str(p.Label),
		"alabel":     b.alabel(),
		"labelwidth": b.labelwidth(),

		"pencolor":      rgb(p.PenColor),
		"fillcolor":     rgb(p.FillColor),
		"color":         rgb(p.Color),
		"bgcolor":       rgb(p.BgColor),
		"pencolorname":  str(p.PenColorName),
		"fillcolorname": str(p.FillColorName),
		"colorname":     str(p.ColorName),
		"bgcolorname":   str(p.BgColorName),
		"filltype":      integer(p.FillType),
		"fillmod":       str(p.FillMod),
		"linemod":       str(p.LineMod),
		"linedash":      b.linedash(),
		"linewidth":     nums(1, func(v []float64) error { return p.LineWidth(v[0]) }),
		"joinmod":       str(p.JoinMod),
		"capmod":        str(p.CapMod),
		"miterlimit":    nums(1, func(v []float64) error { return p.MiterLimit(v[0]) }),
		"pentype":       integer(p.PenType),
		"orientation":   integer(p.Orientation),
		"fontname":      str(p.FontName),
		"fontsize":      nums(1, func(v []float64) error { return p.FontSize(v[0]) }),
		"textangle":     nums(1, func(v []float64) error { return p.TextAngle(v[0]) }),
	}
	for _, name := range []string{
		"space", "space2", "move", "moverel", "cont", "contrel", "line", "linerel",
		"box", "boxrel", "circle", "circlerel", "ellipse", "ellipserel", "arc", "arcrel",
		"ellarc", "ellarcrel", "bezier2", "bezier2rel", "bezier3", "bezier3rel",
		"point", "pointrel", "marker", "markerrel", "linewidth", "linedash",
		"miterlimit", "fontsize", "textangle", "labelwidth",
	} {
		m["f"+name] = m[name]
	}
	return m
}
