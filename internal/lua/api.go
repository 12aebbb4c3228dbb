package lua

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// registerQueries adds the read-only functions: position, state, info,
// capability, page, depth and isopen.
func (b *Bindings) registerQueries() {
	queries := map[string]binding{
		"position":   {fn: b.position},
		"state":      {fn: b.state},
		"info":       {fn: b.info},
		"capability": {n: 1, fn: b.capability},
		"page": {fn: func(args) ([]rt.Value, error) {
			return []rt.Value{rt.IntValue(int64(b.p.Page()))}, nil
		}},
		"depth": {fn: func(args) ([]rt.Value, error) {
			return []rt.Value{rt.IntValue(int64(b.p.Depth()))}, nil
		}},
		"isopen": {fn: func(args) ([]rt.Value, error) {
			return []rt.Value{rt.BoolValue(b.p.IsOpen())}, nil
		}},
	}
	for name, q := range queries {
		b.table.Set(rt.StringValue(name), goFunction(name, b.wrap(name, q.fn), q.n, false))
	}
}

// position returns the cursor as two numbers.
func (b *Bindings) position(args) ([]rt.Value, error) {
	pos, err := b.p.Position()
	if err != nil {
		return nil, err
	}
	return []rt.Value{rt.FloatValue(pos.X), rt.FloatValue(pos.Y)}, nil
}

func colorTable(c colors.RGB) rt.Value {
	t := rt.NewTable()
	t.Set(rt.IntValue(1), rt.IntValue(int64(c.R)))
	t.Set(rt.IntValue(2), rt.IntValue(int64(c.G)))
	t.Set(rt.IntValue(3), rt.IntValue(int64(c.B)))
	return rt.TableValue(t)
}

// state returns a snapshot of the drawing state as a table.
func (b *Bindings) state(args) ([]rt.Value, error) {
	s, err := b.p.State()
	if err != nil {
		return nil, err
	}
	t := rt.NewTable()
	set := func(k string, v rt.Value) { t.Set(rt.StringValue(k), v) }
	set("x", rt.FloatValue(s.Pos.X))
	set("y", rt.FloatValue(s.Pos.Y))
	set("linewidth", rt.FloatValue(s.LineWidth))
	set("linemod", rt.StringValue(s.LineMode))
	set("joinmod", rt.StringValue(s.Join.String()))
	set("capmod", rt.StringValue(s.Cap.String()))
	set("miterlimit", rt.FloatValue(s.MiterLimit))
	set("fontname", rt.StringValue(s.FontName))
	set("fontsize", rt.FloatValue(s.FontSize))
	set("textangle", rt.FloatValue(s.TextAngle))
	set("pencolor", colorTable(s.PenColor))
	set("fillcolor", colorTable(s.FillColor))
	set("bgcolor", colorTable(s.BgColor))
	set("filltype", rt.IntValue(int64(s.FillLevel)))
	set("fillmod", rt.StringValue(s.FillRule.String()))
	set("pentype", rt.IntValue(int64(s.PenType)))
	set("orientation", rt.IntValue(int64(s.Orientation)))
	if s.DashSet {
		d := rt.NewTable()
		for i, v := range s.Dash {
			d.Set(rt.IntValue(int64(i+1)), rt.FloatValue(v))
		}
		set("dashes", rt.TableValue(d))
		set("dashoffset", rt.FloatValue(s.DashOffset))
	}
	return []rt.Value{rt.TableValue(t)}, nil
}

// info describes the device.
func (b *Bindings) info(args) ([]rt.Value, error) {
	in := b.p.Info()
	t := rt.NewTable()
	t.Set(rt.StringValue("name"), rt.StringValue(in.Name))
	t.Set(rt.StringValue("font"), rt.StringValue(in.Font))
	t.Set(rt.StringValue("width"), rt.FloatValue(in.View.Bounds.Dx()))
	t.Set(rt.StringValue("height"), rt.FloatValue(in.View.Bounds.Dy()))
	return []rt.Value{rt.TableValue(t)}, nil
}

// capability reports "native", "generic" or "none" for an operation name.
func (b *Bindings) capability(a args) ([]rt.Value, error) {
	name, err := a.string(0)
	if err != nil {
		return nil, err
	}
	op, ok := plot.OpByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %q", plot.ErrBadParameter, name)
	}
	return []rt.Value{rt.StringValue(b.p.Capability(op).String())}, nil
}
