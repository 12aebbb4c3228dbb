package plot

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
)

func openPlotter(t *testing.T, dev Backend) *Plotter {
	t.Helper()
	p := New(dev)
	require.NoError(t, p.Open())
	return p
}

func TestClosedPlotterRejectsOperations(t *testing.T) {
	dev := newFakeDevice()
	p := New(dev)

	ops := map[string]func() error{
		"move":         func() error { return p.Move(1, 1) },
		"cont":         func() error { return p.Cont(1, 1) },
		"endpath":      p.EndPath,
		"circle":       func() error { return p.Circle(0, 0, 1) },
		"label":        func() error { return p.Label("x") },
		"pencolor":     func() error { return p.PenColor(colors.Black) },
		"space":        func() error { return p.Space(0, 0, 1, 1) },
		"savestate":    p.SaveState,
		"restorestate": p.RestoreState,
		"close":        p.Close,
		"erase":        p.Erase,
		"linewidth":    func() error { return p.LineWidth(1) },
		"moverel":      func() error { return p.MoveRel(1, 1) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOperation)
			var oe *OpError
			assert.True(t, errors.As(err, &oe))
		})
	}
	assert.Empty(t, dev.calls, "no hook may run while closed")
}

func TestOpenTwice(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	err := p.Open()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.True(t, p.IsOpen())
}

func TestPagesAreNumbered(t *testing.T) {
	dev := newFakeDevice()
	p := New(dev)
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Open())
		require.NoError(t, p.Close())
	}
	assert.Equal(t, []string{"begin", "end", "begin", "end"}, dev.kinds())
	assert.Equal(t, 2, dev.calls[2].page)
	assert.Equal(t, 2, p.Page())
}

func TestRestoreStateOnBottomFails(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.Equal(t, 0, p.Depth())

	err := p.RestoreState()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, 0, p.Depth())

	require.NoError(t, p.SaveState())
	require.NoError(t, p.RestoreState())
	err = p.RestoreState()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, 0, p.Depth())
}

func TestPenColorRestored(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	blue := colors.MustParse("blue")
	require.NoError(t, p.PenColor(blue))

	require.NoError(t, p.SaveState())
	require.NoError(t, p.PenColorName("red"))
	require.NoError(t, p.Move(0.1, 0.1))
	require.NoError(t, p.Cont(0.5, 0.5))
	require.NoError(t, p.RestoreState())

	s, err := p.State()
	require.NoError(t, err)
	assert.Equal(t, blue, s.PenColor)
}

func TestSavedStateIsDeepCopy(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.NoError(t, p.LineDash([]float64{1, 2}, 0))
	require.NoError(t, p.SaveState())
	p.state.Dash[0] = 9
	assert.Equal(t, 1.0, p.state.prev.Dash[0])
}

func TestPathResumesAfterRestore(t *testing.T) {
	dev := newPathDevice()
	p := openPlotter(t, dev)
	require.NoError(t, p.Move(0, 0))
	require.NoError(t, p.Cont(0.5, 0))

	require.NoError(t, p.SaveState())
	require.NoError(t, p.Move(0.2, 0.2))
	require.NoError(t, p.Cont(0.3, 0.3))
	require.NoError(t, p.RestoreState())
	require.Len(t, dev.paths, 1, "inner path is finished by restore")

	require.NoError(t, p.Cont(0.5, 0.5))
	require.NoError(t, p.EndPath())
	require.Len(t, dev.paths, 2)
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0.5}}, dev.paths[1].Points)
}

func TestClosePopsEveryState(t *testing.T) {
	dev := &hookDevice{fakeDevice: *newFakeDevice()}
	p := openPlotter(t, dev)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.SaveState())
	}
	require.Equal(t, 3, p.Depth())
	require.NoError(t, p.Close())

	assert.Equal(t, 3, dev.saves)
	assert.Equal(t, 3, dev.restores)
	assert.Equal(t, 0, p.Depth())
	assert.False(t, p.IsOpen())
	assert.Equal(t, "end", dev.calls[len(dev.calls)-1].kind)
}

func TestFailedSaveStateLeavesStackAlone(t *testing.T) {
	boom := errors.New("boom")
	dev := &hookDevice{fakeDevice: *newFakeDevice(), saveErr: boom}
	p := openPlotter(t, dev)
	bottom := p.state

	err := p.SaveState()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, p.Depth())
	assert.Same(t, bottom, p.state)
	assert.ErrorIs(t, p.RestoreState(), ErrInvalidOperation)
	for _, c := range dev.commands {
		assert.NotEqual(t, OpSaveState, c.Op)
	}

	dev.saveErr = nil
	require.NoError(t, p.SaveState())
	assert.Equal(t, 1, p.Depth())
	assert.Same(t, bottom, p.state.prev)
}

func TestSpaceRoundTrip(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.NoError(t, p.Space2(10, 10, 30, 20, 0, 30))

	tr := p.state.Transform
	corners := map[geom.Point]geom.Point{
		{X: 10, Y: 10}: {X: 0, Y: 0},
		{X: 30, Y: 20}: {X: 100, Y: 0},
		{X: 0, Y: 30}:  {X: 0, Y: 100},
	}
	for user, want := range corners {
		got := tr.ToDevice(user)
		assert.InDelta(t, want.X, got.X, 1e-9)
		assert.InDelta(t, want.Y, got.Y, 1e-9)
	}
}

func TestSingularSpaceLeavesTransform(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.NoError(t, p.Space(0, 0, 10, 10))
	before := p.state.Transform

	err := p.Space(0, 0, 0, 10)
	assert.ErrorIs(t, err, ErrSingularTransform)
	err = p.Space2(0, 0, 1, 1, 2, 2)
	assert.ErrorIs(t, err, ErrSingularTransform)
	err = p.Scale(0, 1)
	assert.ErrorIs(t, err, ErrSingularTransform)

	assert.Equal(t, before, p.state.Transform)
}

func TestDefaultLineWidthFollowsSpace(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	assert.InDelta(t, 0.01, p.state.LineWidth, 1e-12)

	require.NoError(t, p.Space(0, 0, 1000, 1000))
	assert.InDelta(t, 10, p.state.LineWidth, 1e-9)
	assert.InDelta(t, 50, p.state.FontSize, 1e-9)
	assert.InDelta(t, 1, p.state.DeviceLineWidth(), 1e-9)

	require.NoError(t, p.LineWidth(3))
	require.NoError(t, p.Space(0, 0, 10, 10))
	assert.Equal(t, 3.0, p.state.LineWidth, "explicit width survives space")
	assert.InDelta(t, 0.5, p.state.FontSize, 1e-9)

	require.NoError(t, p.LineWidth(-1))
	assert.InDelta(t, 0.1, p.state.LineWidth, 1e-9)
}

func TestConcatOrder(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.NoError(t, p.Space(0, 0, 100, 100))
	require.NoError(t, p.Translate(50, 50))
	require.NoError(t, p.Rotate(90))

	got := p.state.Transform.ToDevice(geom.Pt(10, 0))
	assert.InDelta(t, 50, got.X, 1e-9)
	assert.InDelta(t, 60, got.Y, 1e-9)

	require.NoError(t, p.Rotate(30))
	assert.False(t, p.state.Transform.AxesPreserved)
}

func TestSetMatrix(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.NoError(t, p.SetMatrix(geom.ScaleMatrix(0.5, 0.5)))
	got := p.state.Transform.ToDevice(geom.Pt(2, 2))
	assert.InDelta(t, 100, got.X, 1e-9)
	assert.InDelta(t, 100, got.Y, 1e-9)

	err := p.SetMatrix(geom.Matrix{})
	assert.ErrorIs(t, err, ErrSingularTransform)
}

func TestCapabilityTable(t *testing.T) {
	plain := New(newFakeDevice())
	assert.Equal(t, CapGeneric, plain.Capability(OpArc))
	assert.Equal(t, CapGeneric, plain.Capability(OpEndPath))
	assert.Equal(t, CapNative, plain.Capability(OpOpen))
	assert.Equal(t, CapNone, plain.Capability(Op(-1)))

	native := New(newPathDevice())
	assert.Equal(t, CapNative, native.Capability(OpEndPath))
	assert.Equal(t, CapGeneric, native.Capability(OpLabel))

	nofill := New(&noFillDevice{fakeDevice: *newFakeDevice()})
	assert.Equal(t, CapNone, nofill.Capability(OpFillType))

	for op := Op(0); op < numOps; op++ {
		assert.NotEqual(t, "unknown", op.String())
	}
}

func TestCapabilityTableCachedPerType(t *testing.T) {
	a := tableFor(newPathDevice())
	b := tableFor(newPathDevice())
	c := tableFor(newFakeDevice())
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestRecorderSeesAttributes(t *testing.T) {
	dev := &hookDevice{fakeDevice: *newFakeDevice()}
	p := openPlotter(t, dev)
	require.NoError(t, p.Space(0, 0, 10, 20))
	require.NoError(t, p.LineMod("dotted"))
	require.NoError(t, p.FontName("Times-Roman"))
	require.NoError(t, p.SaveState())
	require.NoError(t, p.RestoreState())

	require.Len(t, dev.commands, 5)
	assert.Equal(t, Command{Op: OpSpace, Args: []float64{0, 0, 10, 20}}, dev.commands[0])
	assert.Equal(t, "dotted", dev.commands[1].Text)
	assert.Equal(t, "Times-Roman", dev.commands[2].Text)
	assert.Equal(t, OpSaveState, dev.commands[3].Op)
	assert.Equal(t, OpRestoreState, dev.commands[4].Op)
}

func TestBadParameters(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	tests := []struct {
		name string
		op   func() error
	}{
		{"fill level", func() error { return p.FillType(0x10000) }},
		{"negative fill level", func() error { return p.FillType(-1) }},
		{"line mode", func() error { return p.LineMod("wiggly") }},
		{"miter limit", func() error { return p.MiterLimit(0.5) }},
		{"dash", func() error { return p.LineDash([]float64{1, -1}, 0) }},
		{"infinite dash", func() error { return p.LineDash([]float64{math.Inf(1)}, 0) }},
		{"NaN dash offset", func() error { return p.LineDash([]float64{1, 2}, math.NaN()) }},
		{"infinite dash offset", func() error { return p.LineDash([]float64{1, 2}, math.Inf(-1)) }},
		{"join", func() error { return p.JoinMod("curly") }},
		{"cap", func() error { return p.CapMod("pointy") }},
		{"fill mode", func() error { return p.FillMod("sideways") }},
		{"orientation", func() error { return p.Orientation(2) }},
		{"radius", func() error { return p.Circle(0, 0, -1) }},
		{"marker size", func() error { return p.Marker(0, 0, 1, -1) }},
		{"color", func() error { return p.PenColorName("nosuchcolor") }},
		{"halign", func() error { return p.ALabel('q', AlignBaseline, "x") }},
	}
	before := p.state.Snapshot()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), ErrBadParameter)
		})
	}
	after := p.state.Snapshot()
	assert.Equal(t, before, after)
}

func TestAttributeSetters(t *testing.T) {
	p := openPlotter(t, newFakeDevice())
	require.NoError(t, p.FillType(0x8000))
	require.NoError(t, p.FillColorName("#ff0000"))
	require.NoError(t, p.JoinMod("round"))
	require.NoError(t, p.CapMod("projecting"))
	require.NoError(t, p.FillMod("winding"))
	require.NoError(t, p.MiterLimit(4))
	require.NoError(t, p.Orientation(-1))
	require.NoError(t, p.TextAngle(45))
	require.NoError(t, p.FontSize(0.2))
	require.NoError(t, p.FontName(""))
	require.NoError(t, p.BgColorName("black"))

	s, err := p.State()
	require.NoError(t, err)
	assert.Equal(t, JoinRound, s.Join)
	assert.Equal(t, CapProjecting, s.Cap)
	assert.Equal(t, NonZero, s.FillRule)
	assert.Equal(t, 4.0, s.MiterLimit)
	assert.Equal(t, -1, s.Orientation)
	assert.Equal(t, 45.0, s.TextAngle)
	assert.Equal(t, 0.2, s.FontSize)
	assert.Equal(t, "HersheySerif", s.FontName)
	assert.Equal(t, colors.Black, s.BgColor)
	assert.Equal(t, colors.RGB{R: 0xffff, G: 0x8000, B: 0x8000}, s.EffectiveFillColor())

	require.NoError(t, p.ColorName("green"))
	s, _ = p.State()
	assert.Equal(t, s.PenColor, s.FillColor)
}

func TestEraseUsesBackground(t *testing.T) {
	dev := newFakeDevice()
	p := openPlotter(t, dev)
	require.NoError(t, p.BgColorName("navy"))
	require.NoError(t, p.Erase())
	assert.Equal(t, colors.MustParse("navy"), dev.calls[len(dev.calls)-1].color)
}

func TestWarnOnce(t *testing.T) {
	log := &countingLogger{}
	p := New(newFakeDevice(), WithLogger(log))
	p.warnOnce("something odd")
	p.warnOnce("something odd")
	p.warnOnce("something else")
	assert.Equal(t, 2, log.warns)
}

type countingLogger struct {
	warns int
}

func (l *countingLogger) Debug(msg string, args ...any) {}
func (l *countingLogger) Info(msg string, args ...any)  {}
func (l *countingLogger) Warn(msg string, args ...any)  { l.warns++ }
func (l *countingLogger) Error(msg string, args ...any) {}
