package xdraw

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// fakeServer records requests instead of sending them.
type fakeServer struct {
	gcs    []gcValues
	dashes [][]byte
	lines  [][]xproto.Point
	polys  [][]xproto.Point
	arcs   []xproto.Arc
	filled []bool
	points []xproto.Point
	rects  []xproto.Rectangle
	rectFG []uint32
	syncs  int
	closed bool
	cur    gcValues
}

func pixel(c colors.RGB) uint32 {
	return uint32(c.R>>8)<<16 | uint32(c.G>>8)<<8 | uint32(c.B>>8)
}

func (f *fakeServer) Size() (int, int) { return 100, 100 }
func (f *fakeServer) Pixel(c colors.RGB) (uint32, error) { return pixel(c), nil }
func (f *fakeServer) SetGC(g gcValues) error {
	f.gcs = append(f.gcs, g)
	f.cur = g
	return nil
}
func (f *fakeServer) SetDashes(offset uint16, dashes []byte) error {
	f.dashes = append(f.dashes, dashes)
	return nil
}
func (f *fakeServer) PolyLine(pts []xproto.Point) error {
	f.lines = append(f.lines, pts)
	return nil
}
func (f *fakeServer) FillPoly(pts []xproto.Point) error {
	f.polys = append(f.polys, pts)
	return nil
}
func (f *fakeServer) PolyArc(arcs []xproto.Arc, fill bool) error {
	f.arcs = append(f.arcs, arcs...)
	f.filled = append(f.filled, fill)
	return nil
}
func (f *fakeServer) PolyPoint(pts []xproto.Point) error {
	f.points = append(f.points, pts...)
	return nil
}
func (f *fakeServer) FillRect(r xproto.Rectangle) error {
	f.rects = append(f.rects, r)
	f.rectFG = append(f.rectFG, f.cur.Foreground)
	return nil
}
func (f *fakeServer) Sync() error { f.syncs++; return nil }
func (f *fakeServer) Close() { f.closed = true }

func squarePts(lo, hi float64) []geom.Point {
	return []geom.Point{geom.Pt(lo, lo), geom.Pt(hi, lo), geom.Pt(hi, hi), geom.Pt(lo, hi)}
}

func draw(t *testing.T, params *config.Params, fn func(p *plot.Plotter)) *fakeServer {
	t.Helper()
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	srv := &fakeServer{}
	dev, err := newDevice(srv, params)
	require.NoError(t, err)
	p := plot.New(dev)
	require.NoError(t, p.Open())
	fn(p)
	require.NoError(t, p.Close())
	require.NoError(t, p.Finish())
	return srv
}

func TestLine(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		require.NoError(t, p.Line(0, 0, 1, 1))
	})
	require.Len(t, srv.lines, 1)
	assert.Equal(t, []xproto.Point{{X: 0, Y: 100}, {X: 100, Y: 0}}, srv.lines[0])
	assert.Equal(t, pixel(colors.Black), srv.cur.Foreground)
	assert.Equal(t, uint32(0), srv.cur.LineWidth)
	assert.Equal(t, uint32(xproto.LineStyleSolid), srv.cur.LineStyle)
	assert.True(t, srv.closed)
	assert.Equal(t, 1, srv.syncs)
}

func TestBackground(t *testing.T) {
	params := config.DefaultParams()
	params.BgColor = "red"
	srv := draw(t, &params, func(p *plot.Plotter) {
		require.NoError(t, p.BgColorName("blue"))
		require.NoError(t, p.Erase())
	})
	require.Len(t, srv.rects, 2)
	assert.Equal(t, xproto.Rectangle{Width: 100, Height: 100}, srv.rects[0])
	assert.Equal(t, []uint32{pixel(colors.RGB{R: 0xffff}), pixel(colors.RGB{B: 0xffff})}, srv.rectFG)

	params.BgColor = "nope"
	_, err := newDevice(&fakeServer{}, &params)
	assert.ErrorContains(t, err, "BG_COLOR")
}

func TestGCChangesOnlyWhenNeeded(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		require.NoError(t, p.Line(0, 0, 1, 0))
		require.NoError(t, p.Line(0, 1, 1, 1))
		require.NoError(t, p.JoinMod("round"))
		require.NoError(t, p.CapMod("projecting"))
		require.NoError(t, p.Line(0, 0.5, 1, 0.5))
	})
	// background, first pen, changed pen
	require.Len(t, srv.gcs, 3)
	assert.Equal(t, uint32(xproto.JoinStyleRound), srv.gcs[2].Join)
	assert.Equal(t, uint32(xproto.CapStyleProjecting), srv.gcs[2].Cap)
	assert.Len(t, srv.lines, 3)
}

func TestDashes(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		require.NoError(t, p.LineDash([]float64{0.1, 0.05}, 0))
		require.NoError(t, p.Line(0, 0, 1, 0))
		require.NoError(t, p.Line(0, 1, 1, 1))
	})
	assert.Equal(t, [][]byte{{10, 5}}, srv.dashes)
	assert.Equal(t, uint32(xproto.LineStyleOnOffDash), srv.cur.LineStyle)
}

func TestFilledBox(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		require.NoError(t, p.FillColorName("red"))
		require.NoError(t, p.FillType(1))
		require.NoError(t, p.FillMod("nonzero"))
		require.NoError(t, p.Box(0.25, 0.25, 0.75, 0.75))
	})
	require.Len(t, srv.polys, 1)
	assert.Contains(t, srv.polys[0], xproto.Point{X: 25, Y: 75})
	assert.Contains(t, srv.polys[0], xproto.Point{X: 75, Y: 25})
	require.Len(t, srv.lines, 1)
	assert.Equal(t, pixel(colors.Black), srv.cur.Foreground, "outline drawn after the fill")
	fills := 0
	for _, g := range srv.gcs {
		if g.Foreground == pixel(colors.RGB{R: 0xffff}) {
			fills++
			assert.Equal(t, uint32(xproto.FillRuleWinding), g.FillRule)
		}
	}
	assert.Equal(t, 1, fills)
}

func TestCircleIsAnArc(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		require.NoError(t, p.Circle(0.5, 0.5, 0.25))
	})
	require.Len(t, srv.arcs, 1)
	assert.Equal(t, xproto.Arc{X: 25, Y: 25, Width: 50, Height: 50, Angle1: 0, Angle2: 360 * 64}, srv.arcs[0])
	assert.Equal(t, []bool{false}, srv.filled)
}

func TestRotatedEllipseIsAPolyline(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		require.NoError(t, p.Ellipse(0.5, 0.5, 0.25, 0.1, 30))
		require.NoError(t, p.Ellipse(0.5, 0.5, 0.25, 0.1, 90))
	})
	require.Len(t, srv.arcs, 1)
	assert.Equal(t, uint16(20), srv.arcs[0].Width)
	assert.Equal(t, uint16(50), srv.arcs[0].Height)
	assert.Len(t, srv.lines, 1)
}

func TestArcDirection(t *testing.T) {
	srv := draw(t, nil, func(p *plot.Plotter) {
		// quarter circle from east to north
		require.NoError(t, p.Arc(0.5, 0.5, 0.75, 0.5, 0.5, 0.75))
	})
	require.Len(t, srv.arcs, 1)
	assert.Equal(t, int16(0), srv.arcs[0].Angle1)
	assert.Equal(t, int16(90*64), srv.arcs[0].Angle2)
}

func TestFillRegionJoinsRings(t *testing.T) {
	srv := &fakeServer{}
	p := config.DefaultParams()
	dev, err := newDevice(srv, &p)
	require.NoError(t, err)
	pl := plot.New(dev)
	require.NoError(t, pl.Open())
	s, err := pl.State()
	require.NoError(t, err)
	s.FillLevel = 1

	outer := squarePts(10, 90)
	inner := squarePts(30, 70)
	require.NoError(t, dev.FillRegion(&s, [][]geom.Point{outer, inner}, plot.EvenOdd))
	require.Len(t, srv.polys, 1)
	got := srv.polys[0]
	assert.Len(t, got, 4+2+4+2)
	assert.Equal(t, got[0], got[len(got)-1], "ends at the anchor")
	assert.Equal(t, uint32(xproto.FillRuleEvenOdd), srv.cur.FillRule)
}
