// Package xdraw draws on an X11 drawable through the core protocol. Paths
// become PolyLine and FillPoly requests, axis-aligned ellipses and circular
// arcs become PolyArc, and colors are allocated in the default colormap.
package xdraw

import (
	"fmt"
	"math"

	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// maxPoints bounds the points sent in one request, well below the core
// protocol's request length limit.
const maxPoints = 16000

// gcValues is the part of the graphics context the device changes.
type gcValues struct {
	Foreground uint32
	LineWidth  uint32
	LineStyle  uint32
	Cap        uint32
	Join       uint32
	FillRule   uint32
}

// server is the set of X requests the device issues.
type server interface {
	Size() (width, height int)
	Pixel(c colors.RGB) (uint32, error)
	SetGC(g gcValues) error
	SetDashes(offset uint16, dashes []byte) error
	PolyLine(pts []xproto.Point) error
	FillPoly(pts []xproto.Point) error
	PolyArc(arcs []xproto.Arc, fill bool) error
	PolyPoint(pts []xproto.Point) error
	FillRect(r xproto.Rectangle) error
	Sync() error
	Close()
}

// Device draws on one drawable. Every page draws on the same drawable;
// a new page clears it.
type Device struct {
	srv    server
	width  int
	height int
	bg     *colors.RGB
	maxLen int

	gc     gcValues
	gcSet  bool
	dashes []byte
	offset uint16
}

// Open connects to the display named by DISPLAY and draws on the window
// XDRAWABLE_WINDOW, or on a new window of BITMAPSIZE when that is unset.
func Open(params *config.Params) (*Device, error) {
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	srv, err := dial(params)
	if err != nil {
		return nil, err
	}
	d, err := newDevice(srv, params)
	if err != nil {
		srv.Close()
		return nil, err
	}
	return d, nil
}

func newDevice(srv server, params *config.Params) (*Device, error) {
	d := &Device{srv: srv, maxLen: params.MaxLineLength}
	d.width, d.height = srv.Size()
	if params.BgColor != "" {
		c, err := colors.Parse(params.BgColor)
		if err != nil {
			return nil, fmt.Errorf("BG_COLOR: %w", err)
		}
		d.bg = &c
	}
	return d, nil
}

// Info implements plot.Device. The unit square fills the drawable.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name: "xdrawable",
		View: geom.Viewport{
			Bounds: geom.R(0, 0, float64(d.width), float64(d.height)),
			FlipY:  true,
		},
		LineWidth:       0,
		Font:            "HersheySerif",
		FontSize:        1.0 / 50,
		MaxUnfilledPath: d.maxLen,
	}
}

// BeginPage clears the drawable to the background.
func (d *Device) BeginPage(n int, s *plot.State) error {
	if d.bg != nil {
		s.BgColor = *d.bg
	}
	return d.Erase(s)
}

// EndPage waits until the server has processed the page.
func (d *Device) EndPage(n int) error {
	return d.srv.Sync()
}

// Erase fills the drawable with s.BgColor.
func (d *Device) Erase(s *plot.State) error {
	pixel, err := d.srv.Pixel(s.BgColor)
	if err != nil {
		return err
	}
	g := d.gc
	g.Foreground = pixel
	if err := d.use(g); err != nil {
		return err
	}
	return d.srv.FillRect(xproto.Rectangle{Width: clampU16(d.width), Height: clampU16(d.height)})
}

// Flush implements plot.Flusher.
func (d *Device) Flush() error {
	return d.srv.Sync()
}

// Finish closes the connection.
func (d *Device) Finish() error {
	d.srv.Close()
	return nil
}

// use sends g unless it is already current.
func (d *Device) use(g gcValues) error {
	if d.gcSet && g == d.gc {
		return nil
	}
	d.gc, d.gcSet = g, true
	return d.srv.SetGC(g)
}

var capStyles = map[plot.CapMode]uint32{
	plot.CapButt:       xproto.CapStyleButt,
	plot.CapRound:      xproto.CapStyleRound,
	plot.CapProjecting: xproto.CapStyleProjecting,
	plot.CapTriangular: xproto.CapStyleRound,
}

var joinStyles = map[plot.JoinMode]uint32{
	plot.JoinMiter:      xproto.JoinStyleMiter,
	plot.JoinRound:      xproto.JoinStyleRound,
	plot.JoinBevel:      xproto.JoinStyleBevel,
	plot.JoinTriangular: xproto.JoinStyleRound,
}

// pen makes the pen of s current. Line width zero selects the server's
// fast one-pixel lines.
func (d *Device) pen(s *plot.State) error {
	pixel, err := d.srv.Pixel(s.PenColor)
	if err != nil {
		return err
	}
	g := d.gc
	g.Foreground = pixel
	g.LineWidth = uint32(math.Round(s.DeviceLineWidth()))
	g.Cap = capStyles[s.Cap]
	g.Join = joinStyles[s.Join]
	g.LineStyle = xproto.LineStyleSolid

	dash, offset := s.DashPattern()
	if dash != nil {
		g.LineStyle = xproto.LineStyleOnOffDash
		if err := d.setDashes(dash, offset); err != nil {
			return err
		}
	}
	return d.use(g)
}

func (d *Device) setDashes(dash []float64, offset float64) error {
	b := make([]byte, len(dash))
	for i, v := range dash {
		b[i] = byte(max(1, min(255, math.Round(v))))
	}
	off := uint16(max(0, min(math.MaxUint16, math.Round(offset))))
	if string(b) == string(d.dashes) && off == d.offset {
		return nil
	}
	d.dashes, d.offset = b, off
	return d.srv.SetDashes(off, b)
}

// fill makes the fill color and rule of s current.
func (d *Device) fill(s *plot.State, rule plot.FillRule) error {
	pixel, err := d.srv.Pixel(s.EffectiveFillColor())
	if err != nil {
		return err
	}
	g := d.gc
	g.Foreground = pixel
	g.FillRule = xproto.FillRuleEvenOdd
	if rule == plot.NonZero {
		g.FillRule = xproto.FillRuleWinding
	}
	return d.use(g)
}

func clamp16(v float64) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, math.Round(v))))
}

func clampU16(v int) uint16 {
	return uint16(max(0, min(math.MaxUint16, v)))
}

func xpoints(pts []geom.Point) []xproto.Point {
	out := make([]xproto.Point, len(pts))
	for i, p := range pts {
		out[i] = xproto.Point{X: clamp16(p.X), Y: clamp16(p.Y)}
	}
	return out
}

// polyline sends pts in requests of at most maxPoints, each starting where
// the last one ended.
func (d *Device) polyline(pts []xproto.Point) error {
	for len(pts) > maxPoints {
		if err := d.srv.PolyLine(pts[:maxPoints]); err != nil {
			return err
		}
		pts = pts[maxPoints-1:]
	}
	return d.srv.PolyLine(pts)
}

// EmitSegment implements plot.SegmentEmitter.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	if err := d.pen(s); err != nil {
		return err
	}
	pts := xpoints([]geom.Point{p0, p1})
	if pts[0] == pts[1] {
		return d.srv.PolyPoint(pts[:1])
	}
	return d.srv.PolyLine(pts)
}

// FillRegion implements plot.RegionFiller. The rings are joined into one
// polygon that returns to the first vertex after each ring; the connecting
// edges are traversed twice and cancel under either fill rule.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	var poly []geom.Point
	var anchor geom.Point
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		if poly == nil {
			anchor = r[0]
		}
		poly = append(poly, r...)
		poly = append(poly, r[0], anchor)
	}
	if len(poly) < 3 {
		return nil
	}
	if err := d.fill(s, rule); err != nil {
		return err
	}
	return d.srv.FillPoly(xpoints(poly))
}

// Colors are loaded into the graphics context per primitive.
func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath draws a path as one polyline so the server applies joins,
// caps and dashes.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected || p.Len() < 2 {
		return false, nil
	}
	dev := p.DevicePoints(s.Transform)
	if s.Filled() && len(dev) >= 3 {
		if err := d.FillRegion(s, [][]geom.Point{dev}, s.FillRule); err != nil {
			return true, err
		}
	}
	if !s.Stroked() {
		return true, nil
	}
	if err := d.pen(s); err != nil {
		return true, err
	}
	return true, d.polyline(xpoints(dev))
}

// arc returns the X arc of the axis-aligned ellipse with center c and
// semi-axes rx, ry, from start sweeping sweep degrees counterclockwise on
// the screen.
func arc(c geom.Point, rx, ry, start, sweep float64) xproto.Arc {
	return xproto.Arc{
		X:      clamp16(c.X - rx),
		Y:      clamp16(c.Y - ry),
		Width:  uint16(max(0, min(math.MaxUint16, math.Round(2*rx)))),
		Height: uint16(max(0, min(math.MaxUint16, math.Round(2*ry)))),
		Angle1: int16(math.Round(start * 64)),
		Angle2: int16(math.Round(sweep * 64)),
	}
}

func (d *Device) drawArc(s *plot.State, a xproto.Arc) error {
	if s.Filled() {
		if err := d.fill(s, s.FillRule); err != nil {
			return err
		}
		if err := d.srv.PolyArc([]xproto.Arc{a}, true); err != nil {
			return err
		}
	}
	if !s.Stroked() {
		return nil
	}
	if err := d.pen(s); err != nil {
		return err
	}
	return d.srv.PolyArc([]xproto.Arc{a}, false)
}

// RenderEllipse draws ellipses whose device axes are horizontal and
// vertical.
func (d *Device) RenderEllipse(s *plot.State, c geom.Point, rx, ry, angle float64) (bool, error) {
	drx, dry, dangle := geom.EllipseAxes(s.Transform.M, rx, ry, angle)
	quarter := dangle / 90
	if math.Abs(quarter-math.Round(quarter)) > 1e-9 {
		return false, nil
	}
	if int(math.Round(quarter))%2 != 0 {
		drx, dry = dry, drx
	}
	return true, d.drawArc(s, arc(s.Transform.ToDevice(c), drx, dry, 0, 360))
}

// RenderArc draws a circular arc when the map keeps circles circular.
// Filled arcs are left to the engine, whose fill closes them with a chord.
func (d *Device) RenderArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	if !s.Transform.Uniform || s.Filled() {
		return false, nil
	}
	r := p0.Sub(c).Len()
	if r == 0 || p1 == c {
		return false, nil
	}
	dc := s.Transform.ToDevice(c)
	a, b := s.Transform.ToDevice(p0).Sub(dc), s.Transform.ToDevice(p1).Sub(dc)
	// screen angles count counterclockwise with y pointing down
	start := math.Atan2(-a.Y, a.X) * 180 / math.Pi
	end := math.Atan2(-b.Y, b.X) * 180 / math.Pi
	sweep := end - start
	// a user counterclockwise arc is counterclockwise on the screen when the
	// map reflects, since the screen itself is reflected
	if s.Transform.NonReflection {
		sweep = -sweep
		for sweep <= 0 {
			sweep += 360
		}
		sweep = -sweep
	} else {
		for sweep <= 0 {
			sweep += 360
		}
	}
	return true, d.drawArc(s, arc(dc, a.Len(), a.Len(), start, sweep))
}

// RenderPoint draws one pixel.
func (d *Device) RenderPoint(s *plot.State, p geom.Point) (bool, error) {
	if !s.Stroked() {
		return true, nil
	}
	if err := d.pen(s); err != nil {
		return true, err
	}
	return true, d.srv.PolyPoint(xpoints([]geom.Point{s.Transform.ToDevice(p)}))
}
