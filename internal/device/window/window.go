// Package window shows a plot in an interactive window. The device records
// a display list of triangulated shapes and labels; an Ebiten game loop
// replays it every frame, so the window can be resized or uncovered at any
// time while the plot is still being drawn.
package window

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// shape is a display list entry drawn with DrawTriangles.
type shape struct {
	vertices []ebiten.Vertex
	indices  []uint16
	rule     ebiten.FillRule
}

// label is a display list entry drawn with text.Draw.
type label struct {
	text  string
	face  plot.FontFace
	size  float64
	x, y  float64
	angle float64
	h     text.Align
	// dy moves the top of the line box relative to the anchor.
	dy    float64
	color color.RGBA
}

type item struct {
	shape *shape
	label *label
}

// Device records the display list of the current page. It is safe for
// concurrent use: plotting runs on one goroutine while the game loop draws
// on another.
type Device struct {
	mu     sync.RWMutex
	width  int
	height int
	title  string
	bg     *colors.RGB
	maxLen int

	background color.RGBA
	items      []item
	page       int
}

// New returns a window device of BITMAPSIZE.
func New(params *config.Params) (*Device, error) {
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	size := params.BitmapSize
	if size == "" {
		size = config.DefaultBitmapSize
	}
	w, h, err := config.ParseBitmapSize(size)
	if err != nil {
		return nil, fmt.Errorf("BITMAPSIZE: %w", err)
	}
	d := &Device{
		width:      w,
		height:     h,
		title:      "go-plotutils",
		maxLen:     params.MaxLineLength,
		background: colors.White.RGBA(),
	}
	if params.BgColor != "" {
		c, err := colors.Parse(params.BgColor)
		if err != nil {
			return nil, fmt.Errorf("BG_COLOR: %w", err)
		}
		d.bg = &c
	}
	return d, nil
}

// SetTitle sets the window title.
func (d *Device) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

// Info implements plot.Device.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name: "X",
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

// BeginPage replaces the picture with an empty page.
func (d *Device) BeginPage(n int, s *plot.State) error {
	if d.bg != nil {
		s.BgColor = *d.bg
	}
	d.mu.Lock()
	d.page = n
	d.mu.Unlock()
	return d.Erase(s)
}

// EndPage leaves the picture on screen.
func (d *Device) EndPage(n int) error {
	return nil
}

// Erase drops the display list and sets the background.
func (d *Device) Erase(s *plot.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = nil
	d.background = s.BgColor.RGBA()
	return nil
}

// Len returns the length of the display list.
func (d *Device) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.items)
}

func (d *Device) add(it item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, it)
}

func paint(vs []ebiten.Vertex, c colors.RGB) {
	rgba := c.RGBA()
	r, g, b := float32(rgba.R)/255, float32(rgba.G)/255, float32(rgba.B)/255
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r, g, b, 1
	}
}

func pathOf(pts []geom.Point, closed bool) *vector.Path {
	var p vector.Path
	p.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, pt := range pts[1:] {
		p.LineTo(float32(pt.X), float32(pt.Y))
	}
	if closed {
		p.Close()
	}
	return &p
}

var lineCaps = map[plot.CapMode]vector.LineCap{
	plot.CapButt:       vector.LineCapButt,
	plot.CapRound:      vector.LineCapRound,
	plot.CapProjecting: vector.LineCapSquare,
	plot.CapTriangular: vector.LineCapRound,
}

var lineJoins = map[plot.JoinMode]vector.LineJoin{
	plot.JoinMiter:      vector.LineJoinMiter,
	plot.JoinRound:      vector.LineJoinRound,
	plot.JoinBevel:      vector.LineJoinBevel,
	plot.JoinTriangular: vector.LineJoinRound,
}

func strokeOptions(s *plot.State) *vector.StrokeOptions {
	return &vector.StrokeOptions{
		Width:      float32(math.Max(s.DeviceLineWidth(), 1)),
		LineCap:    lineCaps[s.Cap],
		LineJoin:   lineJoins[s.Join],
		MiterLimit: float32(s.MiterLimit),
	}
}

func (d *Device) stroke(s *plot.State, pts []geom.Point, closed bool) {
	if !s.Stroked() || len(pts) < 2 {
		return
	}
	vs, is := pathOf(pts, closed).AppendVerticesAndIndicesForStroke(nil, nil, strokeOptions(s))
	paint(vs, s.PenColor)
	d.add(item{shape: &shape{vertices: vs, indices: is, rule: ebiten.FillRuleFillAll}})
}

func (d *Device) dot(s *plot.State, p geom.Point) {
	var path vector.Path
	r := float32(math.Max(s.DeviceLineWidth(), 1) / 2)
	path.Arc(float32(p.X), float32(p.Y), r, 0, 2*math.Pi, vector.Clockwise)
	path.Close()
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	paint(vs, s.PenColor)
	d.add(item{shape: &shape{vertices: vs, indices: is, rule: ebiten.FillRuleNonZero}})
}

// EmitSegment implements plot.SegmentEmitter.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	if p0 == p1 {
		d.dot(s, p0)
		return nil
	}
	d.stroke(s, []geom.Point{p0, p1}, false)
	return nil
}

// FillRegion implements plot.RegionFiller.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	var p vector.Path
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		p.MoveTo(float32(r[0].X), float32(r[0].Y))
		for _, pt := range r[1:] {
			p.LineTo(float32(pt.X), float32(pt.Y))
		}
		p.Close()
	}
	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	if len(is) == 0 {
		return nil
	}
	paint(vs, s.EffectiveFillColor())
	fr := ebiten.FillRuleEvenOdd
	if rule == plot.NonZero {
		fr = ebiten.FillRuleNonZero
	}
	d.add(item{shape: &shape{vertices: vs, indices: is, rule: fr}})
	return nil
}

// Colors are stored per display list entry.
func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath strokes whole paths so corners get real joins. Dashed and
// disconnected paths are split by the engine.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected {
		return false, nil
	}
	if dash, _ := s.DashPattern(); dash != nil {
		return false, nil
	}
	pts := p.DevicePoints(s.Transform)
	if s.Filled() && len(pts) >= 3 {
		if err := d.FillRegion(s, [][]geom.Point{pts}, s.FillRule); err != nil {
			return true, err
		}
	}
	d.stroke(s, pts, p.Closed)
	return true, nil
}

// RenderPoint draws a one-pixel dot.
func (d *Device) RenderPoint(s *plot.State, p geom.Point) (bool, error) {
	if s.Stroked() {
		d.dot(s, s.Transform.ToDevice(p))
	}
	return true, nil
}

// Baseline offsets as fractions of the font size.
var baseline = map[plot.VAlign]float64{
	plot.AlignBottom:   0.212,
	plot.AlignBaseline: 0,
	plot.AlignMiddle:   -0.359,
	plot.AlignCapLine:  -0.718,
	plot.AlignTop:      -0.931,
}

var primary = map[plot.HAlign]text.Align{
	plot.AlignLeft:   text.AlignStart,
	plot.AlignCenter: text.AlignCenter,
	plot.AlignRight:  text.AlignEnd,
}

// ascent is the ascender of the Go faces as a fraction of the font size.
const ascent = 0.9052734375

// RenderLabel draws text with the Go face the engine measures it with,
// when the map neither shears nor flips the text.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, str string) (bool, error) {
	if !s.Transform.Uniform || s.Transform.NonReflection {
		return false, nil
	}
	size := s.DeviceFontSize()
	if size <= 0 {
		return true, nil
	}
	pos := s.Transform.ToDevice(s.Pos)
	d.add(item{label: &label{
		text:  str,
		face:  plot.ResolveFont(s.FontName),
		size:  size,
		x:     pos.X,
		y:     pos.Y,
		angle: s.DeviceTextAngle() * math.Pi / 180,
		h:     primary[h],
		dy:    -(ascent + baseline[v]) * size,
		color: s.PenColor.RGBA(),
	}})
	return true, nil
}
