// Package svgdev implements the SVG output device on top of svgo.
//
// Like xfig, an SVG file holds a single page: objects of the first page
// are buffered and the document is written when that page ends.
package svgdev

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device/page"
	"github.com/opd-ai/go-plotutils/internal/device/ps"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// UnitsPerInch is the resolution of the integer coordinates in the
// document; the viewBox maps it back to physical size.
const UnitsPerInch = 7200

// Device writes an SVG document.
type Device struct {
	w      io.Writer
	layout page.Layout
	bg     *colors.RGB
	maxLen int

	page    int
	objects bytes.Buffer
	canvas  *svg.SVG
}

// New returns a device writing to w. The background is painted only when
// BG_COLOR is set or the page is erased.
func New(w io.Writer, params *config.Params) (*Device, error) {
	l, err := page.New(params, UnitsPerInch)
	if err != nil {
		return nil, err
	}
	d := &Device{w: w, layout: l.FlipY()}
	if params != nil {
		if params.BgColor != "" {
			c, err := colors.Parse(params.BgColor)
			if err != nil {
				return nil, fmt.Errorf("BG_COLOR: %w", err)
			}
			d.bg = &c
		}
		d.maxLen = params.MaxLineLength
	}
	return d, nil
}

// Info implements plot.Device.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:            "svg",
		View:            d.layout.View,
		LineWidth:       1.0 / 850,
		Font:            "Helvetica",
		FontSize:        1.0 / 50,
		MaxUnfilledPath: d.maxLen,
	}
}

// BeginPage implements plot.Device.
func (d *Device) BeginPage(n int, s *plot.State) error {
	d.page = n
	if n != 1 {
		d.canvas = svg.New(io.Discard)
		return nil
	}
	d.objects.Reset()
	d.canvas = svg.New(&d.objects)
	if d.bg != nil {
		s.BgColor = *d.bg
		d.background(s.BgColor)
	}
	return nil
}

// EndPage writes the document after the first page.
func (d *Device) EndPage(n int) error {
	if n != 1 {
		return nil
	}
	doc := svg.New(d.w)
	doc.Startraw(
		fmt.Sprintf(`width="%sin"`, num(d.layout.Width/UnitsPerInch)),
		fmt.Sprintf(`height="%sin"`, num(d.layout.Height/UnitsPerInch)),
		fmt.Sprintf(`viewBox="0 0 %d %d"`, iround(d.layout.Width), iround(d.layout.Height)),
	)
	doc.Desc("Created by go-plotutils")
	if _, err := d.w.Write(d.objects.Bytes()); err != nil {
		return err
	}
	doc.End()
	d.objects.Reset()
	return nil
}

func (d *Device) background(c colors.RGB) {
	d.canvas.Rect(0, 0, iround(d.layout.Width), iround(d.layout.Height), "fill:"+c.Hex()+";stroke:none")
}

// Erase drops the objects drawn so far and paints the background.
func (d *Device) Erase(s *plot.State) error {
	if d.page == 1 {
		d.objects.Reset()
	}
	d.background(s.BgColor)
	return nil
}

func iround(v float64) int {
	return int(math.Round(v))
}

func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // not -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var joins = map[plot.JoinMode]string{
	plot.JoinMiter:      "miter",
	plot.JoinRound:      "round",
	plot.JoinBevel:      "bevel",
	plot.JoinTriangular: "round",
}

var caps = map[plot.CapMode]string{
	plot.CapButt:       "butt",
	plot.CapRound:      "round",
	plot.CapProjecting: "square",
	plot.CapTriangular: "round",
}

// style returns the CSS for an object drawn with the pen of s, filled with
// its fill color when filled is set.
func style(s *plot.State, filled bool) string {
	var b strings.Builder
	if filled {
		b.WriteString("fill:" + s.EffectiveFillColor().Hex())
		if s.FillRule == plot.EvenOdd {
			b.WriteString(";fill-rule:evenodd")
		}
	} else {
		b.WriteString("fill:none")
	}
	if !s.Stroked() {
		b.WriteString(";stroke:none")
		return b.String()
	}
	b.WriteString(";stroke:" + s.PenColor.Hex())
	b.WriteString(";stroke-width:" + num(math.Max(s.DeviceLineWidth(), 1)))
	b.WriteString(";stroke-linejoin:" + joins[s.Join])
	b.WriteString(";stroke-linecap:" + caps[s.Cap])
	if s.Join == plot.JoinMiter {
		b.WriteString(";stroke-miterlimit:" + num(s.MiterLimit))
	}
	if dash, offset := s.DashPattern(); dash != nil {
		parts := make([]string, len(dash))
		for i, v := range dash {
			parts[i] = num(v)
		}
		b.WriteString(";stroke-dasharray:" + strings.Join(parts, ","))
		if offset != 0 {
			b.WriteString(";stroke-dashoffset:" + num(offset))
		}
	}
	return b.String()
}

func pathData(pts []geom.Point, closed bool) string {
	var b strings.Builder
	for i, p := range pts {
		switch {
		case i == 0:
			b.WriteByte('M')
		default:
			b.WriteString(" L")
		}
		fmt.Fprintf(&b, "%d %d", iround(p.X), iround(p.Y))
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}

// EmitSegment writes a line element.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	d.canvas.Line(iround(p0.X), iround(p0.Y), iround(p1.X), iround(p1.Y), style(s, false))
	return nil
}

// FillRegion writes the rings as one unstroked path, so holes follow the
// fill rule.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	ink := *s
	ink.PenType = 0
	ink.FillLevel = 1
	ink.FillColor = s.EffectiveFillColor()
	ink.FillRule = rule
	parts := make([]string, 0, len(rings))
	for _, ring := range rings {
		parts = append(parts, pathData(ring, true))
	}
	d.canvas.Path(strings.Join(parts, " "), style(&ink, true))
	return nil
}

// Colors are written with each element.
func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath writes the path as a polyline, polygon or path element.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected {
		return false, nil
	}
	pts := p.DevicePoints(s.Transform)
	xs, ys := make([]int, len(pts)), make([]int, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = iround(pt.X), iround(pt.Y)
	}
	if p.Closed {
		d.canvas.Polygon(xs, ys, style(s, s.Filled()))
		return true, nil
	}
	if s.Filled() {
		// an open filled path is filled as if closed but stroked open
		d.canvas.Path(pathData(pts, false), style(s, true))
		return true, nil
	}
	d.canvas.Polyline(xs, ys, style(s, false))
	return true, nil
}

// RenderBox writes a rect element when the map keeps boxes rectangular.
func (d *Device) RenderBox(s *plot.State, p0, p1 geom.Point) (bool, error) {
	if !s.Transform.AxesPreserved {
		return false, nil
	}
	a, b := s.Transform.ToDevice(p0), s.Transform.ToDevice(p1)
	x0, y0 := iround(math.Min(a.X, b.X)), iround(math.Min(a.Y, b.Y))
	x1, y1 := iround(math.Max(a.X, b.X)), iround(math.Max(a.Y, b.Y))
	d.canvas.Rect(x0, y0, x1-x0, y1-y0, style(s, s.Filled()))
	return true, nil
}

// RenderEllipse writes a circle or ellipse element; the image of an
// ellipse under any affine map is an ellipse.
func (d *Device) RenderEllipse(s *plot.State, c geom.Point, rx, ry, angle float64) (bool, error) {
	drx, dry, dangle := geom.EllipseAxes(s.Transform.M, rx, ry, angle)
	dc := s.Transform.ToDevice(c)
	cx, cy := iround(dc.X), iround(dc.Y)
	css := style(s, s.Filled())
	if math.Abs(drx-dry) < 1e-9*drx {
		d.canvas.Circle(cx, cy, iround(drx), css)
		return true, nil
	}
	if math.Abs(dangle) < 1e-9 {
		d.canvas.Ellipse(cx, cy, iround(drx), iround(dry), css)
		return true, nil
	}
	d.canvas.Gtransform(fmt.Sprintf("rotate(%s %d %d)", num(dangle), cx, cy))
	d.canvas.Ellipse(cx, cy, iround(drx), iround(dry), css)
	d.canvas.Gend()
	return true, nil
}

// RenderArc writes an SVG arc when the map is uniform, so the arc stays
// circular.
func (d *Device) RenderArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	if !s.Transform.Uniform {
		return false, nil
	}
	r := p0.Sub(c).Len()
	v := p1.Sub(c)
	if r == 0 || v.Len() == 0 {
		return false, nil
	}
	end := c.Add(v.Mul(r / v.Len()))
	sweep := math.Atan2(v.Y, v.X) - math.Atan2(p0.Y-c.Y, p0.X-c.X)
	if sweep < 0 {
		sweep += 2 * math.Pi
	}
	a, b := s.Transform.ToDevice(p0), s.Transform.ToDevice(end)
	dr := iround(s.Transform.DeviceLength(r))
	// counterclockwise in user space is the positive direction on the
	// device only when the map preserves orientation
	d.canvas.Arc(iround(a.X), iround(a.Y), dr, dr, 0, sweep > math.Pi, s.Transform.NonReflection,
		iround(b.X), iround(b.Y), style(s, s.Filled()))
	return true, nil
}

// RenderPoint writes a dot the size of the pen.
func (d *Device) RenderPoint(s *plot.State, p geom.Point) (bool, error) {
	if !s.Stroked() {
		return true, nil
	}
	dp := s.Transform.ToDevice(p)
	r := iround(math.Max(s.DeviceLineWidth()/2, 1))
	d.canvas.Circle(iround(dp.X), iround(dp.Y), r, "fill:"+s.PenColor.Hex()+";stroke:none")
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

var anchors = map[plot.HAlign]string{
	plot.AlignLeft:   "start",
	plot.AlignCenter: "middle",
	plot.AlignRight:  "end",
}

// fontStyle turns a PostScript font name into CSS font properties.
func fontStyle(name string) string {
	full := ps.FontName(name)
	family, variant, _ := strings.Cut(full, "-")
	if strings.HasPrefix(full, "Helvetica-Narrow") {
		family, variant = "Helvetica Narrow", strings.TrimPrefix(strings.TrimPrefix(full, "Helvetica-Narrow"), "-")
	}
	css := "font-family:'" + family + "'"
	if strings.Contains(variant, "Bold") || strings.Contains(variant, "Demi") {
		css += ";font-weight:bold"
	}
	if strings.Contains(variant, "Italic") || strings.Contains(variant, "Oblique") {
		css += ";font-style:italic"
	}
	return css
}

// RenderLabel writes a text element when the map does not distort text.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	// the page flips y, so an upright label has a reflecting map
	if !s.Transform.Uniform || s.Transform.NonReflection {
		return false, nil
	}
	size := s.DeviceFontSize()
	pos := s.Transform.ToDevice(s.Pos)
	css := fmt.Sprintf("%s;font-size:%dpx;fill:%s;stroke:none;text-anchor:%s",
		fontStyle(s.FontName), iround(size), s.PenColor.Hex(), anchors[h])
	d.canvas.Gtransform(fmt.Sprintf("translate(%d,%d) rotate(%s)", iround(pos.X), iround(pos.Y), num(s.DeviceTextAngle())))
	d.canvas.Text(0, iround(-baseline[v]*size), text, css)
	d.canvas.Gend()
	return true, nil
}
