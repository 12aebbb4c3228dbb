// Package hpgl implements the HP-GL and HP-GL/2 pen plotter device.
//
// Colors are quantized to the pens in the carousel (HPGL_PENS); with
// HPGL_ASSIGN_PENS an HP-GL/2 device also defines new pen colors with PC.
// Filling needs polygon mode, so only HP-GL/2 can fill.
package hpgl

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device/page"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// UnitsPerInch is the plotter unit resolution (0.025 mm).
const UnitsPerInch = 1016

// Version is an HP-GL dialect.
type Version int

const (
	V1  Version = iota // HP-GL, HP7220 and compatibles
	V15                // HP-GL with HP7550 extensions
	V2                 // HP-GL/2
)

// ParseVersion parses an HPGL_VERSION value.
func ParseVersion(s string) (Version, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return V1, nil
	case "1.5":
		return V15, nil
	case "2", "":
		return V2, nil
	}
	return V2, fmt.Errorf("unknown HP-GL version %q", s)
}

// Device writes HP-GL.
type Device struct {
	w       *bufio.Writer
	layout  page.Layout
	version Version
	assign  bool
	maxLen  int

	// pens maps pen numbers to colors; pen 0 is the paper.
	pens    [config.MaxPens + 1]colors.RGB
	defined [config.MaxPens + 1]bool
	// pen is the selected pen, -1 before the first SP.
	pen       int
	width     float64
	lineType  string
	penIsDown bool
	at        geom.Point
}

// New returns a device writing to w.
func New(w io.Writer, params *config.Params) (*Device, error) {
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	l, err := page.New(params, UnitsPerInch)
	if err != nil {
		return nil, err
	}
	v, err := ParseVersion(params.HPGLVersion)
	if err != nil {
		return nil, err
	}
	d := &Device{
		w:       bufio.NewWriter(w),
		layout:  l,
		version: v,
		assign:  params.HPGLAssignPens && v == V2,
		maxLen:  params.MaxLineLength,
	}
	d.pens[0], d.defined[0] = colors.White, true
	if params.HPGLPens == "" {
		for i, c := range colors.HPGLPens {
			d.pens[i], d.defined[i] = c, true
		}
	} else {
		pens, err := config.ParsePens(params.HPGLPens)
		if err != nil {
			return nil, err
		}
		for _, pen := range pens {
			d.pens[pen.Number], d.defined[pen.Number] = pen.Color, true
		}
	}
	return d, nil
}

// Info implements plot.Device.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:            "hpgl",
		View:            d.layout.View,
		LineWidth:       1.0 / 850,
		Font:            "HersheySerif",
		FontSize:        1.0 / 50,
		MaxUnfilledPath: d.maxLen,
	}
}

// Capability reports that only HP-GL/2 fills.
func (d *Device) Capability(op plot.Op) (plot.Cap, bool) {
	if op == plot.OpFillType && d.version != V2 {
		return plot.CapNone, true
	}
	return 0, false
}

// BeginPage implements plot.Device.
func (d *Device) BeginPage(n int, s *plot.State) error {
	if d.version == V2 {
		d.w.WriteString("\x1b%-1BBP;")
	}
	d.w.WriteString("IN;")
	if d.version == V2 {
		// absolute pen widths in mm
		d.w.WriteString("WU0;")
	}
	d.pen, d.width, d.lineType, d.penIsDown = -1, -1, "LT;", false
	d.at = geom.Pt(math.NaN(), math.NaN())
	_, err := d.w.WriteString("\n")
	return err
}

// EndPage implements plot.Device.
func (d *Device) EndPage(n int) error {
	d.w.WriteString("PU;SP0;")
	if d.version == V2 {
		d.w.WriteString("PG;\x1b%0A")
	}
	d.w.WriteString("\n")
	return d.w.Flush()
}

// Erase is a no-op: ink cannot be removed from paper.
func (d *Device) Erase(s *plot.State) error { return nil }

// PenFor returns the pen that draws c, defining one when pens can be
// assigned and no exact match exists. ok is false when c is white, which
// the plotter leaves blank.
func (d *Device) PenFor(c colors.RGB) (pen int, ok bool) {
	best, bestDist := -1, math.MaxFloat64
	for i := 0; i <= config.MaxPens; i++ {
		if !d.defined[i] {
			continue
		}
		dist := distance(c, d.pens[i])
		if dist == 0 {
			return i, i != 0
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if d.assign {
		for i := 1; i <= config.MaxPens; i++ {
			if !d.defined[i] {
				d.pens[i], d.defined[i] = c, true
				r, g, b := c.RGBA().R, c.RGBA().G, c.RGBA().B
				fmt.Fprintf(d.w, "PC%d,%d,%d,%d;", i, r, g, b)
				return i, true
			}
		}
	}
	return best, best > 0
}

func distance(a, b colors.RGB) float64 {
	dr, dg, db := float64(a.R)-float64(b.R), float64(a.G)-float64(b.G), float64(a.B)-float64(b.B)
	return dr*dr + dg*dg + db*db
}

func (d *Device) selectPen(c colors.RGB) bool {
	pen, ok := d.PenFor(c)
	if !ok {
		return false
	}
	if pen != d.pen {
		fmt.Fprintf(d.w, "SP%d;", pen)
		d.pen = pen
	}
	return true
}

// SetPenColor selects the pen nearest to the stroke color.
func (d *Device) SetPenColor(s *plot.State) error {
	d.selectPen(s.PenColor)
	return nil
}

// SetFillColor is applied in FillRegion.
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// lineTypes are the LT patterns closest to the libplot line modes.
var lineTypes = map[string]string{
	plot.LineSolid:           "LT;",
	plot.LineDotted:          "LT1;",
	plot.LineShortDashed:     "LT2;",
	plot.LineLongDashed:      "LT3;",
	plot.LineDotDashed:       "LT4;",
	plot.LineDotDotDashed:    "LT6;",
	plot.LineDotDotDotDashed: "LT6;",
}

func (d *Device) setLine(s *plot.State) {
	if d.version == V2 {
		mm := s.DeviceLineWidth() * 25.4 / UnitsPerInch
		if mm != d.width {
			fmt.Fprintf(d.w, "PW%s;", num(mm))
			d.width = mm
		}
	}
	lt, ok := lineTypes[s.LineMode]
	if s.DashSet {
		lt, ok = "LT;", true
		if dash, _ := s.DashPattern(); dash != nil {
			lt = "LT2;"
		}
	}
	if ok && lt != d.lineType {
		d.w.WriteString(lt)
		d.lineType = lt
	}
}

func (d *Device) moveTo(p geom.Point) {
	if d.penIsDown || p != d.at {
		fmt.Fprintf(d.w, "PU%d,%d;", iround(p.X), iround(p.Y))
	}
	d.penIsDown, d.at = false, p
}

func (d *Device) drawTo(pts []geom.Point) {
	if len(pts) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("PD")
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d,%d", iround(p.X), iround(p.Y))
	}
	b.WriteString(";\n")
	d.w.WriteString(b.String())
	d.penIsDown, d.at = true, pts[len(pts)-1]
}

// EmitSegment draws one segment with the current pen.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	if d.pen <= 0 {
		return nil
	}
	d.setLine(s)
	d.moveTo(p0)
	d.drawTo([]geom.Point{p1})
	return nil
}

// FillRegion fills rings in polygon mode. Only HP-GL/2 reaches here with
// a visible result.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	if d.version != V2 || len(rings) == 0 {
		return nil
	}
	if !d.selectPen(s.EffectiveFillColor()) {
		return nil
	}
	d.w.WriteString("FT1;")
	d.polygon(rings)
	_, err := fmt.Fprintf(d.w, "FP%d;\n", fillRule(rule))
	return err
}

func (d *Device) polygon(rings [][]geom.Point) {
	d.moveTo(rings[0][0])
	d.w.WriteString("PM0;")
	for i, ring := range rings {
		if i > 0 {
			d.moveTo(ring[0])
		}
		d.drawTo(ring[1:])
		d.w.WriteString("PM1;")
	}
	d.w.WriteString("PM2;")
	d.penIsDown = false
}

func fillRule(r plot.FillRule) int {
	if r == plot.NonZero {
		return 1
	}
	return 0
}

// RenderPath draws the path as one PD run, filled first when the state
// asks for it. Dashing is left to the plotter's line types.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected {
		return false, nil
	}
	pts := p.DevicePoints(s.Transform)
	if s.Filled() && d.version == V2 && len(pts) >= 3 {
		ring := pts
		if !p.Closed {
			ring = append(append([]geom.Point(nil), pts...), pts[0])
		}
		if err := d.FillRegion(s, [][]geom.Point{ring}, s.FillRule); err != nil {
			return true, err
		}
	}
	if !s.Stroked() || !d.selectPen(s.PenColor) {
		return true, nil
	}
	d.setLine(s)
	d.moveTo(pts[0])
	d.drawTo(pts[1:])
	return true, nil
}

// RenderCircle uses CI when the map keeps circles round.
func (d *Device) RenderCircle(s *plot.State, c geom.Point, r float64) (bool, error) {
	if !s.Transform.Uniform || s.Orientation < 0 {
		return false, nil
	}
	dc := s.Transform.ToDevice(c)
	dr := s.Transform.DeviceLength(r)
	if s.Filled() {
		if d.version != V2 {
			return false, nil
		}
		if d.selectPen(s.EffectiveFillColor()) {
			d.moveTo(dc)
			fmt.Fprintf(d.w, "FT1;PM0;CI%d;PM2;FP;\n", iround(dr))
		}
	}
	if s.Stroked() && d.selectPen(s.PenColor) {
		d.setLine(s)
		d.moveTo(dc)
		fmt.Fprintf(d.w, "CI%d;\n", iround(dr))
	}
	return true, nil
}

// RenderArc uses AA for unfilled arcs under a uniform map.
func (d *Device) RenderArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	if !s.Transform.Uniform || s.Filled() {
		return false, nil
	}
	v0, v1 := p0.Sub(c), p1.Sub(c)
	sweep := math.Atan2(v0.Cross(v1), v0.X*v1.X+v0.Y*v1.Y) * 180 / math.Pi
	if sweep <= 0 {
		sweep += 360
	}
	if !s.Transform.NonReflection {
		sweep = -sweep
	}
	if !s.Stroked() || !d.selectPen(s.PenColor) {
		return true, nil
	}
	dc := s.Transform.ToDevice(c)
	d.setLine(s)
	d.moveTo(s.Transform.ToDevice(p0))
	fmt.Fprintf(d.w, "PD;AA%d,%d,%s;\n", iround(dc.X), iround(dc.Y), num(sweep))
	d.penIsDown, d.at = true, s.Transform.ToDevice(p1)
	return true, nil
}

// labelOrigins are the LO codes for each justification.
var labelOrigins = map[plot.HAlign][3]int{
	plot.AlignLeft:   {1, 2, 3},
	plot.AlignCenter: {4, 5, 6},
	plot.AlignRight:  {7, 8, 9},
}

// RenderLabel uses the plotter's stick font when the map keeps text
// undistorted.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	if !s.Transform.Uniform || !s.Transform.NonReflection {
		return false, nil
	}
	if !d.selectPen(s.PenColor) {
		return true, nil
	}
	row := 0
	switch v {
	case plot.AlignMiddle:
		row = 1
	case plot.AlignTop, plot.AlignCapLine:
		row = 2
	}
	// SI takes centimeters; cap height is about 0.7 of the font size
	cm := s.DeviceFontSize() * 2.54 / UnitsPerInch
	theta := s.DeviceTextAngle() * math.Pi / 180
	d.moveTo(s.Transform.ToDevice(s.Pos))
	fmt.Fprintf(d.w, "SI%s,%s;DI%s,%s;LO%d;LB%s\x03\n",
		num(0.5*cm), num(0.7*cm), num(math.Cos(theta)), num(math.Sin(theta)),
		labelOrigins[h][row], printable(text))
	return true, nil
}

func printable(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

// Flush implements plot.Flusher.
func (d *Device) Flush() error {
	return d.w.Flush()
}

func iround(v float64) int {
	return int(math.Round(v))
}

func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
