// Package fig implements the xfig 3.2 output device. Objects are kept in
// memory until the page ends, because user-defined colors must precede
// every object in the file. A fig file holds one page; later pages are
// discarded.
package fig

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device/page"
	"github.com/opd-ai/go-plotutils/internal/device/ps"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// UnitsPerInch is the xfig coordinate resolution.
const UnitsPerInch = 1200

const (
	maxDepth = 989
	// firstUserColor is the first color number free for user colors.
	firstUserColor = 32
	maxUserColors  = 512
)

// Device writes an xfig file.
type Device struct {
	w      *bufio.Writer
	layout page.Layout
	maxLen int

	page    int
	objects bytes.Buffer
	depth   int
	user    []colors.RGB
}

// New returns a device writing to w.
func New(w io.Writer, params *config.Params) (*Device, error) {
	l, err := page.New(params, UnitsPerInch)
	if err != nil {
		return nil, err
	}
	d := &Device{w: bufio.NewWriter(w), layout: l.FlipY()}
	if params != nil {
		d.maxLen = params.MaxLineLength
	}
	return d, nil
}

// Info implements plot.Device.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:            "fig",
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
	if n == 1 {
		d.depth = maxDepth
	}
	return nil
}

// EndPage writes the file after the first page.
func (d *Device) EndPage(n int) error {
	if n != 1 {
		return nil
	}
	orient := "Portrait"
	if r := d.layout.View.Rotation; r == 90 || r == 270 {
		orient = "Landscape"
	}
	fmt.Fprintf(d.w, "#FIG 3.2\n%s\nCenter\nInches\n%s\n100.00\nSingle\n-2\n%d 2\n",
		orient, paperName(d.layout.Size.Name), UnitsPerInch)
	for i, c := range d.user {
		fmt.Fprintf(d.w, "0 %d %s\n", firstUserColor+i, c.Hex())
	}
	d.w.Write(d.objects.Bytes())
	d.objects.Reset()
	return d.w.Flush()
}

func paperName(name string) string {
	if len(name) == 2 {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Erase drops the objects drawn so far on the page.
func (d *Device) Erase(s *plot.State) error {
	if d.page == 1 {
		d.objects.Reset()
		d.depth = maxDepth
	}
	return nil
}

// Color returns the xfig color number of c: a standard color when one
// matches exactly, otherwise a user color, or the nearest standard color
// once the user colors run out.
func (d *Device) Color(c colors.RGB) int {
	if i := colors.FigStandard.Index(c); i >= 0 {
		return i
	}
	for i, u := range d.user {
		if u == c {
			return firstUserColor + i
		}
	}
	if len(d.user) < maxUserColors {
		d.user = append(d.user, c)
		return firstUserColor + len(d.user) - 1
	}
	return colors.FigStandard.Nearest(c)
}

// nextDepth gives each object a depth above the previous one.
func (d *Device) nextDepth() int {
	depth := d.depth
	if d.depth > 0 {
		d.depth--
	}
	return depth
}

func (d *Device) out() io.Writer {
	if d.page != 1 {
		return io.Discard
	}
	return &d.objects
}

// style returns line_style, thickness and style_val.
func style(s *plot.State) (int, int, float64) {
	thick := int(math.Round(s.DeviceLineWidth() * 80 / UnitsPerInch))
	if !s.Stroked() {
		return 0, 0, 0
	}
	if thick < 1 {
		thick = 1
	}
	dash, _ := s.DashPattern()
	if dash == nil {
		return 0, thick, 0
	}
	unit := dash[0] * 80 / UnitsPerInch
	switch s.LineMode {
	case plot.LineDotted:
		return 2, thick, unit
	case plot.LineDotDashed:
		return 3, thick, unit
	case plot.LineDotDotDashed:
		return 4, thick, unit
	case plot.LineDotDotDotDashed:
		return 5, thick, unit
	}
	return 1, thick, unit
}

func joinStyle(j plot.JoinMode) int {
	switch j {
	case plot.JoinRound, plot.JoinTriangular:
		return 1
	case plot.JoinBevel:
		return 2
	}
	return 0
}

func capStyle(c plot.CapMode) int {
	switch c {
	case plot.CapRound, plot.CapTriangular:
		return 1
	case plot.CapProjecting:
		return 2
	}
	return 0
}

// fill returns fill_color and area_fill.
func (d *Device) fill(s *plot.State, filled bool) (int, int) {
	if !filled {
		return -1, -1
	}
	return d.Color(s.EffectiveFillColor()), 20
}

// polyline writes a polyline object; subtype 1 open, 2 box, 3 polygon.
func (d *Device) polyline(s *plot.State, pts []geom.Point, sub int, filled bool) {
	lstyle, thick, sval := style(s)
	fc, area := d.fill(s, filled)
	w := d.out()
	fmt.Fprintf(w, "2 %d %d %d %d %d %d -1 %d %.3f %d %d -1 0 0 %d\n\t",
		sub, lstyle, thick, d.Color(s.PenColor), fc, d.nextDepth(), area, sval,
		joinStyle(s.Join), capStyle(s.Cap), len(pts))
	for i, p := range pts {
		if i > 0 {
			io.WriteString(w, " ")
		}
		fmt.Fprintf(w, "%d %d", iround(p.X), iround(p.Y))
	}
	io.WriteString(w, "\n")
}

// EmitSegment writes a two-point polyline.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	d.polyline(s, []geom.Point{p0, p1}, 1, false)
	return nil
}

// FillRegion writes each ring as a filled, unstroked polygon.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	ink := *s
	ink.PenType = 0
	ink.FillLevel = 1
	ink.FillColor = s.EffectiveFillColor()
	for _, ring := range rings {
		d.polyline(&ink, ring, 3, true)
	}
	return nil
}

// Colors are written with each object.
func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath writes the path as one polyline or polygon.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected {
		return false, nil
	}
	sub := 1
	if p.Closed {
		sub = 3
	}
	d.polyline(s, p.DevicePoints(s.Transform), sub, s.Filled())
	return true, nil
}

// RenderBox writes an xfig box when the map keeps it rectangular.
func (d *Device) RenderBox(s *plot.State, p0, p1 geom.Point) (bool, error) {
	if !s.Transform.AxesPreserved {
		return false, nil
	}
	pts := []geom.Point{p0, geom.Pt(p1.X, p0.Y), p1, geom.Pt(p0.X, p1.Y), p0}
	if s.Orientation < 0 {
		pts[1], pts[3] = pts[3], pts[1]
	}
	for i := range pts {
		pts[i] = s.Transform.ToDevice(pts[i])
	}
	d.polyline(s, pts, 2, s.Filled())
	return true, nil
}

// RenderEllipse writes an xfig ellipse. The image of an ellipse under an
// affine map is an ellipse, so any map is accepted.
func (d *Device) RenderEllipse(s *plot.State, c geom.Point, rx, ry, angle float64) (bool, error) {
	drx, dry, dangle := geom.EllipseAxes(s.Transform.M, rx, ry, angle)
	dc := s.Transform.ToDevice(c)
	lstyle, thick, sval := style(s)
	fc, area := d.fill(s, s.Filled())
	sub := 1
	if math.Abs(drx-dry) < 1e-9*drx {
		sub = 3
	}
	dir := 1
	if s.Orientation < 0 {
		dir = 0
	}
	// xfig angles run counterclockwise on screen, against device y
	theta := -dangle * math.Pi / 180
	cx, cy := iround(dc.X), iround(dc.Y)
	fmt.Fprintf(d.out(), "1 %d %d %d %d %d %d -1 %d %.3f %d %.4f %d %d %d %d %d %d %d %d\n",
		sub, lstyle, thick, d.Color(s.PenColor), fc, d.nextDepth(), area, sval, dir, theta,
		cx, cy, iround(drx), iround(dry), cx, cy, cx+iround(drx), cy)
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

var justification = map[plot.HAlign]int{
	plot.AlignLeft:   0,
	plot.AlignCenter: 1,
	plot.AlignRight:  2,
}

// fontIndex is the xfig numbering of the resident PostScript fonts.
var fontIndex = map[string]int{
	"Times-Roman": 0, "Times-Italic": 1, "Times-Bold": 2, "Times-BoldItalic": 3,
	"AvantGarde-Book": 4, "AvantGarde-BookOblique": 5, "AvantGarde-Demi": 6, "AvantGarde-DemiOblique": 7,
	"Bookman-Light": 8, "Bookman-LightItalic": 9, "Bookman-Demi": 10, "Bookman-DemiItalic": 11,
	"Courier": 12, "Courier-Oblique": 13, "Courier-Bold": 14, "Courier-BoldOblique": 15,
	"Helvetica": 16, "Helvetica-Oblique": 17, "Helvetica-Bold": 18, "Helvetica-BoldOblique": 19,
	"Helvetica-Narrow": 20, "Helvetica-Narrow-Oblique": 21, "Helvetica-Narrow-Bold": 22, "Helvetica-Narrow-BoldOblique": 23,
	"NewCenturySchlbk-Roman": 24, "NewCenturySchlbk-Italic": 25, "NewCenturySchlbk-Bold": 26, "NewCenturySchlbk-BoldItalic": 27,
	"Palatino-Roman": 28, "Palatino-Italic": 29, "Palatino-Bold": 30, "Palatino-BoldItalic": 31,
	"Symbol": 32, "ZapfChancery-MediumItalic": 33, "ZapfDingbats": 34,
}

// RenderLabel writes a text object when the map does not distort text.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	// the page flips y, so an upright label has a reflecting map
	if !s.Transform.Uniform || s.Transform.NonReflection {
		return false, nil
	}
	size := s.DeviceFontSize()
	points := size * 72 / UnitsPerInch
	angle := -s.DeviceTextAngle() * math.Pi / 180
	if angle == 0 {
		angle = 0 // not -0
	}
	// shift the baseline along the text's up direction; device y is down
	up := geom.Pt(-math.Sin(angle), -math.Cos(angle))
	pos := s.Transform.ToDevice(s.Pos).Add(up.Mul(baseline[v] * size))
	length := float64(len(text)) * 0.6 * size
	fmt.Fprintf(d.out(), "4 %d %d %d -1 %d %.3f %.4f 4 %d %d %d %d %s\\001\n",
		justification[h], d.Color(s.PenColor), d.nextDepth(), fontIndex[ps.FontName(s.FontName)],
		points, angle, iround(0.7*size), iround(length), iround(pos.X), iround(pos.Y), escape(text))
	return true, nil
}

func escape(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Flush implements plot.Flusher.
func (d *Device) Flush() error {
	return d.w.Flush()
}

func iround(v float64) int {
	return int(math.Round(v))
}
