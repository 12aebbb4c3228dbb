// Package ps implements the PostScript output device. It writes a
// multi-page DSC 3.0 document; paths, arcs, ellipses and labels are
// rendered with PostScript's own operators under any affine map.
package ps

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device/page"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Device writes PostScript.
type Device struct {
	w      *bufio.Writer
	layout page.Layout
	maxLen int

	started bool
	pages   int
	bbox    page.BBox
	fonts   map[string]bool
}

// New returns a device writing to w, laid out by PAGESIZE and ROTATION.
func New(w io.Writer, params *config.Params) (*Device, error) {
	l, err := page.New(params, config.PointsPerInch)
	if err != nil {
		return nil, err
	}
	d := &Device{w: bufio.NewWriter(w), layout: l, fonts: make(map[string]bool)}
	if params != nil {
		d.maxLen = params.MaxLineLength
	}
	return d, nil
}

// Layout returns the page layout.
func (d *Device) Layout() page.Layout {
	return d.layout
}

// Info implements plot.Device.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:            "ps",
		View:            d.layout.View,
		LineWidth:       1.0 / 850,
		Font:            "Helvetica",
		FontSize:        1.0 / 50,
		MaxUnfilledPath: d.maxLen,
	}
}

const prolog = `%%BeginProlog
/m { moveto } bind def
/l { lineto } bind def
/rgb { setrgbcolor } bind def
/ellipse { matrix currentmatrix 7 1 roll concat translate rotate scale 0 0 1 0 360 arc closepath setmatrix } bind def
%%EndProlog
`

func (d *Device) start() {
	if d.started {
		return
	}
	d.started = true
	w, h := d.layout.Width, d.layout.Height
	fmt.Fprintf(d.w, "%%!PS-Adobe-3.0\n")
	fmt.Fprintf(d.w, "%%%%Creator: go-plotutils\n")
	fmt.Fprintf(d.w, "%%%%Title: plot\n")
	fmt.Fprintf(d.w, "%%%%Pages: (atend)\n")
	fmt.Fprintf(d.w, "%%%%BoundingBox: (atend)\n")
	fmt.Fprintf(d.w, "%%%%DocumentNeededResources: (atend)\n")
	fmt.Fprintf(d.w, "%%%%DocumentMedia: %s %s %s 0 () ()\n", d.layout.Size.Name, num(w), num(h))
	fmt.Fprintf(d.w, "%%%%EndComments\n")
	d.w.WriteString(prolog)
}

// BeginPage implements plot.Device.
func (d *Device) BeginPage(n int, s *plot.State) error {
	d.start()
	d.pages = n
	_, err := fmt.Fprintf(d.w, "%%%%Page: %d %d\n/pagesave save def\n", n, n)
	return err
}

// EndPage implements plot.Device.
func (d *Device) EndPage(n int) error {
	if _, err := d.w.WriteString("pagesave restore\nshowpage\n"); err != nil {
		return err
	}
	return d.w.Flush()
}

// SaveState brackets the pushed drawing state with a graphics-state save.
func (d *Device) SaveState(top *plot.State) error {
	_, err := d.w.WriteString("gsave\n")
	return err
}

// RestoreState implements plot.StateHook.
func (d *Device) RestoreState(top *plot.State) error {
	_, err := d.w.WriteString("grestore\n")
	return err
}

// Erase paints the whole page in the background color.
func (d *Device) Erase(s *plot.State) error {
	_, err := fmt.Fprintf(d.w, "gsave %s rgb 0 0 %s %s rectfill grestore\n",
		rgb(s.BgColor), num(d.layout.Width), num(d.layout.Height))
	return err
}

// EmitSegment strokes one segment. A zero-length segment is drawn as a
// dot of the line width.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	lw := s.DeviceLineWidth()
	d.bbox.AddAll([]geom.Point{p0, p1}, lw/2)
	if p0 == p1 {
		r := math.Max(lw/2, 0.5)
		_, err := fmt.Fprintf(d.w, "newpath %s %s %s 0 360 arc %s rgb fill\n",
			num(p0.X), num(p0.Y), num(r), rgb(s.PenColor))
		return err
	}
	fmt.Fprintf(d.w, "newpath %s %s m %s %s l\n", num(p0.X), num(p0.Y), num(p1.X), num(p1.Y))
	return d.stroke(s)
}

// FillRegion fills rings with the current fill color.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	d.w.WriteString("newpath\n")
	for _, ring := range rings {
		d.bbox.AddAll(ring, 0)
		d.polyline(ring, true)
	}
	_, err := fmt.Fprintf(d.w, "%s rgb %s\n", rgb(s.EffectiveFillColor()), fillOp(rule))
	return err
}

// Colors are written with every object.
func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath draws the whole path with one PostScript path. Disconnected
// paths are left to the engine.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected {
		return false, nil
	}
	pts := p.DevicePoints(s.Transform)
	d.bbox.AddAll(pts, s.DeviceLineWidth()/2)
	d.w.WriteString("newpath\n")
	d.polyline(pts, p.Closed)
	return true, d.paint(s)
}

// RenderEllipse draws an ellipse under the user map.
func (d *Device) RenderEllipse(s *plot.State, c geom.Point, rx, ry, angle float64) (bool, error) {
	if rx == 0 || ry == 0 {
		return false, nil
	}
	d.bbox.AddAll(devicePoints(s, geom.EllipsePoints(c, rx, ry, angle)), s.DeviceLineWidth()/2)
	sy := ry
	if s.Orientation < 0 {
		sy = -ry
	}
	fmt.Fprintf(d.w, "newpath %s %s %s %s %s %s ellipse\n",
		num(rx), num(sy), num(angle), num(c.X), num(c.Y), matrix(s.Transform.M))
	return true, d.paint(s)
}

// RenderArc draws a counterclockwise circular arc under the user map.
func (d *Device) RenderArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	r := p0.Sub(c).Len()
	if r == 0 {
		return false, nil
	}
	a0 := math.Atan2(p0.Y-c.Y, p0.X-c.X) * 180 / math.Pi
	a1 := math.Atan2(p1.Y-c.Y, p1.X-c.X) * 180 / math.Pi
	d.bbox.AddAll(devicePoints(s, geom.ArcPoints(c, p0, p1)), s.DeviceLineWidth()/2)
	fmt.Fprintf(d.w, "newpath matrix currentmatrix %s concat %s %s %s %s %s arc setmatrix\n",
		matrix(s.Transform.M), num(c.X), num(c.Y), num(r), num(a0), num(a1))
	return true, d.paint(s)
}

// RenderEllArc draws a quarter ellipse as a quarter of the unit circle
// mapped onto the conjugate radii.
func (d *Device) RenderEllArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	u, v := p0.Sub(c), p1.Sub(c)
	if u.Cross(v) == 0 {
		return false, nil
	}
	e := geom.Matrix{XX: u.X, YX: u.Y, XY: v.X, YY: v.Y, X0: c.X, Y0: c.Y}
	d.bbox.AddAll(devicePoints(s, geom.EllArcPoints(c, p0, p1)), s.DeviceLineWidth()/2)
	fmt.Fprintf(d.w, "newpath matrix currentmatrix %s concat %s concat 0 0 1 0 90 arc setmatrix\n",
		matrix(s.Transform.M), matrix(e))
	return true, d.paint(s)
}

// Vertical offsets of the baseline, as fractions of the font size.
var baseline = map[plot.VAlign]float64{
	plot.AlignBottom:   0.212,
	plot.AlignBaseline: 0,
	plot.AlignMiddle:   -0.359,
	plot.AlignCapLine:  -0.718,
	plot.AlignTop:      -0.931,
}

var hfraction = map[plot.HAlign]float64{
	plot.AlignLeft:   0,
	plot.AlignCenter: 0.5,
	plot.AlignRight:  1,
}

// RenderLabel shows text with a PostScript font, in user space so the
// label follows any rotation or shear of the map.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	font := FontName(s.FontName)
	d.fonts[font] = true
	pos := s.Transform.ToDevice(s.Pos)
	d.bbox.Add(pos, s.DeviceFontSize())
	m := s.Transform.M
	m.X0, m.Y0 = 0, 0
	str := escape(text)
	_, err := fmt.Fprintf(d.w,
		"gsave %s %s translate %s concat %s rotate /%s findfont %s scalefont setfont %s rgb "+
			"%s stringwidth pop %s mul neg %s moveto %s show grestore\n",
		num(pos.X), num(pos.Y), matrix(m), num(s.TextAngle), font, num(s.FontSize), rgb(s.PenColor),
		str, num(hfraction[h]), num(baseline[v]*s.FontSize), str)
	return true, err
}

// Flush implements plot.Flusher.
func (d *Device) Flush() error {
	return d.w.Flush()
}

// Finish writes the trailer.
func (d *Device) Finish() error {
	d.start()
	d.w.WriteString("%%Trailer\n")
	fmt.Fprintf(d.w, "%%%%Pages: %d\n", d.pages)
	if r, ok := d.bbox.Rect(); ok {
		fmt.Fprintf(d.w, "%%%%BoundingBox: %d %d %d %d\n",
			int(math.Floor(r.Min.X)), int(math.Floor(r.Min.Y)), int(math.Ceil(r.Max.X)), int(math.Ceil(r.Max.Y)))
		fmt.Fprintf(d.w, "%%%%HiResBoundingBox: %s %s %s %s\n", num(r.Min.X), num(r.Min.Y), num(r.Max.X), num(r.Max.Y))
	} else {
		d.w.WriteString("%%BoundingBox: 0 0 0 0\n")
	}
	fonts := make([]string, 0, len(d.fonts))
	for f := range d.fonts {
		fonts = append(fonts, f)
	}
	sort.Strings(fonts)
	d.w.WriteString("%%DocumentNeededResources:")
	for i, f := range fonts {
		if i > 0 {
			d.w.WriteString("\n%%+")
		}
		d.w.WriteString(" font " + f)
	}
	d.w.WriteString("\n%%EOF\n")
	return d.w.Flush()
}

func (d *Device) polyline(pts []geom.Point, closed bool) {
	for i, p := range pts {
		op := "l"
		if i == 0 {
			op = "m"
		}
		fmt.Fprintf(d.w, "%s %s %s\n", num(p.X), num(p.Y), op)
	}
	if closed {
		d.w.WriteString("closepath\n")
	}
}

// paint fills and strokes the current path as the state asks.
func (d *Device) paint(s *plot.State) error {
	if s.Filled() {
		fmt.Fprintf(d.w, "gsave %s rgb %s grestore\n", rgb(s.EffectiveFillColor()), fillOp(s.FillRule))
	}
	if !s.Stroked() {
		_, err := d.w.WriteString("newpath\n")
		return err
	}
	return d.stroke(s)
}

func (d *Device) stroke(s *plot.State) error {
	dash, offset := s.DashPattern()
	parts := make([]string, len(dash))
	for i, v := range dash {
		parts[i] = num(v)
	}
	_, err := fmt.Fprintf(d.w, "%s setlinewidth %d setlinejoin %d setlinecap %s setmiterlimit [%s] %s setdash %s rgb stroke\n",
		num(s.DeviceLineWidth()), joinCode(s.Join), capCode(s.Cap), num(s.MiterLimit),
		strings.Join(parts, " "), num(offset), rgb(s.PenColor))
	return err
}

// PostScript has no triangular joins or caps; round is the closest.
func joinCode(j plot.JoinMode) int {
	switch j {
	case plot.JoinRound, plot.JoinTriangular:
		return 1
	case plot.JoinBevel:
		return 2
	}
	return 0
}

func capCode(c plot.CapMode) int {
	switch c {
	case plot.CapRound, plot.CapTriangular:
		return 1
	case plot.CapProjecting:
		return 2
	}
	return 0
}

func fillOp(rule plot.FillRule) string {
	if rule == plot.NonZero {
		return "fill"
	}
	return "eofill"
}

func devicePoints(s *plot.State, pts []geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = s.Transform.ToDevice(p)
	}
	return out
}

// num formats a coordinate with at most four decimals.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rgb(c colors.RGB) string {
	r, g, b := c.Floats()
	return num(r) + " " + num(g) + " " + num(b)
}

// matrix formats m as a PostScript matrix [a b c d tx ty].
func matrix(m geom.Matrix) string {
	return "[" + strings.Join([]string{num(m.XX), num(m.YX), num(m.XY), num(m.YY), num(m.X0), num(m.Y0)}, " ") + "]"
}

// escape returns text as a PostScript string literal.
func escape(text string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '(' || c == ')' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}
