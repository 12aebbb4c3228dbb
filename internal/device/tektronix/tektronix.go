// Package tektronix implements the Tektronix 4014 terminal device.
//
// The screen is 4096x3120 addresses with the square plotting area centered
// horizontally. Segments are clipped to the screen, the terminal cannot
// fill, and colors reach the screen only through kermit's ANSI escapes
// (TERM=kermit).
package tektronix

import (
	"io"
	"math"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/internal/tek"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// lineTypes are the line modes the terminal draws in hardware.
var lineTypes = map[string]tek.LineType{
	plot.LineSolid:       tek.Solid,
	plot.LineDotted:      tek.Dotted,
	plot.LineDotDashed:   tek.DotDashed,
	plot.LineShortDashed: tek.ShortDashed,
	plot.LineLongDashed:  tek.LongDashed,
}

// Device writes a Tek 4014 stream.
type Device struct {
	enc    *tek.Encoder
	kermit bool
	maxLen int
}

// New returns a device writing to w. A nil params uses the defaults.
func New(w io.Writer, params *config.Params) *Device {
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	return &Device{
		enc:    tek.NewEncoder(w),
		kermit: params.Kermit(),
		maxLen: params.MaxLineLength,
	}
}

// screen is the full addressable area.
var screen = geom.R(0, 0, tek.Width-1, tek.Height-1)

// Info implements plot.Device.
func (d *Device) Info() plot.DeviceInfo {
	side := float64(tek.Width-tek.Height) / 2 / (tek.Width - 1)
	return plot.DeviceInfo{
		Name: "tek",
		View: geom.Viewport{
			Bounds:  screen,
			Squeeze: geom.Margins{Left: side, Right: side},
		},
		LineWidth:       0,
		Font:            "HersheySerif",
		FontSize:        1.0 / 50,
		MaxUnfilledPath: d.maxLen,
		ClipSegments:    true,
	}
}

// Capability reports that the terminal cannot fill.
func (d *Device) Capability(op plot.Op) (plot.Cap, bool) {
	if op == plot.OpFillType {
		return plot.CapNone, true
	}
	return 0, false
}

// BeginPage clears the screen for every page after the first.
func (d *Device) BeginPage(n int, s *plot.State) error {
	if n > 1 {
		d.enc.Erase()
	}
	return nil
}

// EndPage returns the terminal to alpha mode.
func (d *Device) EndPage(n int) error {
	d.enc.Alpha()
	return d.enc.Flush()
}

// Erase clears the screen. The background is always dark.
func (d *Device) Erase(s *plot.State) error {
	d.enc.Erase()
	return nil
}

// Flush implements plot.Flusher.
func (d *Device) Flush() error {
	return d.enc.Flush()
}

func iround(v float64) int {
	return int(math.Round(v))
}

// EmitSegment draws a solid vector; patterns have already been applied.
// A zero-length segment is plotted as a point.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	if p0 == p1 {
		d.enc.Point(iround(p0.X), iround(p0.Y))
		return nil
	}
	d.enc.SetLineType(tek.Solid)
	d.enc.Segment(iround(p0.X), iround(p0.Y), iround(p1.X), iround(p1.Y))
	return nil
}

// FillRegion is a no-op.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	return nil
}

// SetPenColor sends the nearest ANSI color under kermit.
func (d *Device) SetPenColor(s *plot.State) error {
	if d.kermit {
		d.enc.SetColor(colors.ANSI16.Nearest(s.PenColor))
	}
	return nil
}

// SetFillColor is a no-op.
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath draws paths in the standard line modes with the terminal's
// own patterns. User dash arrays and the other modes are dashed by the
// engine.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	lt, ok := lineTypes[s.LineMode]
	if !ok || s.DashSet {
		return false, nil
	}
	if !s.Stroked() {
		return true, nil
	}
	if err := d.SetPenColor(s); err != nil {
		return true, err
	}
	d.enc.SetLineType(lt)
	for _, run := range geom.ClipPolyline(p.DevicePoints(s.Transform), screen) {
		for i := 0; i+1 < len(run); i++ {
			a, b := run[i], run[i+1]
			d.enc.Segment(iround(a.X), iround(a.Y), iround(b.X), iround(b.Y))
		}
	}
	return true, nil
}

// charSize returns the largest hardware size no taller than h.
func charSize(h float64) tek.CharSize {
	for i, ch := range tek.CharHeight {
		if float64(ch) <= h {
			return tek.CharSize(i)
		}
	}
	return tek.CharSize(len(tek.CharHeight) - 1)
}

// RenderLabel writes horizontal text with the hardware font. Rotated or
// non-ASCII text is outlined by the engine instead.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	angle := math.Mod(s.DeviceTextAngle(), 360)
	if math.Abs(angle) > 0.5 && math.Abs(angle) < 359.5 {
		return false, nil
	}
	for i := 0; i < len(text); i++ {
		if text[i] < 0x20 || text[i] >= 0x7f {
			return false, nil
		}
	}
	if !s.Stroked() {
		return true, nil
	}
	if err := d.SetPenColor(s); err != nil {
		return true, err
	}
	size := charSize(s.DeviceFontSize())
	width := float64(len(text) * tek.CharWidth[size])
	height := float64(tek.CharHeight[size])

	pos := s.Transform.ToDevice(s.Pos)
	switch h {
	case plot.AlignCenter:
		pos.X -= width / 2
	case plot.AlignRight:
		pos.X -= width
	}
	switch v {
	case plot.AlignMiddle:
		pos.Y -= height / 3
	case plot.AlignTop, plot.AlignCapLine:
		pos.Y -= height * 2 / 3
	}
	if !screen.Contains(pos) {
		return true, nil
	}
	d.enc.SetCharSize(size)
	d.enc.Text(iround(pos.X), iround(pos.Y), text)
	return true, nil
}
