package plot

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
)

// FillRule selects how self-intersecting regions are filled.
type FillRule int

const (
	// EvenOdd fills points enclosed an odd number of times.
	EvenOdd FillRule = iota
	// NonZero fills points with a non-zero winding number.
	NonZero
)

// String returns the libplot name of the rule.
func (r FillRule) String() string {
	if r == NonZero {
		return "nonzero-winding"
	}
	return "even-odd"
}

// ParseFillRule accepts the libplot fill mode names.
func ParseFillRule(s string) (FillRule, error) {
	switch s {
	case "even-odd", "alternate", "":
		return EvenOdd, nil
	case "nonzero-winding", "winding", "nonzero":
		return NonZero, nil
	}
	return EvenOdd, fmt.Errorf("unknown fill mode %q", s)
}

// JoinMode is the line join style.
type JoinMode int

const (
	JoinMiter JoinMode = iota
	JoinRound
	JoinBevel
	JoinTriangular
)

var joinNames = []string{"miter", "round", "bevel", "triangular"}

func (j JoinMode) String() string {
	if j < 0 || int(j) >= len(joinNames) {
		return "unknown"
	}
	return joinNames[j]
}

// ParseJoinMode accepts the libplot join mode names.
func ParseJoinMode(s string) (JoinMode, error) {
	if s == "mitre" {
		return JoinMiter, nil
	}
	for i, n := range joinNames {
		if n == s {
			return JoinMode(i), nil
		}
	}
	return JoinMiter, fmt.Errorf("unknown join mode %q", s)
}

// CapMode is the line cap style.
type CapMode int

const (
	CapButt CapMode = iota
	CapRound
	CapProjecting
	CapTriangular
)

var capNames = []string{"butt", "round", "projecting", "triangular"}

func (c CapMode) String() string {
	if c < 0 || int(c) >= len(capNames) {
		return "unknown"
	}
	return capNames[c]
}

// ParseCapMode accepts the libplot cap mode names.
func ParseCapMode(s string) (CapMode, error) {
	for i, n := range capNames {
		if n == s {
			return CapMode(i), nil
		}
	}
	return CapButt, fmt.Errorf("unknown cap mode %q", s)
}

// Line modes. "disconnected" draws each path vertex as a point.
const (
	LineSolid           = "solid"
	LineDotted          = "dotted"
	LineDotDashed       = "dotdashed"
	LineShortDashed     = "shortdashed"
	LineLongDashed      = "longdashed"
	LineDotDotDashed    = "dotdotdashed"
	LineDotDotDotDashed = "dotdotdotdashed"
	LineDisconnected    = "disconnected"
)

// lineStyles are dash patterns in units of the line width.
var lineStyles = map[string][]float64{
	LineSolid:           nil,
	LineDotted:          {1, 3},
	LineDotDashed:       {4, 3, 1, 3},
	LineShortDashed:     {4, 4},
	LineLongDashed:      {7, 4},
	LineDotDotDashed:    {4, 3, 1, 3, 1, 3},
	LineDotDotDotDashed: {4, 3, 1, 3, 1, 3, 1, 3},
	LineDisconnected:    nil,
}

// minDashUnit is the smallest dash unit, as a fraction of the smaller
// device dimension, so dashes stay visible with hairlines.
const minDashUnit = 1.0 / 576

// DefaultMiterLimit matches PostScript's default.
const DefaultMiterLimit = 10.43

// State is one frame of the drawing-state stack. Devices receive a pointer
// to the top state and must treat it as read-only.
type State struct {
	Transform geom.Transform
	// Pos is the graphics cursor in user coordinates.
	Pos geom.Point

	// LineWidth is in user units.
	LineWidth float64
	LineMode  string
	// Dash, when DashSet, replaces the LineMode pattern; user units.
	Dash       []float64
	DashOffset float64
	DashSet    bool
	Join       JoinMode
	Cap        CapMode
	MiterLimit float64

	FontName string
	// FontSize is in user units.
	FontSize  float64
	TextAngle float64

	PenColor  colors.RGB
	FillColor colors.RGB
	BgColor   colors.RGB
	// FillLevel is 0 for unfilled, 1 for FillColor and up to 0xffff for
	// white.
	FillLevel   int
	FillRule    FillRule
	PenType     int
	Orientation int

	lineWidthSet bool
	fontSizeSet  bool

	path Path
	prev *State
}

// newBottomState returns the default state for a device.
func newBottomState(info DeviceInfo) *State {
	s := &State{
		Transform:   geom.NewTransform(info.View),
		LineMode:    LineSolid,
		Join:        JoinMiter,
		Cap:         CapButt,
		MiterLimit:  DefaultMiterLimit,
		FontName:    info.Font,
		PenColor:    colors.Black,
		FillColor:   colors.Black,
		BgColor:     colors.White,
		FillRule:    EvenOdd,
		PenType:     1,
		Orientation: 1,
	}
	s.resetDefaults(info)
	return s
}

// resetDefaults recomputes the line width and font size the caller has
// never set, from the device fractions and the current user map.
func (s *State) resetDefaults(info DeviceInfo) {
	norm := s.Transform.UserNorm()
	if norm == 0 {
		return
	}
	if !s.lineWidthSet {
		s.LineWidth = info.LineWidth / norm
	}
	if !s.fontSizeSet {
		s.FontSize = info.FontSize / norm
	}
}

// clone returns a field-by-field copy with an empty path. Slices are deep
// copied so states never share backing arrays.
func (s *State) clone() *State {
	c := *s
	c.Dash = append([]float64(nil), s.Dash...)
	c.path = Path{}
	c.prev = nil
	return &c
}

// Snapshot returns a detached copy of s, without its path or stack link.
func (s *State) Snapshot() State {
	return *s.clone()
}

// Path returns the path in progress. Devices must not modify it.
func (s *State) Path() *Path {
	return &s.path
}

// DeviceLineWidth returns the line width in device units.
func (s *State) DeviceLineWidth() float64 {
	return s.Transform.DeviceLength(s.LineWidth)
}

// DeviceFontSize returns the font size in device units.
func (s *State) DeviceFontSize() float64 {
	return s.Transform.DeviceLength(s.FontSize)
}

// DeviceTextAngle returns the text baseline direction on the device, in
// degrees.
func (s *State) DeviceTextAngle() float64 {
	return s.Transform.Angle(s.TextAngle)
}

// EffectiveFillColor returns FillColor desaturated by FillLevel.
func (s *State) EffectiveFillColor() colors.RGB {
	return colors.Desaturate(s.FillColor, s.FillLevel)
}

// Filled reports whether closed objects are filled.
func (s *State) Filled() bool {
	return s.FillLevel > 0
}

// Stroked reports whether the pen draws.
func (s *State) Stroked() bool {
	return s.PenType != 0
}

// DashPattern returns the dash pattern in device units, or nil for a solid
// line, and the offset into it.
func (s *State) DashPattern() ([]float64, float64) {
	if s.DashSet {
		if len(s.Dash) == 0 {
			return nil, 0
		}
		scale := math.Sqrt(math.Abs(s.Transform.M.Det()))
		out := make([]float64, len(s.Dash))
		total := 0.0
		for i, d := range s.Dash {
			out[i] = d * scale
			total += out[i]
		}
		if total == 0 {
			return nil, 0
		}
		return out, s.DashOffset * scale
	}
	style := lineStyles[s.LineMode]
	if len(style) == 0 {
		return nil, 0
	}
	b := s.Transform.DeviceBounds()
	unit := math.Max(s.DeviceLineWidth(), minDashUnit*math.Min(math.Abs(b.Dx()), math.Abs(b.Dy())))
	out := make([]float64, len(style))
	for i, d := range style {
		out[i] = d * unit
	}
	return out, 0
}
