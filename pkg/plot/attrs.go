package plot

import (
	"math"
	"strings"

	"github.com/opd-ai/go-plotutils/internal/colors"
)

// setAttr is the common shape of every attribute setter: check the
// lifecycle, end the path in progress, apply, then record.
func (p *Plotter) setAttr(op Op, apply func(s *State), text string, args ...float64) error {
	if err := p.check(op); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	apply(p.state)
	return p.record(op, text, args...)
}

func rgbArgs(c colors.RGB) []float64 {
	return []float64{float64(c.R), float64(c.G), float64(c.B)}
}

// PenColor sets the stroke color.
func (p *Plotter) PenColor(c colors.RGB) error {
	return p.setAttr(OpPenColor, func(s *State) { s.PenColor = c }, "", rgbArgs(c)...)
}

// PenColorName sets the stroke color from a name or color specification.
func (p *Plotter) PenColorName(name string) error {
	c, err := p.parseColor(OpPenColor, name)
	if err != nil {
		return err
	}
	return p.PenColor(c)
}

// FillColor sets the fill color.
func (p *Plotter) FillColor(c colors.RGB) error {
	return p.setAttr(OpFillColor, func(s *State) { s.FillColor = c }, "", rgbArgs(c)...)
}

// FillColorName sets the fill color from a name or color specification.
func (p *Plotter) FillColorName(name string) error {
	c, err := p.parseColor(OpFillColor, name)
	if err != nil {
		return err
	}
	return p.FillColor(c)
}

// Color sets both the stroke and the fill color.
func (p *Plotter) Color(c colors.RGB) error {
	if err := p.PenColor(c); err != nil {
		return err
	}
	return p.FillColor(c)
}

// ColorName sets both colors from a name or color specification.
func (p *Plotter) ColorName(name string) error {
	c, err := p.parseColor(OpPenColor, name)
	if err != nil {
		return err
	}
	return p.Color(c)
}

// FillType sets the fill level: 0 disables filling, 1 fills with the fill
// color and 0xffff with white.
func (p *Plotter) FillType(level int) error {
	if err := p.check(OpFillType); err != nil {
		return err
	}
	if level < 0 || level > 0xffff {
		return badParam(OpFillType, "fill level %d out of range", level)
	}
	return p.setAttr(OpFillType, func(s *State) { s.FillLevel = level }, "", float64(level))
}

// FillMod sets the fill rule by name ("even-odd", "nonzero-winding").
func (p *Plotter) FillMod(mode string) error {
	if err := p.check(OpFillMod); err != nil {
		return err
	}
	r, err := ParseFillRule(mode)
	if err != nil {
		return badParam(OpFillMod, "%v", err)
	}
	return p.setAttr(OpFillMod, func(s *State) { s.FillRule = r }, r.String())
}

// LineMod sets the line style by name. It cancels any dash array set with
// LineDash.
func (p *Plotter) LineMod(mode string) error {
	if err := p.check(OpLineMod); err != nil {
		return err
	}
	if _, ok := lineStyles[mode]; !ok {
		return badParam(OpLineMod, "unknown line mode %q", mode)
	}
	return p.setAttr(OpLineMod, func(s *State) {
		s.LineMode = mode
		s.DashSet = false
		s.Dash = nil
		s.DashOffset = 0
	}, mode)
}

// LineDash sets an explicit dash array in user units, replacing the line
// mode's pattern. An empty array draws solid lines.
func (p *Plotter) LineDash(dashes []float64, offset float64) error {
	if err := p.check(OpLineDash); err != nil {
		return err
	}
	for _, d := range dashes {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return badParam(OpLineDash, "bad dash length %g", d)
		}
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return badParam(OpLineDash, "bad dash offset %g", offset)
	}
	own := append([]float64(nil), dashes...)
	args := append([]float64{offset}, own...)
	return p.setAttr(OpLineDash, func(s *State) {
		s.Dash = own
		s.DashOffset = offset
		s.DashSet = true
	}, "", args...)
}

// LineWidth sets the line width in user units. A negative width restores
// the device default.
func (p *Plotter) LineWidth(w float64) error {
	return p.setAttr(OpLineWidth, func(s *State) {
		if w < 0 {
			s.lineWidthSet = false
			s.resetDefaults(p.info)
			return
		}
		s.LineWidth = w
		s.lineWidthSet = true
	}, "", w)
}

// JoinMod sets the line join style by name.
func (p *Plotter) JoinMod(mode string) error {
	if err := p.check(OpJoinMod); err != nil {
		return err
	}
	j, err := ParseJoinMode(mode)
	if err != nil {
		return badParam(OpJoinMod, "%v", err)
	}
	return p.setAttr(OpJoinMod, func(s *State) { s.Join = j }, j.String())
}

// CapMod sets the line cap style by name.
func (p *Plotter) CapMod(mode string) error {
	if err := p.check(OpCapMod); err != nil {
		return err
	}
	c, err := ParseCapMode(mode)
	if err != nil {
		return badParam(OpCapMod, "%v", err)
	}
	return p.setAttr(OpCapMod, func(s *State) { s.Cap = c }, c.String())
}

// MiterLimit sets the miter limit; it must be at least 1.
func (p *Plotter) MiterLimit(limit float64) error {
	if err := p.check(OpMiterLimit); err != nil {
		return err
	}
	if limit < 1 || math.IsNaN(limit) {
		return badParam(OpMiterLimit, "miter limit %g below 1", limit)
	}
	return p.setAttr(OpMiterLimit, func(s *State) { s.MiterLimit = limit }, "", limit)
}

// PenType turns the pen off (0) or on (non-zero).
func (p *Plotter) PenType(level int) error {
	return p.setAttr(OpPenType, func(s *State) { s.PenType = level }, "", float64(level))
}

// Orientation sets the direction of subsequently drawn boxes, circles and
// ellipses: 1 counterclockwise, -1 clockwise.
func (p *Plotter) Orientation(dir int) error {
	if err := p.check(OpOrientation); err != nil {
		return err
	}
	if dir != 1 && dir != -1 {
		return badParam(OpOrientation, "orientation %d is not 1 or -1", dir)
	}
	return p.setAttr(OpOrientation, func(s *State) { s.Orientation = dir }, "", float64(dir))
}

// FontName selects a font. An empty name restores the device default.
func (p *Plotter) FontName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = p.info.Font
	}
	return p.setAttr(OpFontName, func(s *State) { s.FontName = name }, name)
}

// FontSize sets the font size in user units. Zero or a negative size
// restores the device default.
func (p *Plotter) FontSize(size float64) error {
	return p.setAttr(OpFontSize, func(s *State) {
		if size <= 0 {
			s.fontSizeSet = false
			s.resetDefaults(p.info)
			return
		}
		s.FontSize = size
		s.fontSizeSet = true
	}, "", size)
}

// TextAngle sets the label rotation in degrees, counterclockwise in user
// space.
func (p *Plotter) TextAngle(degrees float64) error {
	return p.setAttr(OpTextAngle, func(s *State) { s.TextAngle = degrees }, "", degrees)
}
