package plot

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/opd-ai/go-plotutils/internal/geom"
)

// HAlign is the horizontal justification of a label.
type HAlign byte

// Horizontal justifications.
const (
	AlignLeft   HAlign = 'l'
	AlignCenter HAlign = 'c'
	AlignRight  HAlign = 'r'
)

func (h HAlign) fraction() (float64, bool) {
	switch h {
	case AlignLeft:
		return 0, true
	case AlignCenter:
		return 0.5, true
	case AlignRight:
		return 1, true
	}
	return 0, false
}

// VAlign is the vertical justification of a label.
type VAlign byte

// Vertical justifications.
const (
	AlignBottom   VAlign = 'b'
	AlignBaseline VAlign = 'x'
	AlignMiddle   VAlign = 'c'
	AlignCapLine  VAlign = 'C'
	AlignTop      VAlign = 't'
)

// curveSteps is the number of chords per glyph curve segment.
const curveSteps = 6

// textLayout is a string set in font units, y up, with the origin at the
// start of the baseline.
type textLayout struct {
	rings     [][]geom.Point
	width     float64
	ascent    float64
	descent   float64
	capHeight float64
	upem      float64
	missing   []rune
}

func fx(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// verticalOffset returns the baseline shift that puts the v reference line
// at the origin.
func (l *textLayout) verticalOffset(v VAlign) (float64, bool) {
	switch v {
	case AlignBottom:
		return l.descent, true
	case AlignBaseline:
		return 0, true
	case AlignMiddle:
		return -(l.ascent - l.descent) / 2, true
	case AlignCapLine:
		return -l.capHeight, true
	case AlignTop:
		return -l.ascent, true
	}
	return 0, false
}

func layoutText(face FontFace, text string, outlines bool) (*textLayout, error) {
	f, err := outlineFont(face)
	if err != nil {
		return nil, err
	}
	var b sfnt.Buffer
	upem := f.UnitsPerEm()
	ppem := fixed.I(int(upem))
	m, err := f.Metrics(&b, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read font metrics: %w", err)
	}
	l := &textLayout{
		upem:      float64(upem),
		ascent:    fx(m.Ascent),
		descent:   fx(m.Descent),
		capHeight: fx(m.CapHeight),
	}
	if l.capHeight <= 0 {
		l.capHeight = 0.7 * l.ascent
	}

	x := 0.0
	var prev sfnt.GlyphIndex
	for _, r := range text {
		gi, err := f.GlyphIndex(&b, r)
		if err != nil {
			return nil, fmt.Errorf("failed to map rune %q: %w", r, err)
		}
		if gi == 0 && r != ' ' {
			l.missing = append(l.missing, r)
		}
		if prev != 0 && gi != 0 {
			if k, err := f.Kern(&b, prev, gi, ppem, font.HintingNone); err == nil {
				x += fx(k)
			}
		}
		if outlines {
			segs, err := f.LoadGlyph(&b, gi, ppem, nil)
			if err == nil {
				l.rings = append(l.rings, flattenGlyph(segs, x)...)
			}
		}
		adv, err := f.GlyphAdvance(&b, gi, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("failed to read advance of %q: %w", r, err)
		}
		x += fx(adv)
		prev = gi
	}
	l.width = x
	return l, nil
}

// flattenGlyph converts glyph segments to closed rings shifted by x0. sfnt
// coordinates grow downward, so y is negated.
func flattenGlyph(segs sfnt.Segments, x0 float64) [][]geom.Point {
	var rings [][]geom.Point
	var cur []geom.Point
	pt := func(a fixed.Point26_6) geom.Point {
		return geom.Pt(x0+fx(a.X), -fx(a.Y))
	}
	closeRing := func() {
		if len(cur) >= 3 {
			if cur[0] != cur[len(cur)-1] {
				cur = append(cur, cur[0])
			}
			rings = append(rings, cur)
		}
		cur = nil
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeRing()
			cur = []geom.Point{pt(seg.Args[0])}
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p0, p1, p2 := cur[len(cur)-1], pt(seg.Args[0]), pt(seg.Args[1])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur = append(cur, p0.Mul(u*u).Add(p1.Mul(2*u*t)).Add(p2.Mul(t*t)))
			}
		case sfnt.SegmentOpCubeTo:
			p0, p1, p2, p3 := cur[len(cur)-1], pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur = append(cur, p0.Mul(u*u*u).Add(p1.Mul(3*u*u*t)).Add(p2.Mul(3*u*t*t)).Add(p3.Mul(t*t*t)))
			}
		}
	}
	closeRing()
	return rings
}

// Label draws text left-justified on the baseline at the cursor.
func (p *Plotter) Label(text string) error {
	return p.ALabel(AlignLeft, AlignBaseline, text)
}

// ALabel draws text at the cursor with the given justification, rotated by
// the text angle. The cursor moves to the right end of the string.
func (p *Plotter) ALabel(h HAlign, v VAlign, text string) error {
	if err := p.check(OpLabel); err != nil {
		return err
	}
	hfrac, ok := h.fraction()
	if !ok {
		return badParam(OpLabel, "horizontal justification %q", rune(h))
	}
	if _, ok := (&textLayout{}).verticalOffset(v); !ok {
		return badParam(OpLabel, "vertical justification %q", rune(v))
	}
	if err := p.endPath(); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	s := p.state

	native := false
	if p.ovr.label != nil {
		handled, err := p.ovr.label.RenderLabel(s, h, v, text)
		if err != nil {
			return opErr(OpLabel, err)
		}
		native = handled
	}

	l, err := layoutText(ResolveFont(s.FontName), text, !native)
	if err != nil {
		return opErr(OpLabel, err)
	}
	if len(l.missing) > 0 {
		p.warnOnce("font has no glyph for some characters", "font", s.FontName, "runes", string(l.missing))
	}
	k := s.FontSize / l.upem
	rot := geom.RotateMatrix(s.TextAngle)

	if !native && len(l.rings) > 0 {
		dy, _ := l.verticalOffset(v)
		toUser := geom.TranslateMatrix(-hfrac*l.width, dy).
			Then(geom.ScaleMatrix(k, k)).
			Then(rot).
			Then(geom.TranslateMatrix(s.Pos.X, s.Pos.Y))
		m := toUser.Then(s.Transform.M)
		rings := make([][]geom.Point, len(l.rings))
		for i, ring := range l.rings {
			out := make([]geom.Point, len(ring))
			for j, pt := range ring {
				out[j] = m.Apply(pt)
			}
			rings[i] = out
		}
		ink := s.clone()
		ink.FillColor = s.PenColor
		ink.FillLevel = 1
		if err := p.fill(ink, rings, NonZero); err != nil {
			return opErr(OpLabel, err)
		}
	}

	s.Pos = s.Pos.Add(rot.ApplyDistance(geom.Pt((1-hfrac)*l.width*k, 0)))
	return nil
}

// LabelWidth returns the width of text in user units in the current font.
func (p *Plotter) LabelWidth(text string) (float64, error) {
	if err := p.check(OpLabelWidth); err != nil {
		return 0, err
	}
	l, err := layoutText(ResolveFont(p.state.FontName), text, false)
	if err != nil {
		return 0, opErr(OpLabelWidth, err)
	}
	return l.width * p.state.FontSize / l.upem, nil
}
