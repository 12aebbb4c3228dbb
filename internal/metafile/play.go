package metafile

import (
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Player replays decoded instructions onto a Plotter.
type Player struct {
	p   *plot.Plotter
	log plot.Logger

	// Page selects a single page (counting from 1); zero plays all pages.
	Page int

	pages    int
	skipping bool
	implicit bool
}

// NewPlayer returns a player drawing on p. Instructions with bad
// parameters or a degenerate window are reported to log and skipped; a nil
// log discards them.
func NewPlayer(p *plot.Plotter, log plot.Logger) *Player {
	if log == nil {
		log = plot.NopLogger()
	}
	return &Player{p: p, log: log}
}

// PlayAll decodes d to the end and replays every instruction. A page left
// open by a truncated or traditional stream is closed.
func (pl *Player) PlayAll(d *Decoder) error {
	for {
		c, err := d.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := pl.Play(c); err != nil {
			return err
		}
	}
	return pl.End()
}

// End closes a page the stream left open.
func (pl *Player) End() error {
	if pl.p.IsOpen() {
		return pl.p.Close()
	}
	return nil
}

// Play replays one instruction. Traditional plot(5) streams have no
// openpl; their first drawing instruction opens a page implicitly.
func (pl *Player) Play(c Command) error {
	switch c.Op {
	case OpComment:
		return nil
	case OpOpenPl:
		pl.pages++
		pl.skipping = pl.Page > 0 && pl.pages != pl.Page
		if pl.skipping {
			return nil
		}
		if pl.p.IsOpen() && pl.implicit {
			if err := pl.p.Close(); err != nil {
				return err
			}
		}
		pl.implicit = false
		return pl.p.Open()
	case OpClosePl:
		if pl.skipping {
			pl.skipping = false
			return nil
		}
		if !pl.p.IsOpen() {
			return nil
		}
		return pl.p.Close()
	}
	if pl.skipping {
		return nil
	}
	if !pl.p.IsOpen() {
		pl.pages++
		if pl.Page > 0 && pl.pages != pl.Page {
			pl.skipping = true
			return nil
		}
		if err := pl.p.Open(); err != nil {
			return err
		}
		pl.implicit = true
	}

	fn, ok := handlers[c.Op]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownOp, c.Op)
	}
	err := fn(pl.p, c.Args, c.Text)
	if errors.Is(err, plot.ErrBadParameter) || errors.Is(err, plot.ErrSingularTransform) {
		pl.log.Warn("skipping instruction", "op", c.Name(), "error", err)
		return nil
	}
	return err
}

type handler func(p *plot.Plotter, a []float64, text string) error

func rgb(a []float64) colors.RGB {
	return colors.RGB{R: uint16(a[0]), G: uint16(a[1]), B: uint16(a[2])}
}

func matrix(a []float64) geom.Matrix {
	return geom.Matrix{XX: a[0], YX: a[1], XY: a[2], YY: a[3], X0: a[4], Y0: a[5]}
}

func dashes(a []float64) ([]float64, float64) {
	n := int(a[0])
	return a[1 : n+1], a[n+1]
}

// handlers covers every opcode but comment, openpl and closepl. Integer
// and real forms share a handler.
var handlers = func() map[byte]handler {
	h := map[byte]handler{
		OpAlabel: func(p *plot.Plotter, a []float64, s string) error {
			return p.ALabel(plot.HAlign(byte(a[0])), plot.VAlign(byte(a[1])), s)
		},
		OpLabel:        func(p *plot.Plotter, a []float64, s string) error { return p.Label(s) },
		OpArc:          func(p *plot.Plotter, a []float64, _ string) error { return p.Arc(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpArcRel:       func(p *plot.Plotter, a []float64, _ string) error { return p.ArcRel(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpEllArc:       func(p *plot.Plotter, a []float64, _ string) error { return p.EllArc(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpEllArcRel:    func(p *plot.Plotter, a []float64, _ string) error { return p.EllArcRel(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpBezier2:      func(p *plot.Plotter, a []float64, _ string) error { return p.Bezier2(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpBezier2Rel:   func(p *plot.Plotter, a []float64, _ string) error { return p.Bezier2Rel(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpBezier3:      func(p *plot.Plotter, a []float64, _ string) error { return p.Bezier3(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7]) },
		OpBezier3Rel:   func(p *plot.Plotter, a []float64, _ string) error { return p.Bezier3Rel(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7]) },
		OpBgColor:      func(p *plot.Plotter, a []float64, _ string) error { return p.BgColor(rgb(a)) },
		OpBox:          func(p *plot.Plotter, a []float64, _ string) error { return p.Box(a[0], a[1], a[2], a[3]) },
		OpBoxRel:       func(p *plot.Plotter, a []float64, _ string) error { return p.BoxRel(a[0], a[1], a[2], a[3]) },
		OpCapMod:       func(p *plot.Plotter, _ []float64, s string) error { return p.CapMod(s) },
		OpCircle:       func(p *plot.Plotter, a []float64, _ string) error { return p.Circle(a[0], a[1], a[2]) },
		OpCircleRel:    func(p *plot.Plotter, a []float64, _ string) error { return p.CircleRel(a[0], a[1], a[2]) },
		OpClosePath:    func(p *plot.Plotter, _ []float64, _ string) error { return p.ClosePath() },
		OpCont:         func(p *plot.Plotter, a []float64, _ string) error { return p.Cont(a[0], a[1]) },
		OpContRel:      func(p *plot.Plotter, a []float64, _ string) error { return p.ContRel(a[0], a[1]) },
		OpEllipse:      func(p *plot.Plotter, a []float64, _ string) error { return p.Ellipse(a[0], a[1], a[2], a[3], a[4]) },
		OpEllipseRel:   func(p *plot.Plotter, a []float64, _ string) error { return p.EllipseRel(a[0], a[1], a[2], a[3], a[4]) },
		OpEndPath:      func(p *plot.Plotter, _ []float64, _ string) error { return p.EndPath() },
		OpEndSubpath:   func(p *plot.Plotter, _ []float64, _ string) error { return p.EndSubpath() },
		OpErase:        func(p *plot.Plotter, _ []float64, _ string) error { return p.Erase() },
		OpFillColor:    func(p *plot.Plotter, a []float64, _ string) error { return p.FillColor(rgb(a)) },
		OpFillMod:      func(p *plot.Plotter, _ []float64, s string) error { return p.FillMod(s) },
		OpFillType:     func(p *plot.Plotter, a []float64, _ string) error { return p.FillType(int(a[0])) },
		OpFontName:     func(p *plot.Plotter, _ []float64, s string) error { return p.FontName(s) },
		OpFontSize:     func(p *plot.Plotter, a []float64, _ string) error { return p.FontSize(a[0]) },
		OpJoinMod:      func(p *plot.Plotter, _ []float64, s string) error { return p.JoinMod(s) },
		OpLine:         func(p *plot.Plotter, a []float64, _ string) error { return p.Line(a[0], a[1], a[2], a[3]) },
		OpLineRel:      func(p *plot.Plotter, a []float64, _ string) error { return p.LineRel(a[0], a[1], a[2], a[3]) },
		OpLineMod:      func(p *plot.Plotter, _ []float64, s string) error { return p.LineMod(s) },
		OpLineWidth:    func(p *plot.Plotter, a []float64, _ string) error { return p.LineWidth(a[0]) },
		OpLineDash:     func(p *plot.Plotter, a []float64, _ string) error { return p.LineDash(dashes(a)) },
		OpMarker:       func(p *plot.Plotter, a []float64, _ string) error { return p.Marker(a[0], a[1], int(a[2]), a[3]) },
		OpMarkerRel:    func(p *plot.Plotter, a []float64, _ string) error { return p.MarkerRel(a[0], a[1], int(a[2]), a[3]) },
		OpMove:         func(p *plot.Plotter, a []float64, _ string) error { return p.Move(a[0], a[1]) },
		OpMoveRel:      func(p *plot.Plotter, a []float64, _ string) error { return p.MoveRel(a[0], a[1]) },
		OpOrientation:  func(p *plot.Plotter, a []float64, _ string) error { return p.Orientation(int(a[0])) },
		OpPenColor:     func(p *plot.Plotter, a []float64, _ string) error { return p.PenColor(rgb(a)) },
		OpPenType:      func(p *plot.Plotter, a []float64, _ string) error { return p.PenType(int(a[0])) },
		OpPoint:        func(p *plot.Plotter, a []float64, _ string) error { return p.Point(a[0], a[1]) },
		OpPointRel:     func(p *plot.Plotter, a []float64, _ string) error { return p.PointRel(a[0], a[1]) },
		OpRestoreState: func(p *plot.Plotter, _ []float64, _ string) error { return p.RestoreState() },
		OpSaveState:    func(p *plot.Plotter, _ []float64, _ string) error { return p.SaveState() },
		OpSpace:        func(p *plot.Plotter, a []float64, _ string) error { return p.Space(a[0], a[1], a[2], a[3]) },
		OpSpace2:       func(p *plot.Plotter, a []float64, _ string) error { return p.Space2(a[0], a[1], a[2], a[3], a[4], a[5]) },
		OpTextAngle:    func(p *plot.Plotter, a []float64, _ string) error { return p.TextAngle(a[0]) },
		OpFConcat:      func(p *plot.Plotter, a []float64, _ string) error { return p.Concat(matrix(a)) },
		OpFSetMatrix:   func(p *plot.Plotter, a []float64, _ string) error { return p.SetMatrix(matrix(a)) },
		OpFMiterLimit:  func(p *plot.Plotter, a []float64, _ string) error { return p.MiterLimit(a[0]) },
	}
	for f, i := range map[byte]byte{
		OpFArc: OpArc, OpFArcRel: OpArcRel, OpFBezier2: OpBezier2, OpFBezier2Rel: OpBezier2Rel,
		OpFBezier3: OpBezier3, OpFBezier3Rel: OpBezier3Rel, OpFBox: OpBox, OpFBoxRel: OpBoxRel,
		OpFCircle: OpCircle, OpFCircleRel: OpCircleRel, OpFCont: OpCont, OpFContRel: OpContRel,
		OpFEllArc: OpEllArc, OpFEllArcRel: OpEllArcRel, OpFEllipse: OpEllipse, OpFEllipseRel: OpEllipseRel,
		OpFFontSize: OpFontSize, OpFLine: OpLine, OpFLineDash: OpLineDash, OpFLineRel: OpLineRel,
		OpFLineWidth: OpLineWidth, OpFMarker: OpMarker, OpFMarkerRel: OpMarkerRel, OpFMove: OpMove,
		OpFMoveRel: OpMoveRel, OpFPoint: OpPoint, OpFPointRel: OpPointRel, OpFSpace: OpSpace,
		OpFSpace2: OpSpace2, OpFTextAngle: OpTextAngle,
	} {
		h[f] = h[i]
	}
	return h
}()
