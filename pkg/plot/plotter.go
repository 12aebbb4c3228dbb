package plot

import (
	"fmt"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
)

// Plotter is one rendering session on one device. It owns the drawing
// state stack and routes every operation either to the device's native
// override or to the generic implementation built on the device's
// primitive hooks.
//
// A Plotter is not safe for concurrent use; independent Plotters share
// nothing and may be used from different goroutines.
type Plotter struct {
	dev  Backend
	caps *capTable
	ovr  overrides
	info DeviceInfo
	log  Logger

	open  bool
	page  int
	state *State
	depth int

	warned map[string]bool
}

// Option configures a Plotter.
type Option func(*Plotter)

// WithLogger sets the logger for warnings. The default discards them.
func WithLogger(l Logger) Option {
	return func(p *Plotter) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a closed Plotter drawing on dev.
func New(dev Backend, opts ...Option) *Plotter {
	p := &Plotter{
		dev:    dev,
		caps:   tableFor(dev),
		ovr:    resolve(dev),
		info:   dev.Info(),
		log:    NopLogger(),
		warned: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Info returns the device description.
func (p *Plotter) Info() DeviceInfo {
	return p.info
}

// Capability reports how the device implements op.
func (p *Plotter) Capability(op Op) Cap {
	if op < 0 || op >= numOps {
		return CapNone
	}
	return p.caps.caps[op]
}

// IsOpen reports whether the plotter is open.
func (p *Plotter) IsOpen() bool {
	return p.open
}

// Page returns the number of the current (or last) page.
func (p *Plotter) Page() int {
	return p.page
}

// Depth returns the number of states saved above the bottom state.
func (p *Plotter) Depth() int {
	return p.depth
}

// State returns a snapshot of the current drawing state.
func (p *Plotter) State() (State, error) {
	if !p.open {
		return State{}, opErr(OpSaveState, ErrInvalidOperation)
	}
	return p.state.Snapshot(), nil
}

// Position returns the graphics cursor in user coordinates.
func (p *Plotter) Position() (geom.Point, error) {
	if !p.open {
		return geom.Point{}, opErr(OpMove, ErrInvalidOperation)
	}
	return p.state.Pos, nil
}

// warnOnce logs msg the first time it is seen.
func (p *Plotter) warnOnce(msg string, args ...any) {
	if p.warned[msg] {
		return
	}
	p.warned[msg] = true
	p.log.Warn(msg, append([]any{"device", p.info.Name}, args...)...)
}

func (p *Plotter) check(op Op) error {
	if !p.open {
		return opErr(op, ErrInvalidOperation)
	}
	return nil
}

func (p *Plotter) record(op Op, text string, args ...float64) error {
	if p.ovr.recorder == nil {
		return nil
	}
	return opErr(op, p.ovr.recorder.Record(p.state, Command{Op: op, Args: args, Text: text}))
}

// Open starts a page.
func (p *Plotter) Open() error {
	if p.open {
		return opErr(OpOpen, ErrInvalidOperation)
	}
	s := newBottomState(p.info)
	p.page++
	if err := p.dev.BeginPage(p.page, s); err != nil {
		p.page--
		return opErr(OpOpen, err)
	}
	p.state = s
	p.depth = 0
	p.open = true
	p.log.Debug("page opened", "device", p.info.Name, "page", p.page)
	return nil
}

// Close finishes the page. Every saved state is popped first, as if by
// RestoreState, and the bottom state is discarded.
func (p *Plotter) Close() error {
	if err := p.check(OpClose); err != nil {
		return err
	}
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	keep(p.endPath())
	for p.state.prev != nil {
		keep(p.pop())
	}
	keep(p.endPath())
	p.state = nil
	p.depth = 0
	p.open = false
	keep(p.dev.EndPage(p.page))
	p.log.Debug("page closed", "device", p.info.Name, "page", p.page)
	return opErr(OpClose, first)
}

// Erase clears the page to the background color.
func (p *Plotter) Erase() error {
	if err := p.check(OpErase); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	if err := p.dev.Erase(p.state); err != nil {
		return opErr(OpErase, err)
	}
	return p.record(OpErase, "")
}

// Flush ends the path in progress and flushes buffered device output.
func (p *Plotter) Flush() error {
	if err := p.check(OpFlush); err != nil {
		return err
	}
	if err := p.endPath(); err != nil {
		return err
	}
	if p.ovr.flusher != nil {
		return opErr(OpFlush, p.ovr.flusher.Flush())
	}
	return nil
}

// Finish ends the session: it closes the page if one is open and lets the
// device write its trailer. The Plotter must not be reopened afterwards.
func (p *Plotter) Finish() error {
	if p.open {
		if err := p.Close(); err != nil {
			return err
		}
	}
	if p.ovr.finisher != nil {
		return opErr(OpFinish, p.ovr.finisher.Finish())
	}
	return nil
}

// SaveState pushes a copy of the current state. The path in progress stays
// with the saved state and resumes after RestoreState.
func (p *Plotter) SaveState() error {
	if err := p.check(OpSaveState); err != nil {
		return err
	}
	top := p.state.clone()
	top.prev = p.state
	p.state = top
	p.depth++
	if p.ovr.state != nil {
		if err := p.ovr.state.SaveState(top); err != nil {
			p.state = top.prev
			top.prev = nil
			p.depth--
			return opErr(OpSaveState, err)
		}
	}
	return p.record(OpSaveState, "")
}

// RestoreState ends the path in progress and pops the current state. The
// bottom state cannot be popped.
func (p *Plotter) RestoreState() error {
	if err := p.check(OpRestoreState); err != nil {
		return err
	}
	if p.state.prev == nil {
		return opErr(OpRestoreState, ErrInvalidOperation)
	}
	if err := p.pop(); err != nil {
		return err
	}
	return p.record(OpRestoreState, "")
}

func (p *Plotter) pop() error {
	err := p.endPath()
	old := p.state
	p.state = old.prev
	old.prev = nil
	p.depth--
	if p.ovr.state != nil {
		if herr := p.ovr.state.RestoreState(p.state); herr != nil && err == nil {
			err = opErr(OpRestoreState, herr)
		}
	}
	return err
}

// Space sets the user window to the rectangle (x0,y0)-(x1,y1).
func (p *Plotter) Space(x0, y0, x1, y1 float64) error {
	if err := p.setWindow(OpSpace, geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x0, y1)); err != nil {
		return err
	}
	return p.record(OpSpace, "", x0, y0, x1, y1)
}

// Space2 sets the user window to the parallelogram with origin (x0,y0),
// x-axis corner (x1,y1) and y-axis corner (x2,y2).
func (p *Plotter) Space2(x0, y0, x1, y1, x2, y2 float64) error {
	if err := p.setWindow(OpSpace2, geom.Pt(x0, y0), geom.Pt(x1, y1), geom.Pt(x2, y2)); err != nil {
		return err
	}
	return p.record(OpSpace2, "", x0, y0, x1, y1, x2, y2)
}

func (p *Plotter) setWindow(op Op, p0, p1, p2 geom.Point) error {
	if err := p.check(op); err != nil {
		return err
	}
	t, err := geom.Window(p.state.Transform.View, p0, p1, p2)
	if err != nil {
		return opErr(op, ErrSingularTransform)
	}
	if err := p.endPath(); err != nil {
		return err
	}
	p.setTransform(t)
	return nil
}

func (p *Plotter) setTransform(t geom.Transform) {
	p.state.Transform = t
	p.state.resetDefaults(p.info)
}

// SetMatrix replaces the map from user coordinates to the unit square.
func (p *Plotter) SetMatrix(m geom.Matrix) error {
	if err := p.check(OpSetMatrix); err != nil {
		return err
	}
	t, err := p.state.Transform.WithUser(m)
	if err != nil {
		return opErr(OpSetMatrix, ErrSingularTransform)
	}
	if err := p.endPath(); err != nil {
		return err
	}
	p.setTransform(t)
	return p.record(OpSetMatrix, "", m.XX, m.YX, m.XY, m.YY, m.X0, m.Y0)
}

// Concat applies m to user coordinates before the current map.
func (p *Plotter) Concat(m geom.Matrix) error {
	if err := p.check(OpConcat); err != nil {
		return err
	}
	t, err := p.state.Transform.Concat(m)
	if err != nil {
		return opErr(OpConcat, ErrSingularTransform)
	}
	if err := p.endPath(); err != nil {
		return err
	}
	p.setTransform(t)
	return p.record(OpConcat, "", m.XX, m.YX, m.XY, m.YY, m.X0, m.Y0)
}

// Translate moves the user origin to (tx, ty).
func (p *Plotter) Translate(tx, ty float64) error {
	return p.Concat(geom.TranslateMatrix(tx, ty))
}

// Rotate rotates user coordinates counterclockwise by degrees.
func (p *Plotter) Rotate(degrees float64) error {
	return p.Concat(geom.RotateMatrix(degrees))
}

// Scale scales user coordinates.
func (p *Plotter) Scale(sx, sy float64) error {
	return p.Concat(geom.ScaleMatrix(sx, sy))
}

// BgColor sets the color used by the next Erase.
func (p *Plotter) BgColor(c colors.RGB) error {
	if err := p.check(OpBgColor); err != nil {
		return err
	}
	p.state.BgColor = c
	return p.record(OpBgColor, "", float64(c.R), float64(c.G), float64(c.B))
}

// BgColorName is BgColor with a color name or specification.
func (p *Plotter) BgColorName(name string) error {
	c, err := p.parseColor(OpBgColor, name)
	if err != nil {
		return err
	}
	return p.BgColor(c)
}

func (p *Plotter) parseColor(op Op, name string) (colors.RGB, error) {
	if err := p.check(op); err != nil {
		return colors.RGB{}, err
	}
	c, err := colors.Parse(name)
	if err != nil {
		return colors.RGB{}, &OpError{Op: op.String(), Err: fmt.Errorf("%w: %w", ErrBadParameter, err)}
	}
	return c, nil
}
