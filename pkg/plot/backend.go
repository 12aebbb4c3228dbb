package plot

import (
	"github.com/opd-ai/go-plotutils/internal/geom"
)

// DeviceInfo describes a device to the engine. It is read once, when the
// Plotter is created.
type DeviceInfo struct {
	// Name identifies the device type in log output, e.g. "ps".
	Name string
	// View places the unit square of the default user space on the device.
	// View.Bounds is also the clip window for generic segments.
	View geom.Viewport
	// LineWidth is the default line width as a fraction of the unit square.
	LineWidth float64
	// Font is the default font name.
	Font string
	// FontSize is the default font size as a fraction of the unit square.
	FontSize float64
	// MaxUnfilledPath is the vertex count at which an unfilled path is
	// flushed and restarted. Zero means unlimited.
	MaxUnfilledPath int
	// ClipSegments tells the generic renderer to clip every emitted segment
	// against View.Bounds, for devices that cannot address points outside
	// their range.
	ClipSegments bool
}

// Device is the lifecycle part of the backend contract.
type Device interface {
	// Info returns the device description.
	Info() DeviceInfo
	// BeginPage starts page number page (counting from 1). s is the
	// freshly created bottom state.
	BeginPage(page int, s *State) error
	// EndPage finishes the current page.
	EndPage(page int) error
	// Erase clears the page to s.BgColor.
	Erase(s *State) error
}

// SegmentEmitter draws one straight line segment in device coordinates with
// the pen of s. A zero-length segment draws a dot.
type SegmentEmitter interface {
	EmitSegment(s *State, p0, p1 geom.Point) error
}

// RegionFiller fills a region bounded by one or more closed rings, in device
// coordinates, with the fill color last set through SetFillColor.
type RegionFiller interface {
	FillRegion(s *State, rings [][]geom.Point, rule FillRule) error
}

// PenColorSetter makes s.PenColor the device's current stroke color.
// Devices should remember the last color and skip redundant output.
type PenColorSetter interface {
	SetPenColor(s *State) error
}

// FillColorSetter makes the effective fill color of s (s.FillColor at
// s.FillLevel) the device's current fill color.
type FillColorSetter interface {
	SetFillColor(s *State) error
}

// Backend is the minimal set every device must implement. Everything else
// has a generic implementation built on these hooks.
type Backend interface {
	Device
	SegmentEmitter
	RegionFiller
	PenColorSetter
	FillColorSetter
}

// The optional overrides below receive user-space geometry together with
// the current state, whose Transform maps it to the device. Each returns
// handled=false to decline, in which case the generic implementation runs.

// PathRenderer renders a finished path natively.
type PathRenderer interface {
	RenderPath(s *State, p *Path) (handled bool, err error)
}

// ArcRenderer renders a counterclockwise circular arc natively.
type ArcRenderer interface {
	RenderArc(s *State, c, p0, p1 geom.Point) (handled bool, err error)
}

// EllArcRenderer renders a quarter ellipse given by conjugate radii.
type EllArcRenderer interface {
	RenderEllArc(s *State, c, p0, p1 geom.Point) (handled bool, err error)
}

// EllipseRenderer renders a full ellipse; angle is in degrees.
type EllipseRenderer interface {
	RenderEllipse(s *State, c geom.Point, rx, ry, angle float64) (handled bool, err error)
}

// CircleRenderer renders a full circle.
type CircleRenderer interface {
	RenderCircle(s *State, c geom.Point, r float64) (handled bool, err error)
}

// BoxRenderer renders an axis-aligned user-space rectangle.
type BoxRenderer interface {
	RenderBox(s *State, p0, p1 geom.Point) (handled bool, err error)
}

// LabelRenderer renders a text string at s.Pos with the given justification.
type LabelRenderer interface {
	RenderLabel(s *State, h HAlign, v VAlign, text string) (handled bool, err error)
}

// PointRenderer renders a single point.
type PointRenderer interface {
	RenderPoint(s *State, p geom.Point) (handled bool, err error)
}

// MarkerRenderer renders a marker symbol; size is in user units.
type MarkerRenderer interface {
	RenderMarker(s *State, p geom.Point, typ int, size float64) (handled bool, err error)
}

// StateHook is notified after a state is pushed and after one is popped.
// top is the new top of the stack in both cases.
type StateHook interface {
	SaveState(top *State) error
	RestoreState(top *State) error
}

// Recorder is implemented by devices that log the operation stream, such as
// the metafile writer. It is called after every non-drawing operation
// (space, attributes, state push/pop, erase) has been applied.
type Recorder interface {
	Record(s *State, c Command) error
}

// Command is a recorded non-drawing operation.
type Command struct {
	Op   Op
	Args []float64
	Text string
}

// Flusher is implemented by devices that buffer output.
type Flusher interface {
	Flush() error
}

// Finisher is implemented by devices that write a trailer once all pages
// are done.
type Finisher interface {
	Finish() error
}

// CapReporter lets a device refine what Capability reports, e.g. CapNone
// for filling on a device that cannot fill. The answer must depend only on
// the device type.
type CapReporter interface {
	Capability(op Op) (Cap, bool)
}
