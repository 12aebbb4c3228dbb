package plot

import (
	"reflect"
	"sync"
)

// Op enumerates the public operations of a Plotter.
type Op int

// Operations. Relative variants (MoveRel, BoxRel, ...) share the code of
// their absolute form.
const (
	OpOpen Op = iota
	OpClose
	OpErase
	OpFlush
	OpBgColor
	OpSpace
	OpSpace2
	OpSetMatrix
	OpConcat
	OpMove
	OpCont
	OpEndPath
	OpEndSubpath
	OpClosePath
	OpBox
	OpCircle
	OpEllipse
	OpArc
	OpEllArc
	OpBezier2
	OpBezier3
	OpPoint
	OpMarker
	OpLabel
	OpLabelWidth
	OpPenColor
	OpFillColor
	OpFillType
	OpFillMod
	OpLineMod
	OpLineDash
	OpLineWidth
	OpJoinMod
	OpCapMod
	OpMiterLimit
	OpPenType
	OpOrientation
	OpFontName
	OpFontSize
	OpTextAngle
	OpSaveState
	OpRestoreState
	OpFinish

	numOps
)

var opNames = [numOps]string{
	OpOpen:         "openpl",
	OpClose:        "closepl",
	OpErase:        "erase",
	OpFlush:        "flushpl",
	OpBgColor:      "bgcolor",
	OpSpace:        "space",
	OpSpace2:       "space2",
	OpSetMatrix:    "setmatrix",
	OpConcat:       "concat",
	OpMove:         "move",
	OpCont:         "cont",
	OpEndPath:      "endpath",
	OpEndSubpath:   "endsubpath",
	OpClosePath:    "closepath",
	OpBox:          "box",
	OpCircle:       "circle",
	OpEllipse:      "ellipse",
	OpArc:          "arc",
	OpEllArc:       "ellarc",
	OpBezier2:      "bezier2",
	OpBezier3:      "bezier3",
	OpPoint:        "point",
	OpMarker:       "marker",
	OpLabel:        "alabel",
	OpLabelWidth:   "labelwidth",
	OpPenColor:     "pencolor",
	OpFillColor:    "fillcolor",
	OpFillType:     "filltype",
	OpFillMod:      "fillmod",
	OpLineMod:      "linemod",
	OpLineDash:     "linedash",
	OpLineWidth:    "linewidth",
	OpJoinMod:      "joinmod",
	OpCapMod:       "capmod",
	OpMiterLimit:   "miterlimit",
	OpPenType:      "pentype",
	OpOrientation:  "orientation",
	OpFontName:     "fontname",
	OpFontSize:     "fontsize",
	OpTextAngle:    "textangle",
	OpSaveState:    "savestate",
	OpRestoreState: "restorestate",
	OpFinish:       "finish",
}

// String returns the libplot name of the operation.
func (o Op) String() string {
	if o < 0 || o >= numOps {
		return "unknown"
	}
	return opNames[o]
}

// OpByName returns the operation with the given libplot name.
func OpByName(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return Op(op), true
		}
	}
	return 0, false
}

// Cap tells how a device implements an operation.
type Cap int

const (
	// CapNone means the operation is accepted but has no visible effect.
	CapNone Cap = iota
	// CapGeneric means the engine approximates it with primitive hooks.
	CapGeneric
	// CapNative means the device renders it with its own primitive.
	CapNative
)

// String implements fmt.Stringer.
func (c Cap) String() string {
	switch c {
	case CapNone:
		return "none"
	case CapGeneric:
		return "generic"
	case CapNative:
		return "native"
	default:
		return "unknown"
	}
}

// capTable binds every operation of one backend type to a capability.
type capTable struct {
	caps [numOps]Cap
}

var capTables sync.Map // reflect.Type -> *capTable

// tableFor returns the cached table for the dynamic type of b, building it
// on first use.
func tableFor(b Backend) *capTable {
	typ := reflect.TypeOf(b)
	if t, ok := capTables.Load(typ); ok {
		return t.(*capTable)
	}
	t := buildTable(b)
	actual, _ := capTables.LoadOrStore(typ, t)
	return actual.(*capTable)
}

func buildTable(b Backend) *capTable {
	t := &capTable{}
	for op := Op(0); op < numOps; op++ {
		t.caps[op] = CapGeneric
	}
	native := func(ok bool, ops ...Op) {
		if !ok {
			return
		}
		for _, op := range ops {
			t.caps[op] = CapNative
		}
	}

	// lifecycle and state operations are always handled by the device
	// itself, through the required Device methods
	native(true, OpOpen, OpClose, OpErase)

	_, ok := b.(PathRenderer)
	native(ok, OpEndPath, OpEndSubpath, OpClosePath, OpCont, OpBezier2, OpBezier3)
	_, ok = b.(ArcRenderer)
	native(ok, OpArc)
	_, ok = b.(EllArcRenderer)
	native(ok, OpEllArc)
	_, ok = b.(EllipseRenderer)
	native(ok, OpEllipse)
	_, ok = b.(CircleRenderer)
	native(ok, OpCircle)
	_, ok = b.(BoxRenderer)
	native(ok, OpBox)
	_, ok = b.(LabelRenderer)
	native(ok, OpLabel)
	_, ok = b.(PointRenderer)
	native(ok, OpPoint)
	_, ok = b.(MarkerRenderer)
	native(ok, OpMarker)
	_, ok = b.(StateHook)
	native(ok, OpSaveState, OpRestoreState)
	_, ok = b.(Flusher)
	native(ok, OpFlush)
	_, ok = b.(Finisher)
	native(ok, OpFinish)

	if r, ok := b.(CapReporter); ok {
		for op := Op(0); op < numOps; op++ {
			if c, ok := r.Capability(op); ok {
				t.caps[op] = c
			}
		}
	}
	return t
}

// overrides holds the optional interfaces one backend instance satisfies.
type overrides struct {
	path     PathRenderer
	arc      ArcRenderer
	ellArc   EllArcRenderer
	ellipse  EllipseRenderer
	circle   CircleRenderer
	box      BoxRenderer
	label    LabelRenderer
	point    PointRenderer
	marker   MarkerRenderer
	state    StateHook
	recorder Recorder
	flusher  Flusher
	finisher Finisher
}

func resolve(b Backend) overrides {
	var o overrides
	o.path, _ = b.(PathRenderer)
	o.arc, _ = b.(ArcRenderer)
	o.ellArc, _ = b.(EllArcRenderer)
	o.ellipse, _ = b.(EllipseRenderer)
	o.circle, _ = b.(CircleRenderer)
	o.box, _ = b.(BoxRenderer)
	o.label, _ = b.(LabelRenderer)
	o.point, _ = b.(PointRenderer)
	o.marker, _ = b.(MarkerRenderer)
	o.state, _ = b.(StateHook)
	o.recorder, _ = b.(Recorder)
	o.flusher, _ = b.(Flusher)
	o.finisher, _ = b.(Finisher)
	return o
}
