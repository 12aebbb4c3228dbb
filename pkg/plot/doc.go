// Package plot is a device-independent vector graphics engine in the style
// of GNU libplot. A Plotter turns a sequence of drawing operations (move,
// cont, arc, label, set-color, save/restore state, ...) into calls on an
// output device.
//
// # Devices
//
// A device implements [Backend]: a lifecycle ([Device]) and four primitive
// hooks that emit a line segment, fill a region and select the pen and fill
// colors. Every other operation has a generic implementation on top of
// those hooks. A device that can do better implements one of the optional
// renderer interfaces ([PathRenderer], [ArcRenderer], [EllipseRenderer],
// [LabelRenderer], ...) and may still decline case by case, for example
// drawing ellipses natively only when the transform preserves axes.
// [Plotter.Capability] reports the resulting binding for each [Op].
//
// # Basic Usage
//
//	p := plot.New(dev, plot.WithLogger(plot.DefaultLogger()))
//	if err := p.Open(); err != nil {
//		log.Fatal(err)
//	}
//	p.Space(0, 0, 100, 100)
//	p.PenColorName("red")
//	p.Move(10, 10)
//	p.Cont(90, 10)
//	p.Cont(50, 90)
//	p.ClosePath()
//	p.Close()
//
// # Drawing State
//
// Attributes live in a stack of [State] values. SaveState pushes a copy,
// RestoreState pops it; the bottom state created by Open cannot be popped.
// A path in progress belongs to the state it was started in and is
// finished whenever an attribute changes or a non-path object is drawn.
//
// # Errors
//
// Operations return an *[OpError] wrapping [ErrInvalidOperation],
// [ErrSingularTransform], [ErrBadParameter] or a device write error. A
// failed operation leaves the state unchanged.
package plot
