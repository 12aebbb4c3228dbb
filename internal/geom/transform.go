package geom

import (
	"errors"
	"math"
)

// ErrSingular is returned when a user window has zero area, i.e. the
// vectors spanning it are parallel or one of them has zero length.
var ErrSingular = errors.New("singular transform")

// fuzz is the relative tolerance used when classifying a matrix. It is
// multiplied by the magnitude of the operands being compared.
const fuzz = 1e-7

// Margins shrinks a viewport on each side by a fraction of its extent.
type Margins struct {
	Left, Right, Bottom, Top float64
}

// Viewport describes where the unit square lands on the device.
type Viewport struct {
	// Bounds is the full device range.
	Bounds Rect
	// Squeeze is the plotting box inside Bounds.
	Squeeze Margins
	// FlipX and FlipY reverse the device axes, e.g. raster devices whose
	// y axis grows downward.
	FlipX, FlipY bool
	// Rotation turns the page counterclockwise; one of 0, 90, 180, 270.
	Rotation int
}

// Area returns the squeezed plotting rectangle in device coordinates.
func (v Viewport) Area() Rect {
	w, h := v.Bounds.Dx(), v.Bounds.Dy()
	return Rect{
		Min: Point{X: v.Bounds.Min.X + v.Squeeze.Left*w, Y: v.Bounds.Min.Y + v.Squeeze.Bottom*h},
		Max: Point{X: v.Bounds.Max.X - v.Squeeze.Right*w, Y: v.Bounds.Max.Y - v.Squeeze.Top*h},
	}
}

// Corner returns the device position of a corner of the unit square,
// taking flips and rotation into account.
func (v Viewport) Corner(u, w float64) Point {
	return v.ndcToDevice().Apply(Point{X: u, Y: w})
}

// ndcToDevice maps the unit square onto Area.
func (v Viewport) ndcToDevice() Matrix {
	rot := TranslateMatrix(-0.5, -0.5).
		Then(RotateMatrix(float64(v.Rotation))).
		Then(TranslateMatrix(0.5, 0.5))

	a := v.Area()
	sx, x0 := a.Dx(), a.Min.X
	if v.FlipX {
		sx, x0 = -sx, a.Max.X
	}
	sy, y0 := a.Dy(), a.Min.Y
	if v.FlipY {
		sy, y0 = -sy, a.Max.Y
	}
	return rot.Then(Matrix{XX: sx, YY: sy, X0: x0, Y0: y0})
}

// Transform is the composed map from user coordinates to device
// coordinates. It is a value: every mutator returns a new Transform whose
// derived flags are already recomputed.
type Transform struct {
	// User maps user coordinates onto the unit square.
	User Matrix
	// Device maps the unit square onto the device viewport.
	Device Matrix
	// M is User followed by Device.
	M Matrix

	View Viewport

	// AxesPreserved is set when M neither rotates nor shears the axes, so
	// backends may use native axis-aligned rectangles and ellipses.
	AxesPreserved bool
	// Uniform is set when M scales both axes equally without shear, so
	// text can be rendered without distortion.
	Uniform bool
	// NonReflection is set when M preserves orientation.
	NonReflection bool
}

// NewTransform returns a transform whose user space is the unit square.
func NewTransform(view Viewport) Transform {
	return Transform{User: Identity(), View: view}.derive()
}

// Window builds the transform for a user-space parallelogram given by its
// origin p0, the corner p1 that maps to the right end of the x axis and the
// corner p2 that maps to the top of the y axis.
func Window(view Viewport, p0, p1, p2 Point) (Transform, error) {
	ex := p1.Sub(p0)
	ey := p2.Sub(p0)
	cross := ex.Cross(ey)
	if cross == 0 || math.IsNaN(cross) || math.IsInf(cross, 0) ||
		math.Abs(cross) <= fuzz*fuzz*ex.Len()*ey.Len() {
		return Transform{}, ErrSingular
	}
	toUser := Matrix{XX: ex.X, XY: ey.X, YX: ex.Y, YY: ey.Y, X0: p0.X, Y0: p0.Y}
	user, ok := toUser.Invert()
	if !ok {
		return Transform{}, ErrSingular
	}
	return Transform{User: user, View: view}.derive(), nil
}

// WithUser returns t with its user map replaced.
func (t Transform) WithUser(user Matrix) (Transform, error) {
	if _, ok := user.Invert(); !ok {
		return t, ErrSingular
	}
	t.User = user
	return t.derive(), nil
}

// Concat returns t with m applied before the current user map.
func (t Transform) Concat(m Matrix) (Transform, error) {
	return t.WithUser(m.Then(t.User))
}

// WithView returns t retargeted to a different viewport.
func (t Transform) WithView(view Viewport) Transform {
	t.View = view
	return t.derive()
}

func (t Transform) derive() Transform {
	t.Device = t.View.ndcToDevice()
	t.M = t.User.Then(t.Device)
	m := t.M

	scale := m.maxAbs()
	t.AxesPreserved = math.Abs(m.XY) < fuzz*scale && math.Abs(m.YX) < fuzz*scale

	r0 := m.XX*m.XX + m.XY*m.XY
	r1 := m.YX*m.YX + m.YY*m.YY
	dot := m.XX*m.YX + m.XY*m.YY
	big := math.Max(r0, r1)
	t.Uniform = math.Abs(r0-r1) < fuzz*big && math.Abs(dot) < fuzz*big

	t.NonReflection = m.Det() >= 0
	return t
}

// ToDevice maps a user point to device coordinates.
func (t Transform) ToDevice(p Point) Point {
	return t.M.Apply(p)
}

// ToDeviceDistance maps a user vector to a device vector.
func (t Transform) ToDeviceDistance(v Point) Point {
	return t.M.ApplyDistance(v)
}

// ToUser maps a device point back to user coordinates.
func (t Transform) ToUser(p Point) Point {
	inv, ok := t.M.Invert()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// DeviceBounds returns the full device range.
func (t Transform) DeviceBounds() Rect {
	return t.View.Bounds
}

// UserNorm returns the norm of the user-to-unit-square map, the factor used
// to derive default line widths and font sizes.
func (t Transform) UserNorm() float64 {
	return t.User.Norm()
}

// DeviceLength converts a user-space length to device units using the
// geometric mean of the stretch factors of M.
func (t Transform) DeviceLength(l float64) float64 {
	return l * math.Sqrt(math.Abs(t.M.Det()))
}

// Angle returns the device-space direction, in degrees, of a user-space
// direction given in degrees.
func (t Transform) Angle(degrees float64) float64 {
	s, c := sincosDeg(degrees)
	v := t.M.ApplyDistance(Point{X: c, Y: s})
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}
