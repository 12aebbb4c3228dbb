package plot

import (
	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
)

// call is one hook invocation seen by a fake device.
type call struct {
	kind  string
	pts   []geom.Point
	rings int
	color colors.RGB
	page  int
}

// fakeDevice implements only the required hooks and records every call.
type fakeDevice struct {
	info  DeviceInfo
	calls []call
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{info: DeviceInfo{
		Name:      "fake",
		View:      geom.Viewport{Bounds: geom.R(0, 0, 100, 100)},
		LineWidth: 0.01,
		Font:      "HersheySerif",
		FontSize:  0.05,
	}}
}

func (d *fakeDevice) Info() DeviceInfo { return d.info }

func (d *fakeDevice) BeginPage(page int, s *State) error {
	d.calls = append(d.calls, call{kind: "begin", page: page})
	return nil
}

func (d *fakeDevice) EndPage(page int) error {
	d.calls = append(d.calls, call{kind: "end", page: page})
	return nil
}

func (d *fakeDevice) Erase(s *State) error {
	d.calls = append(d.calls, call{kind: "erase", color: s.BgColor})
	return nil
}

func (d *fakeDevice) EmitSegment(s *State, p0, p1 geom.Point) error {
	d.calls = append(d.calls, call{kind: "segment", pts: []geom.Point{p0, p1}, color: s.PenColor})
	return nil
}

func (d *fakeDevice) FillRegion(s *State, rings [][]geom.Point, rule FillRule) error {
	var pts []geom.Point
	if len(rings) > 0 {
		pts = append(pts, rings[0]...)
	}
	d.calls = append(d.calls, call{kind: "fill", pts: pts, rings: len(rings), color: s.EffectiveFillColor()})
	return nil
}

func (d *fakeDevice) SetPenColor(s *State) error {
	d.calls = append(d.calls, call{kind: "pencolor", color: s.PenColor})
	return nil
}

func (d *fakeDevice) SetFillColor(s *State) error {
	d.calls = append(d.calls, call{kind: "fillcolor", color: s.EffectiveFillColor()})
	return nil
}

func (d *fakeDevice) count(kind string) int {
	n := 0
	for _, c := range d.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (d *fakeDevice) kinds() []string {
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.kind
	}
	return out
}

// pathDevice renders every path natively and keeps a copy.
type pathDevice struct {
	fakeDevice
	paths []Path
}

func newPathDevice() *pathDevice {
	return &pathDevice{fakeDevice: *newFakeDevice()}
}

func (d *pathDevice) RenderPath(s *State, p *Path) (bool, error) {
	d.paths = append(d.paths, Path{Points: append([]geom.Point(nil), p.Points...), Closed: p.Closed})
	return true, nil
}

// hookDevice counts state push/pop notifications and records commands.
type hookDevice struct {
	fakeDevice
	saves, restores int
	commands        []Command
	saveErr         error
}

func (d *hookDevice) SaveState(top *State) error {
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saves++
	return nil
}

func (d *hookDevice) RestoreState(top *State) error {
	d.restores++
	return nil
}

func (d *hookDevice) Record(s *State, c Command) error {
	d.commands = append(d.commands, c)
	return nil
}

// ellipseDevice draws ellipses natively only under axis-preserving maps.
type ellipseDevice struct {
	fakeDevice
	ellipses [][3]float64
}

func (d *ellipseDevice) RenderEllipse(s *State, c geom.Point, rx, ry, angle float64) (bool, error) {
	if !s.Transform.AxesPreserved {
		return false, nil
	}
	d.ellipses = append(d.ellipses, [3]float64{rx, ry, angle})
	return true, nil
}

// labelDevice renders labels natively.
type labelDevice struct {
	fakeDevice
	labels []string
}

func (d *labelDevice) RenderLabel(s *State, h HAlign, v VAlign, text string) (bool, error) {
	d.labels = append(d.labels, string(rune(h))+string(rune(v))+text)
	return true, nil
}

// noFillDevice reports that it cannot fill.
type noFillDevice struct {
	fakeDevice
}

func (d *noFillDevice) Capability(op Op) (Cap, bool) {
	if op == OpFillType {
		return CapNone, true
	}
	return 0, false
}
