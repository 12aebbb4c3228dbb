// Package meta implements the metafile output device. It records the
// operation stream in user coordinates, so every drawing operation is
// rendered natively by writing the corresponding metafile instruction.
package meta

import (
	"io"

	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/internal/metafile"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Device writes a GNU metafile.
type Device struct {
	enc *metafile.Encoder
}

// New returns a device writing to w. META_PORTABLE selects the ASCII
// encoding.
func New(w io.Writer, params *config.Params) *Device {
	f := metafile.Binary
	if params != nil && params.MetaPortable {
		f = metafile.Portable
	}
	return &Device{enc: metafile.NewEncoder(w, f)}
}

// NewEncoder returns a device writing through an existing encoder.
func NewEncoder(enc *metafile.Encoder) *Device {
	return &Device{enc: enc}
}

// Info implements plot.Device. The unit square maps to itself; the
// geometry is never converted to device units.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:      "meta",
		View:      geom.Viewport{Bounds: geom.R(0, 0, 1, 1)},
		LineWidth: 1.0 / 850,
		Font:      "HersheySerif",
		FontSize:  1.0 / 50,
	}
}

func (d *Device) put(op byte, text string, args ...float64) error {
	return d.enc.Encode(metafile.Command{Op: op, Args: args, Text: text})
}

// BeginPage implements plot.Device.
func (d *Device) BeginPage(page int, s *plot.State) error {
	return d.put(metafile.OpOpenPl, "")
}

// EndPage implements plot.Device.
func (d *Device) EndPage(page int) error {
	if err := d.put(metafile.OpClosePl, ""); err != nil {
		return err
	}
	return d.enc.Flush()
}

// Erase is recorded through Record.
func (d *Device) Erase(s *plot.State) error { return nil }

// The primitive hooks are never reached: every drawing operation has a
// native override below.

func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error { return nil }

func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	return nil
}

func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath writes the vertices as fmove, fcont... followed by endpath.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	for i, pt := range p.Points {
		op := byte(metafile.OpFCont)
		if i == 0 {
			op = metafile.OpFMove
		}
		if err := d.put(op, "", pt.X, pt.Y); err != nil {
			return true, err
		}
	}
	return true, d.put(metafile.OpEndPath, "")
}

func (d *Device) RenderArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	return true, d.put(metafile.OpFArc, "", c.X, c.Y, p0.X, p0.Y, p1.X, p1.Y)
}

func (d *Device) RenderEllArc(s *plot.State, c, p0, p1 geom.Point) (bool, error) {
	return true, d.put(metafile.OpFEllArc, "", c.X, c.Y, p0.X, p0.Y, p1.X, p1.Y)
}

func (d *Device) RenderEllipse(s *plot.State, c geom.Point, rx, ry, angle float64) (bool, error) {
	return true, d.put(metafile.OpFEllipse, "", c.X, c.Y, rx, ry, angle)
}

func (d *Device) RenderCircle(s *plot.State, c geom.Point, r float64) (bool, error) {
	return true, d.put(metafile.OpFCircle, "", c.X, c.Y, r)
}

func (d *Device) RenderBox(s *plot.State, p0, p1 geom.Point) (bool, error) {
	return true, d.put(metafile.OpFBox, "", p0.X, p0.Y, p1.X, p1.Y)
}

func (d *Device) RenderPoint(s *plot.State, p geom.Point) (bool, error) {
	return true, d.put(metafile.OpFPoint, "", p.X, p.Y)
}

func (d *Device) RenderMarker(s *plot.State, p geom.Point, typ int, size float64) (bool, error) {
	return true, d.put(metafile.OpFMarker, "", p.X, p.Y, float64(typ), size)
}

// RenderLabel positions the cursor first, since the metafile has no label
// origin of its own.
func (d *Device) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	if err := d.put(metafile.OpFMove, "", s.Pos.X, s.Pos.Y); err != nil {
		return true, err
	}
	return true, d.put(metafile.OpAlabel, text, float64(h), float64(v))
}

// recorded maps engine operations to the instruction that replays them.
var recorded = map[plot.Op]byte{
	plot.OpSpace:        metafile.OpFSpace,
	plot.OpSpace2:       metafile.OpFSpace2,
	plot.OpSetMatrix:    metafile.OpFSetMatrix,
	plot.OpConcat:       metafile.OpFConcat,
	plot.OpBgColor:      metafile.OpBgColor,
	plot.OpErase:        metafile.OpErase,
	plot.OpSaveState:    metafile.OpSaveState,
	plot.OpRestoreState: metafile.OpRestoreState,
	plot.OpPenColor:     metafile.OpPenColor,
	plot.OpFillColor:    metafile.OpFillColor,
	plot.OpFillType:     metafile.OpFillType,
	plot.OpFillMod:      metafile.OpFillMod,
	plot.OpLineMod:      metafile.OpLineMod,
	plot.OpLineDash:     metafile.OpFLineDash,
	plot.OpLineWidth:    metafile.OpFLineWidth,
	plot.OpJoinMod:      metafile.OpJoinMod,
	plot.OpCapMod:       metafile.OpCapMod,
	plot.OpMiterLimit:   metafile.OpFMiterLimit,
	plot.OpPenType:      metafile.OpPenType,
	plot.OpOrientation:  metafile.OpOrientation,
	plot.OpFontName:     metafile.OpFontName,
	plot.OpFontSize:     metafile.OpFFontSize,
	plot.OpTextAngle:    metafile.OpFTextAngle,
}

// Record implements plot.Recorder.
func (d *Device) Record(s *plot.State, c plot.Command) error {
	op, ok := recorded[c.Op]
	if !ok {
		return nil
	}
	args := c.Args
	if c.Op == plot.OpLineDash {
		// the engine passes offset first; the wire order is count,
		// lengths, offset
		n := len(args) - 1
		args = append(append([]float64{float64(n)}, args[1:]...), args[0])
	}
	return d.put(op, c.Text, args...)
}

// Flush implements plot.Flusher.
func (d *Device) Flush() error {
	return d.enc.Flush()
}

// Finish implements plot.Finisher.
func (d *Device) Finish() error {
	return d.enc.Flush()
}
