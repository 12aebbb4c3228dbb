// Package raster implements the bitmap devices: PNG, GIF, BMP, TIFF and
// PNM. Shapes are scan converted with x/image/vector and thresholded
// rather than antialiased, so images use only the colors drawn.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	PNM  Format = "pnm"
)

// Formats lists the supported formats.
var Formats = []Format{PNG, GIF, BMP, TIFF, PNM}

// Device draws into an in-memory image and encodes it when the first page
// ends. GIF output also gets one animation frame per erase.
type Device struct {
	w      io.Writer
	format Format
	width  int
	height int
	bg     *colors.RGB
	trans  *colors.RGB
	maxLen int
	gray   bool

	img    *image.RGBA
	rast   vector.Rasterizer
	page   int
	drawn  bool
	frames []*image.RGBA
}

// New returns a device encoding format to w. BITMAPSIZE sets the image
// size, BG_COLOR the initial background and TRANSPARENT_COLOR a color
// written as transparent where the format allows. EMULATE_COLOR draws every
// color as its gray level.
func New(w io.Writer, format Format, params *config.Params) (*Device, error) {
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	switch format {
	case PNG, GIF, BMP, TIFF, PNM:
	default:
		return nil, fmt.Errorf("unknown raster format %q", format)
	}
	d := &Device{w: w, format: format, maxLen: params.MaxLineLength, gray: params.EmulateColor}

	size := params.BitmapSize
	if size == "" {
		size = config.DefaultBitmapSize
	}
	var err error
	if d.width, d.height, err = config.ParseBitmapSize(size); err != nil {
		return nil, fmt.Errorf("BITMAPSIZE: %w", err)
	}
	if params.BgColor != "" {
		c, err := colors.Parse(params.BgColor)
		if err != nil {
			return nil, fmt.Errorf("BG_COLOR: %w", err)
		}
		d.bg = &c
	}
	if params.TransparentColor != "" {
		c, err := colors.Parse(params.TransparentColor)
		if err != nil {
			return nil, fmt.Errorf("TRANSPARENT_COLOR: %w", err)
		}
		if d.gray {
			c = colors.Gray(c)
		}
		d.trans = &c
	}
	return d, nil
}

func (d *Device) rgba(c colors.RGB) color.RGBA {
	if d.gray {
		c = colors.Gray(c)
	}
	return c.RGBA()
}

// Info implements plot.Device. The unit square fills the whole bitmap.
func (d *Device) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name: string(d.format),
		View: geom.Viewport{
			Bounds: geom.R(0, 0, float64(d.width), float64(d.height)),
			FlipY:  true,
		},
		LineWidth:       0,
		Font:            "HersheySerif",
		FontSize:        1.0 / 50,
		MaxUnfilledPath: d.maxLen,
	}
}

// Image returns the image being drawn.
func (d *Device) Image() *image.RGBA {
	return d.img
}

// BeginPage implements plot.Device.
func (d *Device) BeginPage(n int, s *plot.State) error {
	d.page = n
	if d.bg != nil {
		s.BgColor = *d.bg
	}
	if n == 1 {
		d.img = image.NewRGBA(image.Rect(0, 0, d.width, d.height))
		d.frames = nil
		d.drawn = false
	}
	return d.clear(s.BgColor)
}

// EndPage encodes the image after the first page.
func (d *Device) EndPage(n int) error {
	if n != 1 {
		return nil
	}
	if d.format == GIF {
		d.frames = append(d.frames, d.snapshot())
	}
	return d.encode()
}

func (d *Device) snapshot() *image.RGBA {
	c := image.NewRGBA(d.img.Bounds())
	copy(c.Pix, d.img.Pix)
	return c
}

func (d *Device) clear(c colors.RGB) error {
	if d.page != 1 {
		return nil
	}
	rgba := d.rgba(c)
	for i := 0; i < len(d.img.Pix); i += 4 {
		d.img.Pix[i], d.img.Pix[i+1], d.img.Pix[i+2], d.img.Pix[i+3] = rgba.R, rgba.G, rgba.B, 0xff
	}
	return nil
}

// Erase repaints the background. In a GIF the previous picture becomes an
// animation frame.
func (d *Device) Erase(s *plot.State) error {
	if d.page == 1 && d.format == GIF && d.drawn {
		d.frames = append(d.frames, d.snapshot())
	}
	d.drawn = false
	return d.clear(s.BgColor)
}

// paint fills the union of counterclockwise polys, or any polys whose
// orientation encodes a fill rule, with c. Pixels at least half covered
// are set.
func (d *Device) paint(polys [][]geom.Point, c colors.RGB) {
	if d.page != 1 || len(polys) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, p := range poly {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY))).Intersect(d.img.Bounds())
	if box.Empty() {
		return
	}
	d.rast.Reset(box.Dx(), box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		d.rast.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, p := range poly[1:] {
			d.rast.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		d.rast.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	d.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	rgba := d.rgba(c)
	for y := 0; y < box.Dy(); y++ {
		for x := 0; x < box.Dx(); x++ {
			if mask.AlphaAt(x, y).A >= 0x80 {
				d.img.SetRGBA(box.Min.X+x, box.Min.Y+y, rgba)
			}
		}
	}
	d.drawn = true
}

// EmitSegment strokes one segment; a zero-length one paints a dot.
func (d *Device) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	d.paint(penOf(s).outline([]geom.Point{p0, p1}, false), s.PenColor)
	return nil
}

// FillRegion fills rings with the effective fill color of s.
func (d *Device) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	// the rasterizer's accumulation is the nonzero rule
	polys := rings
	if rule == plot.EvenOdd {
		polys = evenOdd(rings)
	}
	d.paint(polys, s.EffectiveFillColor())
	return nil
}

// Colors are applied per primitive.
func (d *Device) SetPenColor(s *plot.State) error  { return nil }
func (d *Device) SetFillColor(s *plot.State) error { return nil }

// RenderPath strokes a whole path so its corners get the requested joins.
// Dashed and disconnected paths go through the engine.
func (d *Device) RenderPath(s *plot.State, p *plot.Path) (bool, error) {
	if s.LineMode == plot.LineDisconnected {
		return false, nil
	}
	if dash, _ := s.DashPattern(); dash != nil {
		return false, nil
	}
	pts := p.DevicePoints(s.Transform)
	if s.Filled() && len(pts) >= 3 {
		if err := d.FillRegion(s, [][]geom.Point{pts}, s.FillRule); err != nil {
			return true, err
		}
	}
	if s.Stroked() {
		d.paint(penOf(s).outline(pts, p.Closed), s.PenColor)
	}
	return true, nil
}

// RenderPoint sets a single pixel.
func (d *Device) RenderPoint(s *plot.State, p geom.Point) (bool, error) {
	if d.page != 1 || !s.Stroked() {
		return true, nil
	}
	dp := s.Transform.ToDevice(p)
	x, y := int(math.Floor(dp.X)), int(math.Floor(dp.Y))
	if image.Pt(x, y).In(d.img.Bounds()) {
		d.img.SetRGBA(x, y, d.rgba(s.PenColor))
		d.drawn = true
	}
	return true, nil
}
