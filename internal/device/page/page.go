// Package page places the plotting square on a physical page for the
// page-oriented devices (PostScript, HP-GL, xfig, SVG) and tracks the
// bounding box of what they draw.
package page

import (
	"math"

	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
)

// Layout is a page and the plotting square on it, in device units.
type Layout struct {
	Size config.PageSize
	// Width and Height are the page dimensions.
	Width, Height float64
	// View maps the unit square onto the centered plotting square.
	View geom.Viewport
	// Ignored lists PAGESIZE options that were not applied.
	Ignored []string
}

// New computes the layout for PAGESIZE and ROTATION at the given
// resolution. A nil params uses the defaults.
func New(params *config.Params, unitsPerInch float64) (Layout, error) {
	spec, rotation := config.DefaultPageSize, 0
	if params != nil {
		if params.PageSize != "" {
			spec = params.PageSize
		}
		rotation = params.Rotation
	}
	size, ignored, err := config.LookupPageSize(spec)
	if err != nil {
		return Layout{}, err
	}
	w, h := size.Width*unitsPerInch, size.Height*unitsPerInch
	side := size.Viewport * unitsPerInch
	x0, y0 := (w-side)/2, (h-side)/2
	return Layout{
		Size:    size,
		Width:   w,
		Height:  h,
		View:    geom.Viewport{Bounds: geom.R(x0, y0, x0+side, y0+side), Rotation: rotation},
		Ignored: ignored,
	}, nil
}

// FlipY returns l with the y axis growing downward from the top of the
// page, for formats whose origin is the upper left corner.
func (l Layout) FlipY() Layout {
	b := l.View.Bounds
	l.View.Bounds = geom.R(b.Min.X, l.Height-b.Max.Y, b.Max.X, l.Height-b.Min.Y)
	l.View.FlipY = true
	return l
}

// BBox accumulates the extent of drawn geometry.
type BBox struct {
	r     geom.Rect
	valid bool
}

// Add extends the box to cover p padded by pad on every side.
func (b *BBox) Add(p geom.Point, pad float64) {
	pad = math.Abs(pad)
	lo, hi := geom.Pt(p.X-pad, p.Y-pad), geom.Pt(p.X+pad, p.Y+pad)
	if !b.valid {
		b.r = geom.Rect{Min: lo, Max: hi}
		b.valid = true
		return
	}
	b.r.Min.X = math.Min(b.r.Min.X, lo.X)
	b.r.Min.Y = math.Min(b.r.Min.Y, lo.Y)
	b.r.Max.X = math.Max(b.r.Max.X, hi.X)
	b.r.Max.Y = math.Max(b.r.Max.Y, hi.Y)
}

// AddAll adds every point of pts.
func (b *BBox) AddAll(pts []geom.Point, pad float64) {
	for _, p := range pts {
		b.Add(p, pad)
	}
}

// Rect returns the accumulated box; ok is false when nothing was added.
func (b *BBox) Rect() (r geom.Rect, ok bool) {
	return b.r, b.valid
}

// Reset empties the box.
func (b *BBox) Reset() {
	*b = BBox{}
}
