package config

import (
	"fmt"
	"strings"
)

// PageSize is a physical page type. Dimensions are in inches.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
	// Viewport is the side of the square plotting area centered on the page.
	Viewport float64
}

// PointsPerInch converts inches to PostScript points.
const PointsPerInch = 72.0

var pageSizes = []PageSize{
	{Name: "letter", Width: 8.5, Height: 11, Viewport: 8},
	{Name: "legal", Width: 8.5, Height: 14, Viewport: 8},
	{Name: "ledger", Width: 17, Height: 11, Viewport: 10},
	{Name: "tabloid", Width: 11, Height: 17, Viewport: 10},
	{Name: "a4", Width: 8.27, Height: 11.69, Viewport: 7.8},
	{Name: "a3", Width: 11.69, Height: 16.54, Viewport: 10.7},
	{Name: "b5", Width: 6.93, Height: 9.84, Viewport: 6.4},
}

// PageSizes returns the known page types.
func PageSizes() []PageSize {
	return append([]PageSize(nil), pageSizes...)
}

// LookupPageSize parses a PAGESIZE value. Options after the first comma
// (xoffset=, yoffset=, xorigin=, ...) are not supported; they are returned
// so the caller can warn about them.
func LookupPageSize(spec string) (PageSize, []string, error) {
	fields := strings.Split(spec, ",")
	name := strings.ToLower(strings.TrimSpace(fields[0]))
	if name == "" {
		name = DefaultPageSize
	}
	var ignored []string
	for _, f := range fields[1:] {
		if f = strings.TrimSpace(f); f != "" {
			ignored = append(ignored, f)
		}
	}
	for _, ps := range pageSizes {
		if ps.Name == name {
			return ps, ignored, nil
		}
	}
	return PageSize{}, ignored, fmt.Errorf("unknown page size %q", name)
}

// Points returns the page dimensions in PostScript points.
func (ps PageSize) Points() (width, height float64) {
	return ps.Width * PointsPerInch, ps.Height * PointsPerInch
}

// ViewportPoints returns the plotting square as (x0, y0, side) in points,
// with the origin at the lower left of the page.
func (ps PageSize) ViewportPoints() (x0, y0, side float64) {
	w, h := ps.Points()
	side = ps.Viewport * PointsPerInch
	return (w - side) / 2, (h - side) / 2, side
}
