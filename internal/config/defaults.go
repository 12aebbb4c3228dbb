package config

// Default values for plotter parameters.
const (
	// DefaultPageSize is the page type used when PAGESIZE is unset.
	DefaultPageSize = "letter"
	// DefaultBgColor is the background color used by Erase.
	DefaultBgColor = "white"
	// DefaultBitmapSize is the raster and window size.
	DefaultBitmapSize = "570x570"
	// DefaultHPGLVersion is the HP-GL dialect.
	DefaultHPGLVersion = "2"
	// DefaultHPGLPens is the pen carousel of a stock HP plotter.
	DefaultHPGLPens = "1=black:2=red:3=green:4=yellow:5=blue:6=magenta:7=cyan"
	// DefaultMaxLineLength is the vertex count at which unfilled paths are
	// split, as in libplot.
	DefaultMaxLineLength = 500
)

// DefaultParams returns Params with the libplot defaults.
func DefaultParams() Params {
	return Params{
		PageSize:      DefaultPageSize,
		BgColor:       DefaultBgColor,
		BitmapSize:    DefaultBitmapSize,
		HPGLVersion:   DefaultHPGLVersion,
		HPGLPens:      DefaultHPGLPens,
		MaxLineLength: DefaultMaxLineLength,
	}
}
