// Package config provides the plotter parameters of go-plotutils.
// It defines the parameter set read by the output devices and the sources
// it can be loaded from: defaults, environment variables, parameter files
// (Lua, TOML, YAML or legacy "KEY value" lines) and explicit settings.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Params holds the plotter parameters understood by the output devices.
// Names follow the libplot parameter names (PAGESIZE, BG_COLOR, ...). An
// empty string field means "use the device default".
type Params struct {
	// PageSize is the page type for page-based devices, e.g. "letter" or
	// "a4". Suffix options such as ",xoffset=1in" are accepted and ignored.
	PageSize string `toml:"pagesize" yaml:"pagesize"`
	// BgColor is the background color used by Erase.
	BgColor string `toml:"bg_color" yaml:"bg_color"`
	// BitmapSize is the raster and window size as "WxH" pixels.
	BitmapSize string `toml:"bitmapsize" yaml:"bitmapsize"`
	// MetaPortable selects the ASCII metafile encoding.
	MetaPortable bool `toml:"meta_portable" yaml:"meta_portable"`
	// HPGLVersion is "1", "1.5" or "2".
	HPGLVersion string `toml:"hpgl_version" yaml:"hpgl_version"`
	// HPGLPens lists the plotter pens as "1=black:2=red:...".
	HPGLPens string `toml:"hpgl_pens" yaml:"hpgl_pens"`
	// HPGLAssignPens lets an HP-GL/2 device redefine pen colors.
	HPGLAssignPens bool `toml:"hpgl_assign_pens" yaml:"hpgl_assign_pens"`
	// Rotation rotates the plot on the page by 0, 90, 180 or 270 degrees.
	Rotation int `toml:"rotation" yaml:"rotation"`
	// MaxLineLength is the vertex count at which unfilled paths are split.
	MaxLineLength int `toml:"max_line_length" yaml:"max_line_length"`
	// Term is the terminal type; "kermit" enables Tektronix color escapes.
	Term string `toml:"term" yaml:"term"`
	// XDrawableWindow is the id of an existing X window to draw into.
	XDrawableWindow uint32 `toml:"xdrawable_window" yaml:"xdrawable_window"`
	// Display is the X display name.
	Display string `toml:"display" yaml:"display"`
	// Interlace requests interlaced raster output where the format has it.
	Interlace bool `toml:"interlace" yaml:"interlace"`
	// TransparentColor is a color made transparent in raster output.
	TransparentColor string `toml:"transparent_color" yaml:"transparent_color"`
	// EmulateColor maps colors to gray levels on monochrome devices.
	EmulateColor bool `toml:"emulate_color" yaml:"emulate_color"`
}

// Bitmap returns the parsed BitmapSize.
func (p *Params) Bitmap() (width, height int, err error) {
	return ParseBitmapSize(p.BitmapSize)
}

// ParseBitmapSize parses a "WxH" size. A single number gives a square.
func ParseBitmapSize(s string) (width, height int, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, 0, fmt.Errorf("empty bitmap size")
	}
	ws, hs, found := strings.Cut(s, "x")
	if !found {
		hs = ws
	}
	width, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bitmap width %q: %w", ws, err)
	}
	height, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bitmap height %q: %w", hs, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("bitmap size %dx%d must be positive", width, height)
	}
	return width, height, nil
}

// Kermit reports whether the terminal is a kermit Tektronix emulator.
func (p *Params) Kermit() bool {
	return strings.HasPrefix(strings.ToLower(p.Term), "kermit")
}

// Format identifies the syntax of a parameter file.
type Format int

const (
	// FormatLegacy is one "KEY value" pair per line.
	FormatLegacy Format = iota
	// FormatLua is a Lua chunk assigning the plot.params table.
	FormatLua
	// FormatTOML is a TOML document with lowercase parameter keys.
	FormatTOML
	// FormatYAML is a YAML mapping with lowercase parameter keys.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatLua:
		return "lua"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "", "params":
		return FormatLegacy, nil
	case "lua":
		return FormatLua, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatLegacy, fmt.Errorf("unknown format: %s (expected legacy, lua, toml or yaml)", s)
	}
}
