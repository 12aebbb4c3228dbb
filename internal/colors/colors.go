// Package colors provides the color model shared by the plotter engine and
// its backends: 48-bit RGB values, a color-name database, parsing of color
// specifications, fill-level desaturation and palette quantization.
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGB is a 48-bit color, 16 bits per channel.
type RGB struct {
	R, G, B uint16
}

// Common colors.
var (
	Black = RGB{}
	White = RGB{R: 0xffff, G: 0xffff, B: 0xffff}
)

// FromRGBA widens an 8-bit color.
func FromRGBA(c color.RGBA) RGB {
	return RGB{R: uint16(c.R) * 0x101, G: uint16(c.G) * 0x101, B: uint16(c.B) * 0x101}
}

// RGBA narrows c to an opaque 8-bit color.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c.R >> 8), G: uint8(c.G >> 8), B: uint8(c.B >> 8), A: 0xff}
}

// Floats returns the channels scaled to [0,1].
func (c RGB) Floats() (r, g, b float64) {
	return float64(c.R) / 0xffff, float64(c.G) / 0xffff, float64(c.B) / 0xffff
}

// Hex returns c as "#rrggbb".
func (c RGB) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// Named maps color names to their values. Lookups are case-insensitive and
// ignore embedded spaces, so "Light Blue" finds "lightblue".
var Named = map[string]color.RGBA{
	"black":   {R: 0, G: 0, B: 0, A: 255},
	"white":   {R: 255, G: 255, B: 255, A: 255},
	"red":     {R: 255, G: 0, B: 0, A: 255},
	"green":   {R: 0, G: 255, B: 0, A: 255},
	"blue":    {R: 0, G: 0, B: 255, A: 255},
	"yellow":  {R: 255, G: 255, B: 0, A: 255},
	"cyan":    {R: 0, G: 255, B: 255, A: 255},
	"magenta": {R: 255, G: 0, B: 255, A: 255},

	"gray":          {R: 190, G: 190, B: 190, A: 255},
	"grey":          {R: 190, G: 190, B: 190, A: 255},
	"silver":        {R: 192, G: 192, B: 192, A: 255},
	"maroon":        {R: 176, G: 48, B: 96, A: 255},
	"olive":         {R: 128, G: 128, B: 0, A: 255},
	"lime":          {R: 0, G: 255, B: 0, A: 255},
	"aqua":          {R: 0, G: 255, B: 255, A: 255},
	"teal":          {R: 0, G: 128, B: 128, A: 255},
	"navy":          {R: 0, G: 0, B: 128, A: 255},
	"navyblue":      {R: 0, G: 0, B: 128, A: 255},
	"purple":        {R: 160, G: 32, B: 240, A: 255},
	"orange":        {R: 255, G: 165, B: 0, A: 255},
	"pink":          {R: 255, G: 192, B: 203, A: 255},
	"brown":         {R: 165, G: 42, B: 42, A: 255},
	"coral":         {R: 255, G: 127, B: 80, A: 255},
	"gold":          {R: 255, G: 215, B: 0, A: 255},
	"indigo":        {R: 75, G: 0, B: 130, A: 255},
	"violet":        {R: 238, G: 130, B: 238, A: 255},
	"turquoise":     {R: 64, G: 224, B: 208, A: 255},
	"salmon":        {R: 250, G: 128, B: 114, A: 255},
	"khaki":         {R: 240, G: 230, B: 140, A: 255},
	"lavender":      {R: 230, G: 230, B: 250, A: 255},
	"beige":         {R: 245, G: 245, B: 220, A: 255},
	"ivory":         {R: 255, G: 255, B: 240, A: 255},
	"chocolate":     {R: 210, G: 105, B: 30, A: 255},
	"crimson":       {R: 220, G: 20, B: 60, A: 255},
	"tan":           {R: 210, G: 180, B: 140, A: 255},
	"orchid":        {R: 218, G: 112, B: 214, A: 255},
	"plum":          {R: 221, G: 160, B: 221, A: 255},
	"sienna":        {R: 160, G: 82, B: 45, A: 255},
	"firebrick":     {R: 178, G: 34, B: 34, A: 255},
	"forestgreen":   {R: 34, G: 139, B: 34, A: 255},
	"seagreen":      {R: 46, G: 139, B: 87, A: 255},
	"skyblue":       {R: 135, G: 206, B: 235, A: 255},
	"steelblue":     {R: 70, G: 130, B: 180, A: 255},
	"royalblue":     {R: 65, G: 105, B: 225, A: 255},
	"slategray":     {R: 112, G: 128, B: 144, A: 255},
	"darkblue":      {R: 0, G: 0, B: 139, A: 255},
	"darkgreen":     {R: 0, G: 100, B: 0, A: 255},
	"darkred":       {R: 139, G: 0, B: 0, A: 255},
	"darkorange":    {R: 255, G: 140, B: 0, A: 255},
	"darkcyan":      {R: 0, G: 139, B: 139, A: 255},
	"darkmagenta":   {R: 139, G: 0, B: 139, A: 255},
	"lightblue":     {R: 173, G: 216, B: 230, A: 255},
	"lightgreen":    {R: 144, G: 238, B: 144, A: 255},
	"lightgray":     {R: 211, G: 211, B: 211, A: 255},
	"lightgrey":     {R: 211, G: 211, B: 211, A: 255},
	"lightyellow":   {R: 255, G: 255, B: 224, A: 255},
	"darkgray":      {R: 169, G: 169, B: 169, A: 255},
	"darkgrey":      {R: 169, G: 169, B: 169, A: 255},
	"dimgray":       {R: 105, G: 105, B: 105, A: 255},
	"dimgrey":       {R: 105, G: 105, B: 105, A: 255},
	"goldenrod":     {R: 218, G: 165, B: 32, A: 255},
	"midnightblue":  {R: 25, G: 25, B: 112, A: 255},
}

// Lookup returns the named color, also resolving "grayNN"/"greyNN" levels
// with NN in 0..100.
func Lookup(name string) (RGB, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	if c, ok := Named[key]; ok {
		return FromRGBA(c), true
	}
	for _, prefix := range []string{"gray", "grey"} {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		n, err := strconv.Atoi(key[len(prefix):])
		if err != nil || n < 0 || n > 100 {
			return RGB{}, false
		}
		v := uint16((n*0xffff + 50) / 100)
		return RGB{R: v, G: v, B: v}, true
	}
	return RGB{}, false
}

// Parse parses a color specification. Supported formats:
//   - names known to Lookup: "red", "light blue", "gray40"
//   - "#rgb", "#rrggbb" and the 48-bit "#rrrrggggbbbb"
//   - "rgb(r, g, b)" with 8-bit components
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, fmt.Errorf("empty color string")
	}
	if c, ok := Lookup(s); ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(strings.ToLower(s), "rgb(") {
		return parseRGBFunc(s)
	}
	return RGB{}, fmt.Errorf("unrecognized color %q", s)
}

// MustParse parses a color specification and panics on failure. Use it only
// for known-good literals.
func MustParse(s string) RGB {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(s string) (RGB, error) {
	var width int
	switch len(s) {
	case 3:
		width = 1
	case 6:
		width = 2
	case 12:
		width = 4
	default:
		return RGB{}, fmt.Errorf("invalid hex color length: %d", len(s))
	}
	var ch [3]uint16
	for i := range ch {
		v, err := strconv.ParseUint(s[i*width:(i+1)*width], 16, 16)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid hex component %q: %w", s[i*width:(i+1)*width], err)
		}
		switch width {
		case 1:
			ch[i] = uint16(v) * 0x1111
		case 2:
			ch[i] = uint16(v) * 0x101
		default:
			ch[i] = uint16(v)
		}
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func parseRGBFunc(s string) (RGB, error) {
	if !strings.HasSuffix(s, ")") {
		return RGB{}, fmt.Errorf("invalid rgb() format: %q", s)
	}
	parts := strings.Split(s[4:len(s)-1], ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("rgb() requires exactly 3 values, got %d", len(parts))
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid rgb() component %q: %w", p, err)
		}
		ch[i] = uint8(v)
	}
	return FromRGBA(color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}), nil
}
