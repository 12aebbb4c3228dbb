package colors

import "math"

// Palette is an ordered set of colors a device can render exactly. Devices
// with a fixed palette map every requested color to its nearest entry.
type Palette []RGB

// Nearest returns the index of the palette entry closest to c in RGB space.
// Ties go to the lower index. An empty palette returns -1.
func (p Palette) Nearest(c RGB) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, e := range p {
		dr := float64(c.R) - float64(e.R)
		dg := float64(c.G) - float64(e.G)
		db := float64(c.B) - float64(e.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// NearestExcluding is Nearest restricted to indices not in skip, used by
// devices that reserve a slot (e.g. the white background pen).
func (p Palette) NearestExcluding(c RGB, skip ...int) int {
	best := -1
	bestDist := math.MaxFloat64
outer:
	for i, e := range p {
		for _, s := range skip {
			if s == i {
				continue outer
			}
		}
		dr := float64(c.R) - float64(e.R)
		dg := float64(c.G) - float64(e.G)
		db := float64(c.B) - float64(e.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Index returns the position of an exact match, or -1.
func (p Palette) Index(c RGB) int {
	for i, e := range p {
		if e == c {
			return i
		}
	}
	return -1
}

func hex24(v uint32) RGB {
	r, g, b := uint16(v>>16&0xff), uint16(v>>8&0xff), uint16(v&0xff)
	return RGB{R: r * 0x101, G: g * 0x101, B: b * 0x101}
}

// HPGLPens is the default pen carousel of an HP-GL plotter. Pen 0 is the
// paper color.
var HPGLPens = Palette{
	hex24(0xffffff), // 0 white
	hex24(0x000000), // 1 black
	hex24(0xff0000), // 2 red
	hex24(0x00ff00), // 3 green
	hex24(0xffff00), // 4 yellow
	hex24(0x0000ff), // 5 blue
	hex24(0xff00ff), // 6 magenta
	hex24(0x00ffff), // 7 cyan
}

// FigStandard is the table of xfig's 32 predefined colors, indexed by
// xfig color number.
var FigStandard = Palette{
	hex24(0x000000), hex24(0x0000ff), hex24(0x00ff00), hex24(0x00ffff),
	hex24(0xff0000), hex24(0xff00ff), hex24(0xffff00), hex24(0xffffff),
	hex24(0x000090), hex24(0x0000b0), hex24(0x0000d0), hex24(0x87ceff),
	hex24(0x009000), hex24(0x00b000), hex24(0x00d000),
	hex24(0x009090), hex24(0x00b0b0), hex24(0x00d0d0),
	hex24(0x900000), hex24(0xb00000), hex24(0xd00000),
	hex24(0x900090), hex24(0xb000b0), hex24(0xd000d0),
	hex24(0x803000), hex24(0xa04000), hex24(0xc06000),
	hex24(0xff8080), hex24(0xffa0a0), hex24(0xffc0c0), hex24(0xffe0e0),
	hex24(0xffd700),
}

// ANSI16 is the color table of an ANSI terminal, in SGR order. Tektronix
// emulators such as kermit's honor the first eight as foreground colors.
var ANSI16 = Palette{
	hex24(0x000000), hex24(0xaa0000), hex24(0x00aa00), hex24(0xaa5500),
	hex24(0x0000aa), hex24(0xaa00aa), hex24(0x00aaaa), hex24(0xaaaaaa),
	hex24(0x555555), hex24(0xff5555), hex24(0x55ff55), hex24(0xffff55),
	hex24(0x5555ff), hex24(0xff55ff), hex24(0x55ffff), hex24(0xffffff),
}

// Desaturate applies a fill level to a color. Level 1 leaves c unchanged,
// 0xffff yields white and intermediate levels interpolate linearly. Level 0
// means "unfilled" and also returns c.
func Desaturate(c RGB, level int) RGB {
	if level <= 1 {
		return c
	}
	if level > 0xffff {
		level = 0xffff
	}
	f := float64(level-1) / 0xfffe
	mix := func(v uint16) uint16 {
		return uint16(math.Round(float64(v) + f*float64(0xffff-int(v))))
	}
	return RGB{R: mix(c.R), G: mix(c.G), B: mix(c.B)}
}

// Luminance returns the perceived brightness of c in [0,1].
func Luminance(c RGB) float64 {
	r, g, b := c.Floats()
	return 0.299*r + 0.587*g + 0.114*b
}

// Gray returns c converted to a gray of the same luminance.
func Gray(c RGB) RGB {
	v := uint16(math.Round(Luminance(c) * 0xffff))
	return RGB{R: v, G: v, B: v}
}

// Lerp interpolates between a and b; t is clamped to [0,1].
func Lerp(a, b RGB, t float64) RGB {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint16) uint16 {
		return uint16(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
