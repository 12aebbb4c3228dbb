// Package tek reads and writes Tektronix 4014 graphics streams: 12-bit
// vector addresses in graph and point plot modes, alpha-mode text, line
// types, character sizes and the ANSI color escapes understood by kermit.
package tek

import (
	"bufio"
	"fmt"
	"io"
)

// Screen size in 12-bit addresses.
const (
	Width  = 4096
	Height = 3120
)

// Control characters.
const (
	BEL = 0x07
	BS  = 0x08
	LF  = 0x0a
	FF  = 0x0c
	CR  = 0x0d
	ESC = 0x1b
	FS  = 0x1c // point plot mode
	GS  = 0x1d // graph mode
	RS  = 0x1e // incremental plot mode
	US  = 0x1f // alpha mode
)

// LineType is a hardware line style, selected with ESC and the type byte.
type LineType byte

const (
	Solid       LineType = '`'
	Dotted      LineType = 'a'
	DotDashed   LineType = 'b'
	ShortDashed LineType = 'c'
	LongDashed  LineType = 'd'
)

// CharSize is a hardware character size, selected with ESC 8 through ESC ;.
type CharSize int

// Character cell sizes in addresses, largest first.
var (
	CharWidth  = [4]int{56, 51, 34, 31}
	CharHeight = [4]int{88, 82, 53, 48}
)

// Mode is the terminal mode.
type Mode int

const (
	ModeAlpha Mode = iota
	ModeGraph
	ModePoint
)

// Encoder writes a Tek 4014 stream. Every address is sent in full, with
// the extra byte carrying the two low bits of each coordinate.
type Encoder struct {
	w     *bufio.Writer
	mode  Mode
	x, y  int
	known bool
	line  LineType
	size  CharSize
	color int
}

// NewEncoder returns an encoder writing to w. The terminal is assumed to
// be in alpha mode with solid lines.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), line: Solid, color: -1}
}

// Mode returns the current terminal mode.
func (e *Encoder) Mode() Mode {
	return e.mode
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Encoder) address(x, y int) {
	x, y = clamp(x, Width-1), clamp(y, Height-1)
	e.w.Write([]byte{
		0x20 | byte(y>>7&0x1f),
		0x60 | byte((y&3)<<2|x&3),
		0x60 | byte(y>>2&0x1f),
		0x20 | byte(x>>7&0x1f),
		0x40 | byte(x>>2&0x1f),
	})
	e.x, e.y, e.known = x, y, true
}

// Move positions the beam without drawing.
func (e *Encoder) Move(x, y int) {
	e.w.WriteByte(GS)
	e.mode = ModeGraph
	e.address(x, y)
}

// Draw draws a vector from the current position. A Move is sent first
// when the terminal is not in graph mode.
func (e *Encoder) Draw(x, y int) {
	if e.mode != ModeGraph {
		e.Move(e.x, e.y)
	}
	e.address(x, y)
}

// Segment draws a vector from (x0,y0) to (x1,y1), skipping the dark move
// when the beam is already there.
func (e *Encoder) Segment(x0, y0, x1, y1 int) {
	if e.mode != ModeGraph || !e.known || e.x != x0 || e.y != y0 {
		e.Move(x0, y0)
	}
	e.address(x1, y1)
}

// Point plots a single point.
func (e *Encoder) Point(x, y int) {
	if e.mode != ModePoint {
		e.w.WriteByte(FS)
		e.mode = ModePoint
	}
	e.address(x, y)
}

// SetLineType selects a line style if it differs from the current one.
func (e *Encoder) SetLineType(t LineType) {
	if t == e.line {
		return
	}
	e.w.Write([]byte{ESC, byte(t)})
	e.line = t
}

// SetCharSize selects a character size.
func (e *Encoder) SetCharSize(n CharSize) {
	if n == e.size {
		return
	}
	e.w.Write([]byte{ESC, byte('8' + n)})
	e.size = n
}

// SetColor sends ANSI foreground color n as kermit expects. Colors 8 to
// 15 are the bold variants of 0 to 7.
func (e *Encoder) SetColor(n int) {
	if n == e.color || n < 0 || n > 15 {
		return
	}
	bold := 0
	if n >= 8 {
		bold = 1
	}
	fmt.Fprintf(e.w, "\x1b[%d;%dm", bold, 30+n&7)
	e.color = n
}

// Text writes s in alpha mode starting at (x, y), the lower left of the
// first character cell.
func (e *Encoder) Text(x, y int, s string) {
	e.Move(x, y)
	e.Alpha()
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 0x20 && c < 0x7f {
			e.w.WriteByte(c)
		}
	}
	e.known = false
}

// Alpha returns the terminal to alpha mode.
func (e *Encoder) Alpha() {
	if e.mode != ModeAlpha {
		e.w.WriteByte(US)
		e.mode = ModeAlpha
	}
}

// Erase clears the screen, which also returns it to alpha mode.
func (e *Encoder) Erase() {
	e.w.Write([]byte{ESC, FF})
	e.mode = ModeAlpha
	e.known = false
}

// Flush writes buffered output.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}
