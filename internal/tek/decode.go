package tek

import (
	"bufio"
	"errors"
	"io"
)

// Kind identifies a decoded Event.
type Kind int

const (
	Move Kind = iota
	Draw
	Point
	Text
	Erase
	SetLineType
	SetCharSize
	SetColor
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Draw:
		return "draw"
	case Point:
		return "point"
	case Text:
		return "text"
	case Erase:
		return "erase"
	case SetLineType:
		return "linetype"
	case SetCharSize:
		return "charsize"
	case SetColor:
		return "color"
	default:
		return "unknown"
	}
}

// Event is one drawing action recovered from a stream. X and Y are the
// beam position after the action; for Text they are where the string
// starts.
type Event struct {
	Kind  Kind
	X, Y  int
	Text  string
	Line  LineType
	Size  CharSize
	Color int
}

// Decoder recovers Events from a Tek 4014 stream. Bytes it does not
// understand are skipped, as a terminal would.
type Decoder struct {
	r    *bufio.Reader
	mode Mode
	dark bool

	hiX, hiY, loX, loY, extra int
	sawLoY                    bool

	x, y    int
	size    CharSize
	pending []Event
	text    []byte
	textX   int
	textY   int
}

// NewDecoder returns a decoder reading r. The terminal starts in alpha
// mode at the top left of the screen.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), y: Height - CharHeight[0]}
}

// Next returns the next event, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (Event, error) {
	for len(d.pending) == 0 {
		b, err := d.r.ReadByte()
		if errors.Is(err, io.EOF) {
			d.flushText()
			if len(d.pending) > 0 {
				break
			}
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, err
		}
		if err := d.step(b); err != nil {
			return Event{}, err
		}
	}
	ev := d.pending[0]
	d.pending = d.pending[1:]
	return ev, nil
}

func (d *Decoder) emit(ev Event) {
	d.pending = append(d.pending, ev)
}

func (d *Decoder) flushText() {
	if len(d.text) == 0 {
		return
	}
	d.emit(Event{Kind: Text, X: d.textX, Y: d.textY, Text: string(d.text), Size: d.size})
	d.text = d.text[:0]
}

func (d *Decoder) setMode(m Mode) {
	d.flushText()
	d.mode = m
	d.sawLoY = false
}

func (d *Decoder) step(b byte) error {
	switch b {
	case GS:
		d.setMode(ModeGraph)
		d.dark = true
		return nil
	case FS:
		d.setMode(ModePoint)
		return nil
	case US:
		d.setMode(ModeAlpha)
		return nil
	case RS:
		// Incremental plot mode is not supported; treat like alpha.
		d.setMode(ModeAlpha)
		return nil
	case ESC:
		return d.escape()
	case CR:
		if d.mode != ModeAlpha {
			d.setMode(ModeAlpha)
		}
		d.flushText()
		d.x = 0
		return nil
	case LF:
		d.flushText()
		d.y -= CharHeight[d.size]
		if d.y < 0 {
			d.y = Height - CharHeight[d.size]
		}
		return nil
	case BS:
		d.flushText()
		d.x -= CharWidth[d.size]
		if d.x < 0 {
			d.x = 0
		}
		return nil
	}
	if b < 0x20 || b > 0x7f {
		return nil
	}
	if d.mode == ModeAlpha {
		if b == 0x7f {
			return nil
		}
		if len(d.text) == 0 {
			d.textX, d.textY = d.x, d.y
		}
		d.text = append(d.text, b)
		d.x += CharWidth[d.size]
		return nil
	}
	d.addressByte(b)
	return nil
}

func (d *Decoder) addressByte(b byte) {
	v := int(b & 0x1f)
	switch b & 0x60 {
	case 0x20:
		if d.sawLoY {
			d.hiX = v
		} else {
			d.hiY = v
		}
	case 0x60:
		if d.sawLoY {
			d.extra = d.loY
		}
		d.loY = v
		d.sawLoY = true
	case 0x40:
		d.loX = v
		d.sawLoY = false
		d.x = d.hiX<<7 | d.loX<<2 | d.extra&3
		d.y = d.hiY<<7 | d.loY<<2 | d.extra>>2&3
		switch {
		case d.mode == ModePoint:
			d.emit(Event{Kind: Point, X: d.x, Y: d.y})
		case d.dark:
			d.dark = false
			d.emit(Event{Kind: Move, X: d.x, Y: d.y})
		default:
			d.emit(Event{Kind: Draw, X: d.x, Y: d.y})
		}
	}
}

func (d *Decoder) escape() error {
	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	switch {
	case b == FF:
		d.setMode(ModeAlpha)
		d.x, d.y = 0, Height-CharHeight[d.size]
		d.emit(Event{Kind: Erase})
	case b >= '8' && b <= ';':
		d.flushText()
		d.size = CharSize(b - '8')
		d.emit(Event{Kind: SetCharSize, Size: d.size})
	case b >= '`' && b <= 'w':
		// The defocused and write-through variants repeat the five
		// line types in groups of eight.
		t := (b - '`') & 7
		if t > 4 {
			t = 0
		}
		d.flushText()
		d.emit(Event{Kind: SetLineType, Line: LineType('`' + t)})
	case b == '[':
		return d.csi()
	}
	return nil
}

// csi reads an ANSI control sequence and reports foreground colors.
func (d *Decoder) csi() error {
	var params []int
	n, have := 0, false
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch {
		case b >= '0' && b <= '9':
			n = n*10 + int(b-'0')
			have = true
			continue
		case b == ';':
			params = append(params, n)
			n, have = 0, false
			continue
		}
		if have {
			params = append(params, n)
		}
		if b != 'm' {
			return nil
		}
		color, bright := -1, 0
		for _, p := range params {
			switch {
			case p == 0:
				color, bright = 7, 0
			case p == 1:
				bright = 8
			case p >= 30 && p <= 37:
				color = p - 30
			case p == 39:
				color = 7
			}
		}
		if color >= 0 {
			d.flushText()
			d.emit(Event{Kind: SetColor, Color: color + bright})
		}
		return nil
	}
}
