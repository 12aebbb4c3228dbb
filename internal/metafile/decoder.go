package metafile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Decoder reads instructions from a metafile. Unless a format is forced
// with WithFormat, the GNU header selects binary or portable decoding and
// a stream without a header is read as traditional plot(5).
type Decoder struct {
	r      *bufio.Reader
	format Format
	order  binary.ByteOrder
	forced bool
	begun  bool
	// line is the portable line being parsed.
	line string
	pos  int
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithFormat forces the encoding. A GNU header, if present, is still
// skipped.
func WithFormat(f Format) Option {
	return func(d *Decoder) {
		d.format = f
		d.forced = true
	}
}

// WithByteOrder sets the byte order of binary numbers.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(d *Decoder) {
		d.order = order
	}
}

// NewDecoder returns a decoder reading r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:      bufio.NewReader(r),
		format: Traditional,
		order:  binary.LittleEndian,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Format returns the encoding being decoded. It is only settled after the
// first call to Decode.
func (d *Decoder) Format() Format {
	return d.format
}

func (d *Decoder) begin() error {
	d.begun = true
	peek, err := d.r.Peek(len(BinaryHeader))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	s := string(peek)
	if !strings.HasPrefix(s, "#PLOT ") {
		return nil
	}
	if _, err := d.r.ReadString('\n'); err != nil {
		return unexpected(err)
	}
	if d.forced {
		return nil
	}
	switch s {
	case BinaryHeader:
		d.format = Binary
	case PortableHeader:
		d.format = Portable
	default:
		return fmt.Errorf("%w: unknown metafile header %q", ErrMalformed, strings.TrimSpace(s))
	}
	return nil
}

// Decode returns the next instruction, or io.EOF at the end of the input.
// A stream that ends inside an instruction gives io.ErrUnexpectedEOF.
func (d *Decoder) Decode() (Command, error) {
	if !d.begun {
		if err := d.begin(); err != nil {
			return Command{}, err
		}
	}
	if d.format == Portable {
		return d.decodeLine()
	}
	op, err := d.r.ReadByte()
	if err != nil {
		return Command{}, err
	}
	spec, ok := Lookup(op)
	if !ok || (d.format == Traditional && !spec.Traditional) {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownOp, op)
	}
	c := Command{Op: op}
	for _, kind := range []byte(spec.Sig) {
		switch kind {
		case 'i':
			v, err := d.readInt()
			if err != nil {
				return Command{}, err
			}
			c.Args = append(c.Args, v)
		case 'f':
			v, err := d.readReal()
			if err != nil {
				return Command{}, err
			}
			c.Args = append(c.Args, v)
		case 'c':
			b, err := d.r.ReadByte()
			if err != nil {
				return Command{}, unexpected(err)
			}
			c.Args = append(c.Args, float64(b))
		case 's':
			s, err := d.r.ReadString('\n')
			if err != nil {
				return Command{}, unexpected(err)
			}
			c.Text = strings.TrimSuffix(s, "\n")
		case 'I', 'F':
			n, err := d.readInt()
			if err != nil {
				return Command{}, err
			}
			if n < 0 || n > maxDashes {
				return Command{}, fmt.Errorf("%w: %s dash count %g", ErrMalformed, spec.Name, n)
			}
			c.Args = append(c.Args, n)
			for i := 0; i <= int(n); i++ {
				var v float64
				if kind == 'I' {
					v, err = d.readInt()
				} else {
					v, err = d.readReal()
				}
				if err != nil {
					return Command{}, err
				}
				c.Args = append(c.Args, v)
			}
		}
	}
	return c, nil
}

// maxDashes bounds a decoded dash array.
const maxDashes = 1 << 16

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (d *Decoder) readInt() (float64, error) {
	if d.format == Traditional {
		var b [2]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return 0, unexpected(err)
		}
		return float64(int16(d.order.Uint16(b[:]))), nil
	}
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, unexpected(err)
	}
	return float64(int32(d.order.Uint32(b[:]))), nil
}

func (d *Decoder) readReal() (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, unexpected(err)
	}
	return math.Float64frombits(d.order.Uint64(b[:])), nil
}

// decodeLine parses one portable instruction. Blank lines are skipped.
func (d *Decoder) decodeLine() (Command, error) {
	var line string
	for line == "" {
		s, err := d.r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || s == "") {
			return Command{}, err
		}
		line = strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
	}
	op := line[0]
	spec, ok := Lookup(op)
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownOp, op)
	}
	d.line, d.pos = line, 1
	c := Command{Op: op}
	for _, kind := range []byte(spec.Sig) {
		switch kind {
		case 'i', 'f':
			v, err := d.number(spec)
			if err != nil {
				return Command{}, err
			}
			c.Args = append(c.Args, v)
		case 'c':
			tok := d.token()
			if len(tok) != 1 {
				return Command{}, fmt.Errorf("%w: %s expects a character, got %q", ErrMalformed, spec.Name, tok)
			}
			c.Args = append(c.Args, float64(tok[0]))
		case 's':
			if d.pos < len(d.line) && d.line[d.pos] == ' ' {
				d.pos++
			}
			c.Text = d.line[d.pos:]
			d.pos = len(d.line)
		case 'I', 'F':
			n, err := d.number(spec)
			if err != nil {
				return Command{}, err
			}
			if n < 0 || n > maxDashes || n != math.Trunc(n) {
				return Command{}, fmt.Errorf("%w: %s dash count %g", ErrMalformed, spec.Name, n)
			}
			c.Args = append(c.Args, n)
			for i := 0; i <= int(n); i++ {
				v, err := d.number(spec)
				if err != nil {
					return Command{}, err
				}
				c.Args = append(c.Args, v)
			}
		}
	}
	if rest := strings.TrimSpace(d.line[d.pos:]); rest != "" {
		return Command{}, fmt.Errorf("%w: trailing %q after %s", ErrMalformed, rest, spec.Name)
	}
	return c, nil
}

func (d *Decoder) token() string {
	for d.pos < len(d.line) && d.line[d.pos] == ' ' {
		d.pos++
	}
	start := d.pos
	for d.pos < len(d.line) && d.line[d.pos] != ' ' {
		d.pos++
	}
	return d.line[start:d.pos]
}

func (d *Decoder) number(spec Spec) (float64, error) {
	tok := d.token()
	if tok == "" {
		return 0, fmt.Errorf("%w: %s has too few arguments", ErrMalformed, spec.Name)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s argument %q", ErrMalformed, spec.Name, tok)
	}
	return v, nil
}
