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

// Format is a metafile encoding.
type Format int

const (
	// Binary is the GNU binary encoding: int32 integers and float64 reals,
	// little-endian unless configured otherwise.
	Binary Format = iota
	// Portable is the GNU ASCII encoding, one instruction per line.
	Portable
	// Traditional is the Unix plot(5) encoding with 16-bit integers and
	// only the original opcodes.
	Traditional
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case Portable:
		return "portable"
	case Traditional:
		return "traditional"
	default:
		return "unknown"
	}
}

// Header lines of the GNU encodings.
const (
	BinaryHeader   = "#PLOT 1\n"
	PortableHeader = "#PLOT 2\n"
)

var (
	// ErrUnknownOp is returned for an opcode with no Spec.
	ErrUnknownOp = errors.New("unknown opcode")
	// ErrUnsupported is returned when encoding an opcode the format lacks.
	ErrUnsupported = errors.New("opcode not supported by format")
	// ErrMalformed is returned for arguments that do not match the Spec.
	ErrMalformed = errors.New("malformed instruction")
)

// Encoder writes instructions in one format. The GNU header is written
// before the first instruction. Output is buffered; call Flush.
type Encoder struct {
	w      *bufio.Writer
	format Format
	order  ByteOrder
	header bool
	buf    []byte
}

// NewEncoder returns an encoder writing format to w.
func NewEncoder(w io.Writer, format Format) *Encoder {
	return &Encoder{
		w:      bufio.NewWriter(w),
		format: format,
		order:  binary.LittleEndian,
		header: format == Traditional,
	}
}

// ByteOrder is satisfied by binary.LittleEndian and binary.BigEndian.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// SetByteOrder sets the byte order of binary numbers.
func (e *Encoder) SetByteOrder(order ByteOrder) {
	e.order = order
}

// Format returns the encoding.
func (e *Encoder) Format() Format {
	return e.format
}

// Encode writes one instruction.
func (e *Encoder) Encode(c Command) error {
	spec, ok := Lookup(c.Op)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownOp, c.Op)
	}
	if e.format == Traditional && !spec.Traditional {
		return fmt.Errorf("%w: %s in %s", ErrUnsupported, spec.Name, e.format)
	}
	if err := checkArgs(spec, c); err != nil {
		return err
	}
	if !e.header {
		h := BinaryHeader
		if e.format == Portable {
			h = PortableHeader
		}
		if _, err := e.w.WriteString(h); err != nil {
			return err
		}
		e.header = true
	}

	e.buf = append(e.buf[:0], c.Op)
	args := c.Args
	for _, kind := range []byte(spec.Sig) {
		switch kind {
		case 'i':
			if err := e.putInt(args[0]); err != nil {
				return fmt.Errorf("%s: %w", spec.Name, err)
			}
			args = args[1:]
		case 'f':
			e.putReal(args[0])
			args = args[1:]
		case 'c':
			e.putChar(byte(args[0]))
			args = args[1:]
		case 's':
			e.putString(c.Text)
		case 'I', 'F':
			n := int(args[0])
			if err := e.putInt(args[0]); err != nil {
				return fmt.Errorf("%s: %w", spec.Name, err)
			}
			for _, v := range args[1 : n+2] {
				if kind == 'I' {
					if err := e.putInt(v); err != nil {
						return fmt.Errorf("%s: %w", spec.Name, err)
					}
				} else {
					e.putReal(v)
				}
			}
			args = args[n+2:]
		}
	}
	if e.format == Portable {
		e.buf = append(e.buf, '\n')
	}
	_, err := e.w.Write(e.buf)
	return err
}

// Flush writes buffered output.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// checkArgs verifies that c carries the arguments spec asks for.
func checkArgs(spec Spec, c Command) error {
	want := 0
	for _, kind := range []byte(spec.Sig) {
		switch kind {
		case 'i', 'f', 'c':
			want++
		case 'I', 'F':
			if want >= len(c.Args) {
				return fmt.Errorf("%w: %s lacks a dash count", ErrMalformed, spec.Name)
			}
			n := c.Args[want]
			if n < 0 || n != math.Trunc(n) {
				return fmt.Errorf("%w: %s dash count %g", ErrMalformed, spec.Name, n)
			}
			want += int(n) + 2
		}
	}
	if len(c.Args) != want {
		return fmt.Errorf("%w: %s takes %d numeric arguments, got %d", ErrMalformed, spec.Name, want, len(c.Args))
	}
	return nil
}

func (e *Encoder) sep() {
	if e.format == Portable {
		e.buf = append(e.buf, ' ')
	}
}

func (e *Encoder) putInt(v float64) error {
	n := math.Round(v)
	e.sep()
	switch e.format {
	case Portable:
		e.buf = strconv.AppendInt(e.buf, int64(n), 10)
	case Traditional:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return fmt.Errorf("%w: %g does not fit 16 bits", ErrMalformed, v)
		}
		e.buf = e.order.AppendUint16(e.buf, uint16(int16(n)))
	default:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("%w: %g does not fit 32 bits", ErrMalformed, v)
		}
		e.buf = e.order.AppendUint32(e.buf, uint32(int32(n)))
	}
	return nil
}

func (e *Encoder) putReal(v float64) {
	e.sep()
	if e.format == Portable {
		e.buf = strconv.AppendFloat(e.buf, v, 'g', -1, 64)
		return
	}
	e.buf = e.order.AppendUint64(e.buf, math.Float64bits(v))
}

func (e *Encoder) putChar(b byte) {
	e.sep()
	e.buf = append(e.buf, b)
}

// putString writes s up to its first newline. In the portable format the
// line terminator ends the string; elsewhere a newline is appended.
func (e *Encoder) putString(s string) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	e.sep()
	e.buf = append(e.buf, s...)
	if e.format != Portable {
		e.buf = append(e.buf, '\n')
	}
}
