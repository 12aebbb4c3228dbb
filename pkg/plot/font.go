package plot

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// FontStyle represents font style variations.
type FontStyle int

const (
	FontStyleRegular FontStyle = iota
	FontStyleBold
	FontStyleItalic
	FontStyleBoldItalic
)

// String returns the string representation of a FontStyle.
func (fs FontStyle) String() string {
	switch fs {
	case FontStyleRegular:
		return "regular"
	case FontStyleBold:
		return "bold"
	case FontStyleItalic:
		return "italic"
	case FontStyleBoldItalic:
		return "bold-italic"
	default:
		return "unknown"
	}
}

// FontFace describes how a font name was resolved for outline rendering.
type FontFace struct {
	// Mono is set for typewriter faces (Courier, Typewriter, Mono).
	Mono  bool
	Style FontStyle
}

// ResolveFont maps a PostScript, Hershey or HP-GL font name onto one of the
// embedded Go faces, e.g. "Times-BoldItalic" or "HersheySerif-Bold".
func ResolveFont(name string) FontFace {
	n := strings.ToLower(name)
	var f FontFace
	for _, mono := range []string{"courier", "mono", "typewriter", "stick"} {
		if strings.Contains(n, mono) {
			f.Mono = true
			break
		}
	}
	bold := strings.Contains(n, "bold") || strings.Contains(n, "heavy") || strings.Contains(n, "demi")
	italic := strings.Contains(n, "italic") || strings.Contains(n, "oblique")
	switch {
	case bold && italic:
		f.Style = FontStyleBoldItalic
	case bold:
		f.Style = FontStyleBold
	case italic:
		f.Style = FontStyleItalic
	}
	return f
}

// TTF returns the embedded TrueType data of the face.
func (f FontFace) TTF() []byte {
	if f.Mono {
		switch f.Style {
		case FontStyleBold:
			return gomonobold.TTF
		case FontStyleItalic:
			return gomonoitalic.TTF
		case FontStyleBoldItalic:
			return gomonobolditalic.TTF
		}
		return gomono.TTF
	}
	switch f.Style {
	case FontStyleBold:
		return gobold.TTF
	case FontStyleItalic:
		return goitalic.TTF
	case FontStyleBoldItalic:
		return gobolditalic.TTF
	}
	return goregular.TTF
}

var (
	fontMu    sync.Mutex
	fontCache = make(map[FontFace]*sfnt.Font)
)

// outlineFont returns the parsed outline font for a face, parsing it on
// first use. Parsed fonts are shared; sfnt.Font is safe for concurrent use
// with separate buffers.
func outlineFont(face FontFace) (*sfnt.Font, error) {
	fontMu.Lock()
	defer fontMu.Unlock()
	if f, ok := fontCache[face]; ok {
		return f, nil
	}
	f, err := sfnt.Parse(face.TTF())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s font: %w", face.Style, err)
	}
	fontCache[face] = f
	return f, nil
}
