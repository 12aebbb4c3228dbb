package colors

import (
	"math"
	"testing"
)

func TestParseNamed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RGB
		wantErr  bool
	}{
		{"red", "red", RGB{R: 0xffff}, false},
		{"Red uppercase", "Red", RGB{R: 0xffff}, false},
		{"with spaces", "  blue  ", RGB{B: 0xffff}, false},
		{"embedded space", "Light Blue", RGB{R: 173 * 0x101, G: 216 * 0x101, B: 230 * 0x101}, false},
		{"white", "white", White, false},
		{"gray0", "gray0", Black, false},
		{"grey100", "grey100", White, false},
		{"gray50", "gray50", RGB{R: 0x8000, G: 0x8000, B: 0x8000}, false},
		{"gray out of range", "gray101", RGB{}, true},
		{"unknown", "notacolor", RGB{}, true},
		{"empty", "", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RGB
		wantErr  bool
	}{
		{"#rgb", "#f00", RGB{R: 0xffff}, false},
		{"#rgb mixed", "#abc", RGB{R: 0xaaaa, G: 0xbbbb, B: 0xcccc}, false},
		{"#rrggbb", "#1a2b3c", RGB{R: 0x1a1a, G: 0x2b2b, B: 0x3c3c}, false},
		{"#rrrrggggbbbb", "#123456789abc", RGB{R: 0x1234, G: 0x5678, B: 0x9abc}, false},
		{"bad length", "#12345", RGB{}, true},
		{"bad digit", "#zz0000", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseRGBFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RGB
		wantErr  bool
	}{
		{"basic", "rgb(255, 0, 0)", RGB{R: 0xffff}, false},
		{"no spaces", "rgb(0,128,255)", RGB{G: 0x8080, B: 0xffff}, false},
		{"uppercase", "RGB(1,2,3)", RGB{R: 0x101, G: 0x202, B: 0x303}, false},
		{"too few", "rgb(1,2)", RGB{}, true},
		{"overflow", "rgb(256,0,0)", RGB{}, true},
		{"unterminated", "rgb(1,2,3", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustParse to panic on invalid input")
		}
	}()
	MustParse("#nothex")
}

func TestHex(t *testing.T) {
	c := RGB{R: 0x1234, G: 0xff00, B: 0x00ff}
	if got := c.Hex(); got != "#12ff00" {
		t.Errorf("Expected #12ff00, got %s", got)
	}
	if got := c.String(); got != c.Hex() {
		t.Errorf("Expected String to equal Hex, got %s", got)
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		name     string
		input    RGB
		palette  Palette
		expected int
	}{
		{"exact black pen", Black, HPGLPens, 1},
		{"exact white pen", White, HPGLPens, 0},
		{"dark red to red", RGB{R: 0xc000}, HPGLPens, 2},
		{"orange to yellow or red", RGB{R: 0xffff, G: 0xa5a5}, HPGLPens, 4},
		{"fig gold", hex24(0xffd700), FigStandard, 31},
		{"fig pink", hex24(0xffa0a0), FigStandard, 28},
		{"empty palette", Black, nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.palette.Nearest(tt.input); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestNearestExcluding(t *testing.T) {
	// white is pen 0; with it reserved the nearest pen to white is yellow
	got := HPGLPens.NearestExcluding(White, 0)
	if got == 0 {
		t.Errorf("Expected reserved pen to be skipped, got %d", got)
	}
	if got != 4 {
		t.Errorf("Expected 4, got %d", got)
	}
}

func TestFigStandardSize(t *testing.T) {
	if len(FigStandard) != 32 {
		t.Errorf("Expected 32 standard colors, got %d", len(FigStandard))
	}
	if FigStandard.Index(White) != 7 {
		t.Errorf("Expected white at index 7, got %d", FigStandard.Index(White))
	}
}

func TestDesaturate(t *testing.T) {
	red := RGB{R: 0xffff}
	tests := []struct {
		name     string
		level    int
		expected RGB
	}{
		{"unfilled", 0, red},
		{"full color", 1, red},
		{"white", 0xffff, White},
		{"clamped", 0x20000, White},
		{"halfway", 0x8000, RGB{R: 0xffff, G: 0x8000, B: 0x8000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Desaturate(red, tt.level); got != tt.expected {
				t.Errorf("Desaturate(red, %#x) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestLuminance(t *testing.T) {
	if l := Luminance(White); math.Abs(l-1) > 1e-9 {
		t.Errorf("Expected white luminance 1, got %f", l)
	}
	if l := Luminance(Black); l != 0 {
		t.Errorf("Expected black luminance 0, got %f", l)
	}
	g := Gray(RGB{G: 0xffff})
	if g.R != g.G || g.G != g.B {
		t.Errorf("Expected gray channels equal, got %v", g)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(Black, White, 0.5); got != (RGB{R: 0x8000, G: 0x8000, B: 0x8000}) {
		t.Errorf("Expected mid gray, got %v", got)
	}
	if got := Lerp(Black, White, 2); got != White {
		t.Errorf("Expected clamp to white, got %v", got)
	}
}
