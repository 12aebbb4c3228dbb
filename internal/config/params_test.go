package config

import (
	"errors"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.PageSize != "letter" {
		t.Errorf("Expected PageSize letter, got %q", p.PageSize)
	}
	if p.MaxLineLength != DefaultMaxLineLength {
		t.Errorf("Expected MaxLineLength %d, got %d", DefaultMaxLineLength, p.MaxLineLength)
	}
	if r := p.Validate(); !r.IsValid() {
		t.Errorf("defaults should validate, got %v", r.Error())
	}
}

func TestParamsSet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(p Params) bool
	}{
		{"page size", "PAGESIZE", "a4", func(p Params) bool { return p.PageSize == "a4" }},
		{"lowercase key", "bg_color", "black", func(p Params) bool { return p.BgColor == "black" }},
		{"bool yes", "META_PORTABLE", "yes", func(p Params) bool { return p.MetaPortable }},
		{"bool true", "INTERLACE", "true", func(p Params) bool { return p.Interlace }},
		{"rotation", "ROTATION", "270", func(p Params) bool { return p.Rotation == 270 }},
		{"rotation yes", "ROTATION", "yes", func(p Params) bool { return p.Rotation == 90 }},
		{"hex window", "XDRAWABLE_WINDOW", "0x2a00001", func(p Params) bool { return p.XDrawableWindow == 0x2a00001 }},
		{"line length", "MAX_LINE_LENGTH", " 100 ", func(p Params) bool { return p.MaxLineLength == 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			if err := p.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) failed: %v", tt.key, tt.value, err)
			}
			if !tt.check(p) {
				t.Errorf("Set(%q, %q) did not apply: %+v", tt.key, tt.value, p)
			}
		})
	}
}

func TestParamsSetErrors(t *testing.T) {
	p := DefaultParams()
	if err := p.Set("NO_SUCH_PARAM", "1"); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("Expected ErrUnknownParam, got %v", err)
	}
	if err := p.Set("INTERLACE", "maybe"); err == nil {
		t.Error("Expected error for bad boolean")
	}
	if err := p.Set("MAX_LINE_LENGTH", "many"); err == nil {
		t.Error("Expected error for bad integer")
	}
	if err := p.Set("XDRAWABLE_WINDOW", "-1"); err == nil {
		t.Error("Expected error for bad window id")
	}
}

func TestParamsGetRoundTrip(t *testing.T) {
	p := DefaultParams()
	for _, name := range Names() {
		v, err := p.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", name, err)
		}
		q := DefaultParams()
		if err := q.Set(name, v); err != nil {
			t.Errorf("Set(%s, %q) failed: %v", name, v, err)
		}
		if q != p {
			t.Errorf("%s did not round-trip through %q", name, v)
		}
	}
}

func TestParseBitmapSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"570x570", 570, 570, false},
		{"640X480", 640, 480, false},
		{"300", 300, 300, false},
		{" 100 x 50 ", 100, 50, false},
		{"", 0, 0, true},
		{"0x10", 0, 0, true},
		{"axb", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := ParseBitmapSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBitmapSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("Expected %dx%d, got %dx%d", tt.w, tt.h, w, h)
			}
		})
	}
}

func TestLookupPageSize(t *testing.T) {
	ps, ignored, err := LookupPageSize("A4,xoffset=1in")
	if err != nil {
		t.Fatalf("LookupPageSize failed: %v", err)
	}
	if ps.Name != "a4" {
		t.Errorf("Expected a4, got %s", ps.Name)
	}
	if len(ignored) != 1 || ignored[0] != "xoffset=1in" {
		t.Errorf("Expected the offset option to be ignored, got %v", ignored)
	}

	x0, y0, side := defaultPage(t).ViewportPoints()
	if side != 8*72 || x0 != 18 || y0 != 108 {
		t.Errorf("letter viewport = (%g, %g, %g)", x0, y0, side)
	}

	if _, _, err := LookupPageSize("folio"); err == nil {
		t.Error("Expected error for unknown page size")
	}
}

func defaultPage(t *testing.T) PageSize {
	t.Helper()
	ps, _, err := LookupPageSize(DefaultParams().PageSize)
	if err != nil {
		t.Fatalf("default page size: %v", err)
	}
	return ps
}

func TestKermit(t *testing.T) {
	p := DefaultParams()
	if p.Kermit() {
		t.Error("empty TERM is not kermit")
	}
	p.Term = "kermit-vt100"
	if !p.Kermit() {
		t.Error("Expected kermit terminal")
	}
}
