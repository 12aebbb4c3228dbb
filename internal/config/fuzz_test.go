package config

import (
	"testing"
)

// FuzzLegacyParser checks that arbitrary input never panics the legacy
// parser.
func FuzzLegacyParser(f *testing.F) {
	f.Add([]byte("PAGESIZE a4\nBG_COLOR black\n"))
	f.Add([]byte("# comment\nROTATION=90\n"))
	f.Add([]byte(""))
	f.Add([]byte("\n\n\n"))
	f.Add([]byte("PAGESIZE"))
	f.Add([]byte("MAX_LINE_LENGTH -99999999999999999999"))
	f.Add([]byte("XDRAWABLE_WINDOW 0xzz"))

	f.Fuzz(func(t *testing.T, data []byte) {
		p := DefaultParams()
		_ = NewLegacyParser().Parse(data, &p)
		_ = p.Validate()
	})
}

// FuzzDetectFormat checks that format detection accepts any input.
func FuzzDetectFormat(f *testing.F) {
	f.Add("params", []byte("pagesize: a4"))
	f.Add("x.toml", []byte("pagesize = 1"))
	f.Fuzz(func(t *testing.T, path string, data []byte) {
		if got := DetectFormat(path, data); got < FormatLegacy || got > FormatYAML {
			t.Errorf("DetectFormat returned %v", got)
		}
	})
}
