package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	return path
}

func runScriptFile(t *testing.T, path string, extra ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args := append([]string{"-T", "meta", "-param", "META_PORTABLE=yes"}, extra...)
	code := run(append(args, path), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func lines(out, line string) int {
	n := 0
	for _, l := range strings.Split(out, "\n") {
		if l == line {
			n++
		}
	}
	return n
}

func TestDirectDrawing(t *testing.T) {
	path := writeScript(t, `
		plot.openpl()
		plot.fspace(0, 0, 10, 10)
		plot.fline(0, 0, 10, 10)
		plot.label("direct")
		print("printed")
	`)
	out, errs, code := runScriptFile(t, path)
	require.Equal(t, 0, code, errs)
	assert.Equal(t, 1, lines(out, "o"))
	assert.Equal(t, 1, lines(out, "x"), "the open page is closed")
	assert.Contains(t, out, "direct")
	assert.NotContains(t, out, "printed")
	assert.Contains(t, errs, "printed")
}

func TestHooks(t *testing.T) {
	path := writeScript(t, `
		started = false
		function plot_startup()
			started = true
		end
		function plot_page(n)
			assert(started)
			plot.fspace(0, 0, 1, 1)
			plot.label("page " .. n)
		end
		function plot_shutdown()
			print("done")
		end
	`)
	out, errs, code := runScriptFile(t, path, "-pages", "3")
	require.Equal(t, 0, code, errs)
	assert.Equal(t, 3, lines(out, "o"))
	assert.Contains(t, out, "page 3")
	assert.Contains(t, errs, "done")
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"syntax", "plot.openpl("},
		{"runtime", "error('boom')"},
		{"page hook", "function plot_page(n) error('bad page') end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs, code := runScriptFile(t, writeScript(t, tt.code))
			assert.Equal(t, 1, code)
			assert.Contains(t, errs, "plotlua:")
		})
	}
}

func TestUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"a.lua", "b.lua"}, &stdout, &stderr))
	assert.Equal(t, 1, run([]string{"-pages", "-1", "a.lua"}, &stdout, &stderr))
}
