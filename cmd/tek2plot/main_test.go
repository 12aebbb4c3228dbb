package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/metafile"
	"github.com/opd-ai/go-plotutils/internal/tek"
)

func stream(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := tek.NewEncoder(&buf)
	e.Segment(0, 0, 4095, 0)
	e.Erase()
	e.Segment(0, 0, 0, 3119)
	e.Text(100, 100, "hi")
	require.NoError(t, e.Flush())
	return buf.Bytes()
}

func TestPlayStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-T", "meta", "-param", "META_PORTABLE=yes"}, bytes.NewReader(stream(t)), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	require.True(t, strings.HasPrefix(out, metafile.PortableHeader))
	opens := 0
	for _, l := range strings.Split(out, "\n") {
		if l == "o" {
			opens++
		}
	}
	assert.Equal(t, 2, opens, "erase after drawing starts a page")
	assert.Contains(t, out, "hi")
}

func TestPlayFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tek")
	out := filepath.Join(dir, "out.ps")
	require.NoError(t, os.WriteFile(in, stream(t), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-T", "ps", "-o", out, in}, nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%!PS-Adobe"))
}

func TestMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-T", "meta", "-param", "META_PORTABLE=yes", "/nonexistent/in.tek"}, nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "tek2plot:")
}

func TestUnknownType(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"-T", "nope"}, nil, &stdout, &stderr))
}
