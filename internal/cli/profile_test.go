package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func TestProfilerStartStop(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")

	p := NewProfiler(cpu, mem)
	require.True(t, p.Enabled())
	require.NoError(t, p.Start())
	assert.Error(t, p.Start(), "already running")
	require.NoError(t, p.Stop())
	assert.Error(t, p.Stop(), "not running")

	for _, path := range []string{cpu, mem} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestProfilerBadPath(t *testing.T) {
	p := NewProfiler(filepath.Join(t.TempDir(), "missing", "cpu.prof"), "")
	assert.Error(t, p.Start())
}

func TestStartProfileDisabled(t *testing.T) {
	c := parse(t)
	stop, err := c.StartProfile(plot.NopLogger())
	require.NoError(t, err)
	stop()
	assert.False(t, NewProfiler(c.CPUProfile, c.MemProfile).Enabled())
}
