package cli

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/device"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func parse(t *testing.T, args ...string) *Common {
	t.Helper()
	var c Common
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	c.Register(fs, "meta")
	require.NoError(t, fs.Parse(args))
	return &c
}

func TestRegisterDefaults(t *testing.T) {
	c := parse(t)
	assert.Equal(t, "meta", c.Type)
	assert.Empty(t, c.Output)
	assert.Empty(t, c.Settings)
	assert.False(t, c.Debug)
}

func TestParamSettings(t *testing.T) {
	c := parse(t, "-T", "svg", "-param", "BG_COLOR=red", "-param", "BITMAPSIZE=100x100")
	assert.Equal(t, "svg", c.Type)
	assert.Equal(t, []string{"BG_COLOR=red", "BITMAPSIZE=100x100"}, c.Settings)

	p, err := c.Params(plot.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, "red", p.BgColor)
	assert.Equal(t, "100x100", p.BitmapSize)

	var bad Common
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	bad.Register(fs, "meta")
	assert.Error(t, fs.Parse([]string{"-param", "novalue"}))
}

func TestParamsRejectsBadValue(t *testing.T) {
	c := parse(t, "-param", "ROTATION=45")
	_, err := c.Params(plot.NopLogger())
	assert.Error(t, err)
}

func line(_ context.Context, p *plot.Plotter) error {
	if err := p.Open(); err != nil {
		return err
	}
	if err := p.Line(0.1, 0.1, 0.9, 0.9); err != nil {
		return err
	}
	return p.Close()
}

func TestSessionWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.svg")
	c := parse(t, "-T", "svg", "-o", out)
	params, err := c.Params(plot.NopLogger())
	require.NoError(t, err)

	s, err := c.Open(&params, &bytes.Buffer{}, plot.NopLogger())
	require.NoError(t, err)
	assert.False(t, s.Interactive())
	require.NoError(t, s.Draw(context.Background(), line))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"), "svg document written")
}

func TestSessionWritesStdout(t *testing.T) {
	c := parse(t, "-T", "meta", "-param", "META_PORTABLE=yes")
	params, err := c.Params(plot.NopLogger())
	require.NoError(t, err)

	var buf bytes.Buffer
	s, err := c.Open(&params, &buf, plot.NopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Draw(context.Background(), line))
	assert.True(t, strings.HasPrefix(buf.String(), "#PLOT 2\n"))
}

func TestOpenUnknownType(t *testing.T) {
	c := parse(t, "-T", "plotter9000")
	params, err := c.Params(plot.NopLogger())
	require.NoError(t, err)
	_, err = c.Open(&params, &bytes.Buffer{}, plot.NopLogger())
	assert.ErrorIs(t, err, device.ErrUnknownDevice)
}

func TestWatchNeedsInteractiveDevice(t *testing.T) {
	c := parse(t, "-T", "meta")
	params, err := c.Params(plot.NopLogger())
	require.NoError(t, err)
	s, err := c.Open(&params, &bytes.Buffer{}, plot.NopLogger())
	require.NoError(t, err)

	err = s.Watch(context.Background(), nil, plot.NopLogger(), func(*plot.Plotter) error { return nil })
	assert.ErrorIs(t, err, plot.ErrInvalidOperation)
}

func TestFail(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 1, Fail(&buf, "graph", assert.AnError))
	assert.Equal(t, "graph: "+assert.AnError.Error()+"\n", buf.String())
}
