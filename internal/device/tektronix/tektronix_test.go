package tektronix

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/tek"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func decode(t *testing.T, data []byte) []tek.Event {
	t.Helper()
	d := tek.NewDecoder(bytes.NewReader(data))
	var out []tek.Event
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestLineIsCenteredOnScreen(t *testing.T) {
	var buf bytes.Buffer
	p := plot.New(New(&buf, nil))
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	require.NoError(t, p.Line(0, 0, 1, 1))
	require.NoError(t, p.Close())

	evs := decode(t, buf.Bytes())
	require.Len(t, evs, 2)
	assert.Equal(t, tek.Event{Kind: tek.Move, X: 488, Y: 0}, evs[0])
	assert.Equal(t, tek.Event{Kind: tek.Draw, X: 3607, Y: 3119}, evs[1])
	assert.Equal(t, byte(tek.US), buf.Bytes()[buf.Len()-1])
}

func TestSegmentsAreClipped(t *testing.T) {
	var buf bytes.Buffer
	p := plot.New(New(&buf, nil))
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	require.NoError(t, p.Line(0.5, 0.5, 0.5, 2))
	require.NoError(t, p.Point(0.5, 5))
	require.NoError(t, p.Close())

	evs := decode(t, buf.Bytes())
	require.Len(t, evs, 2)
	assert.Equal(t, 3119, evs[1].Y)
}

func TestHardwareLineTypes(t *testing.T) {
	var buf bytes.Buffer
	p := plot.New(New(&buf, nil))
	require.NoError(t, p.Open())
	require.NoError(t, p.LineMod(plot.LineDotted))
	require.NoError(t, p.Line(0, 0, 1, 0))
	require.NoError(t, p.LineMod(plot.LineDotDotDashed))
	require.NoError(t, p.Line(0, 0.5, 1, 0.5))
	require.NoError(t, p.Close())

	var kinds []tek.Kind
	var types []tek.LineType
	for _, ev := range decode(t, buf.Bytes()) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == tek.SetLineType {
			types = append(types, ev.Line)
		}
	}
	assert.Equal(t, []tek.LineType{tek.Dotted, tek.Solid}, types)
	assert.Greater(t, len(kinds), 6, "the engine dashes dotdotdashed")
}

func TestKermitColors(t *testing.T) {
	var buf bytes.Buffer
	p := plot.New(New(&buf, &config.Params{Term: "kermit"}))
	require.NoError(t, p.Open())
	require.NoError(t, p.PenColorName("red"))
	require.NoError(t, p.Line(0, 0, 1, 0))
	require.NoError(t, p.Close())
	assert.Contains(t, buf.String(), "\x1b[0;31m")

	buf.Reset()
	p = plot.New(New(&buf, &config.Params{Term: "xterm"}))
	require.NoError(t, p.Open())
	require.NoError(t, p.PenColorName("red"))
	require.NoError(t, p.Line(0, 0, 1, 0))
	require.NoError(t, p.Close())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestCannotFill(t *testing.T) {
	p := plot.New(New(io.Discard, nil))
	assert.Equal(t, plot.CapNone, p.Capability(plot.OpFillType))
	assert.Equal(t, plot.CapNative, p.Capability(plot.OpLabel))
}

func TestLabel(t *testing.T) {
	var buf bytes.Buffer
	p := plot.New(New(&buf, nil))
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	require.NoError(t, p.Move(0.25, 0.25))
	require.NoError(t, p.ALabel(plot.AlignLeft, plot.AlignBaseline, "tek"))
	require.NoError(t, p.Close())

	var text []tek.Event
	for _, ev := range decode(t, buf.Bytes()) {
		if ev.Kind == tek.Text {
			text = append(text, ev)
		}
	}
	require.Len(t, text, 1)
	assert.Equal(t, "tek", text[0].Text)
	assert.Equal(t, 1268, text[0].X)
	assert.Equal(t, 780, text[0].Y)
}

func TestErase(t *testing.T) {
	var buf bytes.Buffer
	p := plot.New(New(&buf, nil))
	require.NoError(t, p.Open())
	require.NoError(t, p.Erase())
	require.NoError(t, p.Close())
	require.NoError(t, p.Open())
	require.NoError(t, p.Close())
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte{tek.ESC, tek.FF}))
}
