package hpgl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func params(version string) *config.Params {
	p := config.DefaultParams()
	p.HPGLVersion = version
	return &p
}

func draw(t *testing.T, params *config.Params, fn func(p *plot.Plotter)) string {
	t.Helper()
	var buf bytes.Buffer
	dev, err := New(&buf, params)
	require.NoError(t, err)
	p := plot.New(dev)
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	fn(p)
	require.NoError(t, p.Close())
	return buf.String()
}

func TestPolyline(t *testing.T) {
	out := draw(t, params("1"), func(p *plot.Plotter) {
		require.NoError(t, p.Move(0, 0))
		require.NoError(t, p.Cont(1, 0))
		require.NoError(t, p.Cont(1, 1))
	})
	// letter viewport: 8in square centered on 8.5x11in at 1016 units/in
	assert.True(t, strings.HasPrefix(out, "IN;\n"))
	assert.Contains(t, out, "SP1;PU254,1524;PD8382,1524,8382,9652;\n")
	assert.NotContains(t, out, "PW", "no pen widths before HP-GL/2")
	assert.True(t, strings.HasSuffix(out, "PU;SP0;\n"))
}

func TestPenQuantization(t *testing.T) {
	out := draw(t, params("1"), func(p *plot.Plotter) {
		require.NoError(t, p.PenColor(colors.RGB{R: 0xf000, G: 0x1000}))
		require.NoError(t, p.Line(0, 0, 1, 1))
	})
	assert.Contains(t, out, "SP2;", "nearest pen is red")
}

func TestAssignPens(t *testing.T) {
	prm := params("2")
	prm.HPGLAssignPens = true
	out := draw(t, prm, func(p *plot.Plotter) {
		require.NoError(t, p.PenColor(colors.RGB{R: 0x8080, G: 0x8080, B: 0x8080}))
		require.NoError(t, p.Line(0, 0, 1, 1))
	})
	assert.Contains(t, out, "PC8,128,128,128;SP8;")
}

func TestWhiteIsNotDrawn(t *testing.T) {
	out := draw(t, params("2"), func(p *plot.Plotter) {
		require.NoError(t, p.PenColor(colors.White))
		require.NoError(t, p.Line(0, 0, 1, 1))
	})
	assert.NotContains(t, out, "PD")
}

func TestFillOnlyInHPGL2(t *testing.T) {
	box := func(p *plot.Plotter) {
		require.NoError(t, p.FillType(1))
		require.NoError(t, p.Box(0.25, 0.25, 0.75, 0.75))
	}
	out := draw(t, params("2"), box)
	assert.Contains(t, out, "FT1;")
	assert.Contains(t, out, "PM0;")
	assert.Contains(t, out, "FP0;")

	out = draw(t, params("1.5"), box)
	assert.NotContains(t, out, "PM0;")

	dev, err := New(&bytes.Buffer{}, params("1"))
	require.NoError(t, err)
	assert.Equal(t, plot.CapNone, plot.New(dev).Capability(plot.OpFillType))
}

func TestNativeCircleAndLabel(t *testing.T) {
	out := draw(t, params("2"), func(p *plot.Plotter) {
		require.NoError(t, p.Circle(0.5, 0.5, 0.25))
		require.NoError(t, p.Move(0.5, 0.5))
		require.NoError(t, p.ALabel(plot.AlignCenter, plot.AlignMiddle, "hi\tthere"))
	})
	assert.Contains(t, out, "PU4318,5588;CI2032;")
	assert.Contains(t, out, "LO5;LBhithere\x03")
}

func TestLineTypes(t *testing.T) {
	out := draw(t, params("2"), func(p *plot.Plotter) {
		require.NoError(t, p.LineMod(plot.LineDotted))
		require.NoError(t, p.Line(0, 0, 1, 0))
		require.NoError(t, p.LineMod(plot.LineSolid))
		require.NoError(t, p.Line(0, 1, 1, 1))
	})
	assert.Contains(t, out, "LT1;")
	assert.Contains(t, out, "LT;")
}

func TestBadParams(t *testing.T) {
	_, err := New(&bytes.Buffer{}, params("3"))
	assert.Error(t, err)

	prm := params("2")
	prm.HPGLPens = "1=black:1=red"
	_, err = New(&bytes.Buffer{}, prm)
	assert.Error(t, err)
}
