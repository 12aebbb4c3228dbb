package meta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/metafile"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func drawScene(t *testing.T, p *plot.Plotter) {
	t.Helper()
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 100, 100))
	require.NoError(t, p.PenColor(colors.RGB{R: 0xffff}))
	require.NoError(t, p.LineDash([]float64{4, 2}, 1))
	require.NoError(t, p.Move(10, 10))
	require.NoError(t, p.Cont(90, 10))
	require.NoError(t, p.Cont(50, 80))
	require.NoError(t, p.FillType(1))
	require.NoError(t, p.Box(20, 20, 40, 40))
	require.NoError(t, p.Circle(50, 50, 5))
	require.NoError(t, p.Move(5, 95))
	require.NoError(t, p.ALabel(plot.AlignCenter, plot.AlignTop, "title"))
	require.NoError(t, p.SaveState())
	require.NoError(t, p.LineWidth(2))
	require.NoError(t, p.Marker(70, 70, 3, 4))
	require.NoError(t, p.RestoreState())
	require.NoError(t, p.Close())
}

func TestPortableOutput(t *testing.T) {
	var buf bytes.Buffer
	dev := New(&buf, &config.Params{MetaPortable: true})
	drawScene(t, plot.New(dev))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"#PLOT 2",
		"o",
		"* 0 0 100 100",
		"- 65535 0 0",
		"w 2 4 2 1",
		"$ 10 10",
		") 90 10",
		") 50 80",
		"E",
		"L 1",
		"3 20 20 40 40",
		"5 50 50 5",
		"$ 5 95",
		"T c t title",
		"U",
		"0 2",
		"! 70 70 3 4",
		"O",
		"x",
	}, lines)
}

func TestReplayReproducesMetafile(t *testing.T) {
	for _, portable := range []bool{false, true} {
		params := &config.Params{MetaPortable: portable}
		var first bytes.Buffer
		drawScene(t, plot.New(New(&first, params)))

		var second bytes.Buffer
		dev := New(&second, params)
		p := plot.New(dev)
		pl := metafile.NewPlayer(p, nil)
		require.NoError(t, pl.PlayAll(metafile.NewDecoder(bytes.NewReader(first.Bytes()))))
		require.NoError(t, p.Finish())

		assert.Equal(t, first.Bytes(), second.Bytes(), "portable=%v", portable)
	}
}

func TestEverythingIsNative(t *testing.T) {
	p := plot.New(New(&bytes.Buffer{}, nil))
	for _, op := range []plot.Op{plot.OpEndPath, plot.OpArc, plot.OpEllArc, plot.OpEllipse,
		plot.OpCircle, plot.OpBox, plot.OpLabel, plot.OpPoint, plot.OpMarker} {
		assert.Equal(t, plot.CapNative, p.Capability(op), op.String())
	}
}
