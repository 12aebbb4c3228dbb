package ps

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

func newPlotter(t *testing.T, params *config.Params) (*plot.Plotter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	dev, err := New(&buf, params)
	require.NoError(t, err)
	return plot.New(dev), &buf
}

func TestDocumentStructure(t *testing.T) {
	p, buf := newPlotter(t, nil)
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Open())
		require.NoError(t, p.Space(0, 0, 1, 1))
		require.NoError(t, p.Line(0, 0, 1, 1))
		require.NoError(t, p.Close())
	}
	require.NoError(t, p.Finish())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%!PS-Adobe-3.0\n"))
	assert.Contains(t, out, "%%Page: 1 1\n")
	assert.Contains(t, out, "%%Page: 2 2\n")
	assert.Equal(t, 2, strings.Count(out, "showpage"))
	assert.Contains(t, out, "%%Pages: 2\n")
	assert.Contains(t, out, "%%DocumentMedia: letter 612 792 0 () ()\n")
	// the diagonal of the letter viewport, padded by half the line width
	assert.Contains(t, out, "%%BoundingBox: 17 107 595 685\n")
	assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
}

func TestPathIsOnePostScriptPath(t *testing.T) {
	p, buf := newPlotter(t, nil)
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	require.NoError(t, p.PenColor(colors.RGB{R: 0xffff}))
	require.NoError(t, p.Move(0, 0))
	require.NoError(t, p.Cont(1, 0))
	require.NoError(t, p.Cont(1, 1))
	require.NoError(t, p.Cont(0, 0))
	require.NoError(t, p.Close())

	out := buf.String()
	assert.Contains(t, out, "18 108 m\n594 108 l\n594 684 l\n18 108 l\nclosepath\n")
	assert.Contains(t, out, "1 0 0 rgb stroke\n")
	assert.NotContains(t, out, "rgb eofill", "unfilled path")
}

func TestFilledEllipse(t *testing.T) {
	p, buf := newPlotter(t, nil)
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	require.NoError(t, p.FillType(1))
	require.NoError(t, p.FillMod("nonzero-winding"))
	require.NoError(t, p.Ellipse(0.5, 0.5, 0.2, 0.1, 30))
	require.NoError(t, p.Close())

	out := buf.String()
	assert.Contains(t, out, "newpath 0.2 0.1 30 0.5 0.5 [576 0 0 576 18 108] ellipse\n")
	assert.Contains(t, out, "gsave 0 0 0 rgb fill grestore\n")
	assert.Equal(t, plot.CapNative, p.Capability(plot.OpEllipse))
}

func TestLabel(t *testing.T) {
	p, buf := newPlotter(t, nil)
	require.NoError(t, p.Open())
	require.NoError(t, p.FontName("Times-Bold"))
	require.NoError(t, p.Move(0.5, 0.5))
	require.NoError(t, p.ALabel(plot.AlignCenter, plot.AlignBaseline, "a(b)"))
	require.NoError(t, p.Close())
	require.NoError(t, p.Finish())

	out := buf.String()
	assert.Contains(t, out, "/Times-Bold findfont")
	assert.Contains(t, out, "(a\\(b\\)) show")
	assert.Contains(t, out, "%%DocumentNeededResources: font Times-Bold\n")
}

func TestFontName(t *testing.T) {
	tests := map[string]string{
		"times-roman":         "Times-Roman",
		"HersheySerif":        "Times-Roman",
		"HersheySans-Bold":    "Helvetica-Bold",
		"Courier-Oblique":     "Courier-Oblique",
		"stick":               "Courier",
		"HersheySerif-Italic": "Times-Italic",
		"":                    "Helvetica",
	}
	for in, want := range tests {
		assert.Equal(t, want, FontName(in), in)
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `(plain)`, escape("plain"))
	assert.Equal(t, `(\\ \(x\))`, escape(`\ (x)`))
	assert.Equal(t, `(caf\303\251)`, escape("café"))
}

func TestStateStackMapsToGsave(t *testing.T) {
	p, buf := newPlotter(t, nil)
	require.NoError(t, p.Open())
	require.NoError(t, p.Space(0, 0, 1, 1))
	require.NoError(t, p.SaveState())
	require.NoError(t, p.SaveState())
	require.NoError(t, p.Line(0, 0, 1, 1))
	require.NoError(t, p.RestoreState())
	require.NoError(t, p.Close())
	require.NoError(t, p.Finish())

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\ngsave\n"))
	assert.Equal(t, 2, strings.Count(out, "\ngrestore\n"))
	assert.Equal(t, strings.Count(out, "gsave"), strings.Count(out, "grestore"))
	assert.Less(t, strings.LastIndex(out, "\ngrestore\n"), strings.Index(out, "pagesave restore"))
}

func TestUnknownPageSize(t *testing.T) {
	_, err := New(&bytes.Buffer{}, &config.Params{PageSize: "quarto"})
	assert.Error(t, err)
}
