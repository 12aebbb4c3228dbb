package metafile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// traceDevice records pages, segments and fills.
type traceDevice struct {
	pages    []int
	ends     int
	segments [][2]geom.Point
	fills    int
	pen      colors.RGB
}

func (d *traceDevice) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:      "trace",
		View:      geom.Viewport{Bounds: geom.R(0, 0, 100, 100)},
		LineWidth: 0.001,
		Font:      "HersheySerif",
		FontSize:  0.05,
	}
}

func (d *traceDevice) BeginPage(page int, s *plot.State) error {
	d.pages = append(d.pages, page)
	return nil
}

func (d *traceDevice) EndPage(page int) error {
	d.ends++
	return nil
}

func (d *traceDevice) Erase(s *plot.State) error { return nil }

func (d *traceDevice) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	d.segments = append(d.segments, [2]geom.Point{p0, p1})
	d.pen = s.PenColor
	return nil
}

func (d *traceDevice) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	d.fills++
	return nil
}

func (d *traceDevice) SetPenColor(s *plot.State) error  { return nil }
func (d *traceDevice) SetFillColor(s *plot.State) error { return nil }

// warnLog counts warnings.
type warnLog struct {
	warns []string
}

func (l *warnLog) Debug(msg string, args ...any) {}
func (l *warnLog) Info(msg string, args ...any)  {}
func (l *warnLog) Warn(msg string, args ...any)  { l.warns = append(l.warns, msg) }
func (l *warnLog) Error(msg string, args ...any) {}

func play(t *testing.T, data []byte, page int, log plot.Logger) (*traceDevice, error) {
	t.Helper()
	dev := &traceDevice{}
	pl := NewPlayer(plot.New(dev), log)
	pl.Page = page
	return dev, pl.PlayAll(NewDecoder(bytes.NewReader(data)))
}

func TestPlayTraditionalOpensImplicitly(t *testing.T) {
	data := encodeAll(t, Traditional, []Command{
		{Op: OpSpace, Args: []float64{0, 0, 10, 10}},
		{Op: OpMove, Args: []float64{0, 0}},
		{Op: OpCont, Args: []float64{10, 0}},
		{Op: OpCont, Args: []float64{10, 10}},
	})
	dev, err := play(t, data, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, dev.pages)
	assert.Equal(t, 1, dev.ends)
	require.Len(t, dev.segments, 2)
	assert.InDelta(t, 100, dev.segments[0][1].X, 1e-9)
	assert.InDelta(t, 100, dev.segments[1][1].Y, 1e-9)
}

func TestPlayAppliesAttributes(t *testing.T) {
	data := encodeAll(t, Binary, []Command{
		{Op: OpOpenPl},
		{Op: OpFSpace, Args: []float64{0, 0, 1, 1}},
		{Op: OpPenColor, Args: []float64{0, 0, 65535}},
		{Op: OpFillType, Args: []float64{1}},
		{Op: OpFBox, Args: []float64{0.1, 0.1, 0.9, 0.9}},
		{Op: OpClosePl},
	})
	dev, err := play(t, data, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, dev.fills)
	assert.Len(t, dev.segments, 4)
	assert.Equal(t, colors.RGB{B: 65535}, dev.pen)
}

func TestPlaySelectsPage(t *testing.T) {
	var cmds []Command
	for i := 0; i < 3; i++ {
		cmds = append(cmds,
			Command{Op: OpOpenPl},
			Command{Op: OpFLine, Args: []float64{0, 0, float64(i+1) / 10, 0}},
			Command{Op: OpClosePl},
		)
	}
	data := encodeAll(t, Portable, cmds)

	dev, err := play(t, data, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, dev.pages, "only one page reaches the device")
	require.Len(t, dev.segments, 1)
	assert.InDelta(t, 20, dev.segments[0][1].X, 1e-9)

	dev, err = play(t, data, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, dev.pages)
}

func TestPlayWarnsAndContinues(t *testing.T) {
	data := encodeAll(t, Portable, []Command{
		{Op: OpOpenPl},
		{Op: OpLineMod, Text: "wiggly"},
		{Op: OpFSpace, Args: []float64{0, 0, 0, 0}},
		{Op: OpFLine, Args: []float64{0, 0, 1, 0}},
		{Op: OpClosePl},
	})
	log := &warnLog{}
	dev, err := play(t, data, 0, log)
	require.NoError(t, err)
	assert.Len(t, log.warns, 2)
	assert.Len(t, dev.segments, 1)
}

func TestPlayReportsDecodeErrors(t *testing.T) {
	data := append(encodeAll(t, Binary, []Command{{Op: OpOpenPl}}), 'm', 1)
	_, err := play(t, data, 0, nil)
	assert.Error(t, err)
}
