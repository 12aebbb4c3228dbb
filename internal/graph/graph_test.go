package graph

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// recorder keeps segments and label texts.
type recorder struct {
	segments [][2]geom.Point
	labels   []string
}

func (d *recorder) Info() plot.DeviceInfo {
	return plot.DeviceInfo{
		Name:      "recorder",
		View:      geom.Viewport{Bounds: geom.R(0, 0, 100, 100)},
		LineWidth: 0.001,
		Font:      "HersheySerif",
		FontSize:  0.05,
	}
}

func (d *recorder) BeginPage(page int, s *plot.State) error { return nil }
func (d *recorder) EndPage(page int) error                  { return nil }
func (d *recorder) Erase(s *plot.State) error               { return nil }
func (d *recorder) SetPenColor(s *plot.State) error         { return nil }
func (d *recorder) SetFillColor(s *plot.State) error        { return nil }

func (d *recorder) EmitSegment(s *plot.State, p0, p1 geom.Point) error {
	d.segments = append(d.segments, [2]geom.Point{p0, p1})
	return nil
}

func (d *recorder) FillRegion(s *plot.State, rings [][]geom.Point, rule plot.FillRule) error {
	return nil
}

func (d *recorder) RenderLabel(s *plot.State, h plot.HAlign, v plot.VAlign, text string) (bool, error) {
	d.labels = append(d.labels, text)
	return true, nil
}

func (d *recorder) hasSegment(p0, p1 geom.Point) bool {
	near := func(a, b geom.Point) bool {
		return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
	}
	for _, s := range d.segments {
		if near(s[0], p0) && near(s[1], p1) {
			return true
		}
	}
	return false
}

type warnLog struct {
	warns []string
}

func (l *warnLog) Debug(msg string, args ...any) {}
func (l *warnLog) Info(msg string, args ...any)  {}
func (l *warnLog) Warn(msg string, args ...any)  { l.warns = append(l.warns, msg) }
func (l *warnLog) Error(msg string, args ...any) {}

func draw(t *testing.T, opts Options, pts []geom.Point) (*recorder, *warnLog, error) {
	t.Helper()
	dev := &recorder{}
	log := &warnLog{}
	p := plot.New(dev)
	require.NoError(t, p.Open())
	err := New(opts, NewWarner(log)).Draw(p, pts)
	require.NoError(t, p.Close())
	return dev, log, err
}

func TestStep(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{10, 2},
		{1, 0.2},
		{7, 2},
		{2, 0.5},
		{100, 20},
	}
	for _, tt := range tests {
		got, err := Step(tt.span, DefaultMaxTicks)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "span %g", tt.span)
	}
	_, err := Step(0, DefaultMaxTicks)
	assert.ErrorIs(t, err, plot.ErrBadParameter)
	_, err = Step(1, 0)
	assert.ErrorIs(t, err, plot.ErrBadParameter)
}

func TestTicks(t *testing.T) {
	got, err := Ticks(0, 1, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, got)

	got, err = Ticks(0.1, 0.9, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, got)

	_, err = Ticks(0, 1, 0)
	assert.ErrorIs(t, err, plot.ErrBadParameter)
}

func TestWiden(t *testing.T) {
	lo, hi, step, widened, err := Widen(0.3, 9.7, DefaultMaxTicks)
	require.NoError(t, err)
	assert.False(t, widened)
	assert.Equal(t, []float64{0, 10, 2}, []float64{lo, hi, step})

	lo, hi, step, widened, err = Widen(3, 3, DefaultMaxTicks)
	require.NoError(t, err)
	assert.True(t, widened)
	assert.InDelta(t, 2, lo, 1e-12)
	assert.InDelta(t, 4, hi, 1e-12)
	assert.InDelta(t, 0.5, step, 1e-12)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "10", Format(10, 2))
	assert.Equal(t, "0.5", Format(0.5, 0.25))
	assert.Equal(t, "0.0", Format(-0.0001, 0.1))
	assert.Equal(t, "-1.5", Format(-1.5, 0.5))
}

func TestWarnerOnce(t *testing.T) {
	log := &warnLog{}
	w := NewWarner(log)
	assert.True(t, w.Warn("a"))
	assert.False(t, w.Warn("a"))
	assert.True(t, w.Warn("b"))
	assert.Equal(t, []string{"a", "b"}, log.warns)
}

func TestReadPoints(t *testing.T) {
	log := &warnLog{}
	pts, err := ReadPoints(strings.NewReader("0 1\n2 3\t4"), NewWarner(log))
	require.NoError(t, err)
	assert.Equal(t, []geom.Point{geom.Pt(0, 1), geom.Pt(2, 3)}, pts)
	assert.Len(t, log.warns, 1)

	_, err = ReadPoints(strings.NewReader("1 x"), nil)
	assert.Error(t, err)
}

func TestDrawFrameAndLabels(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "squares"
	dev, log, err := draw(t, opts, []geom.Point{geom.Pt(0, 0), geom.Pt(10, 10)})
	require.NoError(t, err)
	assert.Empty(t, log.warns)

	ticks := []string{"0", "2", "4", "6", "8", "10"}
	want := append(append(append([]string{}, ticks...), ticks...), "squares")
	assert.Equal(t, want, dev.labels)
	assert.True(t, dev.hasSegment(geom.Pt(20, 20), geom.Pt(90, 90)), "data line")
}

func TestDrawClipsToUserRange(t *testing.T) {
	opts := DefaultOptions()
	opts.X = Range{Min: 0, Max: 5, Set: true}
	dev, log, err := draw(t, opts, []geom.Point{geom.Pt(0, 0), geom.Pt(10, 10)})
	require.NoError(t, err)
	assert.True(t, dev.hasSegment(geom.Pt(20, 20), geom.Pt(90, 55)))
	assert.Equal(t, []string{"data outside the plotting area was clipped"}, log.warns)
}

func TestDrawWidensOnce(t *testing.T) {
	_, log, err := draw(t, DefaultOptions(), []geom.Point{geom.Pt(3, 3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"data range is empty, widening it"}, log.warns)
}

func TestDrawRejectsEmptyRange(t *testing.T) {
	opts := DefaultOptions()
	opts.Y = Range{Min: 1, Max: 1, Set: true}
	_, _, err := draw(t, opts, nil)
	assert.ErrorIs(t, err, plot.ErrBadParameter)
}

func TestClipSplitsRuns(t *testing.T) {
	box := geom.R(frameLo, frameLo, frameHi, frameHi)

	pieces, clipped := clip([]geom.Point{geom.Pt(0.3, 0.3), geom.Pt(0.5, 0.5), geom.Pt(0.6, 0.4)}, box)
	assert.False(t, clipped)
	require.Len(t, pieces, 1)
	assert.Len(t, pieces[0], 3)

	pieces, clipped = clip([]geom.Point{geom.Pt(0.5, 0.5), geom.Pt(0.5, 1.0), geom.Pt(0.6, 0.5)}, box)
	assert.True(t, clipped)
	require.Len(t, pieces, 2)
	require.Len(t, pieces[0], 2)
	require.Len(t, pieces[1], 2)
	assert.InDelta(t, 0.9, pieces[0][1].Y, 1e-9)
	assert.InDelta(t, 0.52, pieces[1][0].X, 1e-9)
	assert.InDelta(t, 0.9, pieces[1][0].Y, 1e-9)

	pieces, clipped = clip([]geom.Point{geom.Pt(0, 0), geom.Pt(0.1, 0.1)}, box)
	assert.True(t, clipped)
	assert.Empty(t, pieces)
}

func TestDrawWarnsWhenOnlyAnEndpointMoves(t *testing.T) {
	opts := DefaultOptions()
	opts.Y = Range{Min: 0, Max: 1, Set: true}
	_, log, err := draw(t, opts, []geom.Point{geom.Pt(0, 0.5), geom.Pt(1, 0.5), geom.Pt(2, 2)})
	require.NoError(t, err)
	assert.Contains(t, log.warns, "data outside the plotting area was clipped")
}
