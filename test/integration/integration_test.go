//go:build integration

// Package integration provides end-to-end tests: a drawing recorded as a
// metafile is replayed on every file output type.
package integration

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device"
	"github.com/opd-ai/go-plotutils/internal/graph"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/internal/lua"
	"github.com/opd-ai/go-plotutils/internal/metafile"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func portableParams() config.Params {
	p := config.DefaultParams()
	p.MetaPortable = true
	return p
}

// record draws with draw on a portable metafile device.
func record(t *testing.T, draw func(p *plot.Plotter) error) []byte {
	t.Helper()
	params := portableParams()
	var buf bytes.Buffer
	b, err := device.New("meta", &buf, &params)
	if err != nil {
		t.Fatalf("device.New(meta) failed: %v", err)
	}
	p := plot.New(b)
	if err := draw(p); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	return buf.Bytes()
}

// replay plays a metafile on the named output type.
func replay(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	params := portableParams()
	var out bytes.Buffer
	b, err := device.New(name, &out, &params)
	if err != nil {
		t.Fatalf("device.New(%s) failed: %v", name, err)
	}
	p := plot.New(b)
	if err := metafile.NewPlayer(p, nil).PlayAll(metafile.NewDecoder(bytes.NewReader(data))); err != nil {
		t.Fatalf("replay on %s failed: %v", name, err)
	}
	if err := p.Finish(); err != nil {
		t.Fatalf("Finish on %s failed: %v", name, err)
	}
	return out.Bytes()
}

func drawing(p *plot.Plotter) error {
	steps := []func() error{
		p.Open,
		func() error { return p.Space(0, 0, 100, 100) },
		func() error { return p.PenColorName("blue") },
		func() error { return p.FillColorName("yellow") },
		func() error { return p.FillType(1) },
		func() error { return p.Box(10, 10, 40, 40) },
		func() error { return p.LineMod(plot.LineDotDashed) },
		func() error { return p.Circle(70, 70, 20) },
		func() error { return p.LineWidth(2) },
		func() error { return p.Line(0, 100, 100, 0) },
		func() error { return p.Bezier3(0, 0, 30, 90, 60, -40, 100, 50) },
		func() error { return p.Marker(50, 50, 3, 5) },
		func() error { return p.Move(50, 90) },
		func() error { return p.ALabel(plot.AlignCenter, plot.AlignBaseline, "integration") },
		p.Close,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func TestReplayOnEveryOutputType(t *testing.T) {
	data := record(t, drawing)
	if !strings.HasPrefix(string(data), metafile.PortableHeader) {
		t.Fatalf("metafile does not start with the portable header: %q", data[:16])
	}

	for _, name := range device.Names() {
		if device.Windowed(name) {
			continue
		}
		t.Run(name, func(t *testing.T) {
			out := replay(t, name, data)
			if len(out) == 0 {
				t.Errorf("%s wrote nothing", name)
			}
		})
	}
}

// TestMetafileReplayIsStable checks that replaying a metafile onto the
// metafile device settles after one generation.
func TestMetafileReplayIsStable(t *testing.T) {
	gen1 := record(t, drawing)
	gen2 := replay(t, "meta", gen1)
	gen3 := replay(t, "meta", gen2)
	if !bytes.Equal(gen2, gen3) {
		t.Errorf("replay is not stable:\n%s\n---\n%s", gen2, gen3)
	}
}

func TestGraphThroughMetafile(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 4}, {X: 3, Y: 9}}
	opts := graph.DefaultOptions()
	opts.Title = "squares"
	opts.Symbol = 4
	data := record(t, func(p *plot.Plotter) error {
		if err := p.Open(); err != nil {
			return err
		}
		if err := graph.New(opts, nil).Draw(p, pts); err != nil {
			return err
		}
		return p.Close()
	})
	if !strings.Contains(string(data), "squares") {
		t.Error("title missing from metafile")
	}
	if out := replay(t, "svg", data); !bytes.Contains(out, []byte("squares")) {
		t.Error("title missing from SVG")
	}
}

func TestLuaThroughMetafile(t *testing.T) {
	cfg := lua.DefaultConfig()
	cfg.Stdout = nil
	runtime, err := lua.New(cfg)
	if err != nil {
		t.Fatalf("lua.New failed: %v", err)
	}
	defer runtime.Close()

	data := record(t, func(p *plot.Plotter) error {
		if _, err := lua.NewBindings(runtime, p, nil); err != nil {
			return err
		}
		_, err := runtime.ExecuteString("script", `
			plot.openpl()
			plot.fspace(0, 0, 1, 1)
			plot.pencolorname("red")
			for i = 0, 9 do
				plot.fline(0, i / 10, 1, i / 10)
			end
			plot.closepl()
		`)
		return err
	})
	if out := replay(t, "hpgl", data); !bytes.Contains(out, []byte("PD")) {
		t.Errorf("no pen-down in HP-GL output: %q", out)
	}
}
