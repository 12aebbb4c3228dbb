package tek

import (
	"errors"
	"io"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

var lineModes = map[LineType]string{
	Solid:       plot.LineSolid,
	Dotted:      plot.LineDotted,
	DotDashed:   plot.LineDotDashed,
	ShortDashed: plot.LineShortDashed,
	LongDashed:  plot.LineLongDashed,
}

// Play draws the events of d on p, opening a page first if p has none. The
// 4096x3120 screen is centered in a square user space so the aspect ratio
// survives any device. Every erase after the first drawing starts a new
// page. The last page is closed at the end of the stream.
func Play(d *Decoder, p *plot.Plotter) error {
	drawn := false
	begin := func() error {
		if p.IsOpen() {
			return nil
		}
		if err := p.Open(); err != nil {
			return err
		}
		margin := float64(Width-Height) / 2
		if err := p.Space(0, -margin, Width, Height+margin); err != nil {
			return err
		}
		return p.FontSize(float64(CharHeight[0]))
	}
	if err := begin(); err != nil {
		return err
	}
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			if p.IsOpen() {
				return p.Close()
			}
			return nil
		}
		if err != nil {
			return err
		}
		if ev.Kind == Erase {
			if drawn {
				if err := p.Close(); err != nil {
					return err
				}
				drawn = false
			}
			continue
		}
		if err := begin(); err != nil {
			return err
		}
		if err := playEvent(p, ev); err != nil {
			return err
		}
		switch ev.Kind {
		case Draw, Point, Text:
			drawn = true
		}
	}
}

func playEvent(p *plot.Plotter, ev Event) error {
	x, y := float64(ev.X), float64(ev.Y)
	switch ev.Kind {
	case Move:
		return p.Move(x, y)
	case Draw:
		return p.Cont(x, y)
	case Point:
		return p.Point(x, y)
	case Text:
		if err := p.Move(x, y); err != nil {
			return err
		}
		return p.ALabel(plot.AlignLeft, plot.AlignBaseline, ev.Text)
	case SetLineType:
		return p.LineMod(lineModes[ev.Line])
	case SetCharSize:
		return p.FontSize(float64(CharHeight[ev.Size]))
	case SetColor:
		return p.PenColor(colors.ANSI16[ev.Color])
	}
	return nil
}
