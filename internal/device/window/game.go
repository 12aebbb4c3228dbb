package window

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// whiteSubImage is the texture of every shape; vertices sample its center.
var whiteSubImage = sync.OnceValue(func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
})

var (
	facesMu sync.Mutex
	faces   = make(map[plot.FontFace]*text.GoTextFaceSource)
)

func faceSource(f plot.FontFace) (*text.GoTextFaceSource, error) {
	facesMu.Lock()
	defer facesMu.Unlock()
	if src, ok := faces[f]; ok {
		return src, nil
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(f.TTF()))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s font: %w", f.Style, err)
	}
	faces[f] = src
	return src, nil
}

// game replays the display list of a Device.
type game struct {
	d    *Device
	ctx  context.Context
	errc <-chan error
	done bool
}

// Update implements ebiten.Game. It ends the loop when the context is
// cancelled or plotting fails; a finished plot stays on screen until the
// window is closed.
func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}
	if g.done {
		return nil
	}
	select {
	case err := <-g.errc:
		g.done = true
		return err
	default:
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	g.d.mu.RLock()
	defer g.d.mu.RUnlock()

	screen.Fill(g.d.background)
	for _, it := range g.d.items {
		switch {
		case it.shape != nil:
			screen.DrawTriangles(it.shape.vertices, it.shape.indices, whiteSubImage(), &ebiten.DrawTrianglesOptions{
				AntiAlias: true,
				FillRule:  it.shape.rule,
			})
		case it.label != nil:
			drawLabel(screen, it.label)
		}
	}
}

func drawLabel(screen *ebiten.Image, l *label) {
	src, err := faceSource(l.face)
	if err != nil {
		return
	}
	op := &text.DrawOptions{}
	op.PrimaryAlign = l.h
	op.GeoM.Translate(0, l.dy)
	op.GeoM.Rotate(l.angle)
	op.GeoM.Translate(l.x, l.y)
	op.ColorScale.ScaleWithColor(l.color)
	text.Draw(screen, l.text, &text.GoTextFace{Source: src, Size: l.size}, op)
}

// Layout implements ebiten.Game. The picture keeps its size and is scaled
// to the window.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.d.width, g.d.height
}

// Run opens the window and calls draw on a separate goroutine, since the
// game loop must own the calling goroutine. It returns when the window is
// closed, ctx is cancelled or draw fails; the context passed to draw is
// cancelled then, and Run waits for draw to return.
func (d *Device) Run(ctx context.Context, draw func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		errc <- draw(ctx)
	}()

	d.mu.RLock()
	ebiten.SetWindowSize(d.width, d.height)
	ebiten.SetWindowTitle(d.title)
	d.mu.RUnlock()
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(&game{d: d, ctx: ctx, errc: errc})
	cancel()
	<-finished
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
