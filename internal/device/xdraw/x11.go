package xdraw

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
)

// display is a server backed by an X connection. It caches the pixel
// values it has allocated.
type display struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	drawable xproto.Drawable
	gc       xproto.Gcontext
	cmap     xproto.Colormap
	width    int
	height   int
	pixels   map[colors.RGB]uint32
}

func dial(params *config.Params) (*display, error) {
	conn, err := xgb.NewConnDisplay(params.Display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display %q: %w", params.Display, err)
	}
	x := &display{conn: conn, pixels: make(map[colors.RGB]uint32)}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	x.cmap = screen.DefaultColormap

	if params.XDrawableWindow != 0 {
		err = x.attach(xproto.Drawable(params.XDrawableWindow))
	} else {
		err = x.createWindow(screen, params)
	}
	if err != nil {
		conn.Close()
		return nil, err
	}

	x.gc, err = xproto.NewGcontextId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = xproto.CreateGCChecked(conn, x.gc, x.drawable,
		xproto.GcForeground|xproto.GcGraphicsExposures,
		[]uint32{screen.BlackPixel, 0}).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create graphics context: %w", err)
	}
	return x, nil
}

// attach draws on an existing window or pixmap.
func (x *display) attach(d xproto.Drawable) error {
	geo, err := xproto.GetGeometry(x.conn, d).Reply()
	if err != nil {
		return fmt.Errorf("XDRAWABLE_WINDOW %#x: %w", uint32(d), err)
	}
	x.drawable = d
	x.width, x.height = int(geo.Width), int(geo.Height)
	return nil
}

// createWindow maps a new top-level window with backing store, so the
// picture survives being covered, and waits until it is visible.
func (x *display) createWindow(screen *xproto.ScreenInfo, params *config.Params) error {
	size := params.BitmapSize
	if size == "" {
		size = config.DefaultBitmapSize
	}
	w, h, err := config.ParseBitmapSize(size)
	if err != nil {
		return fmt.Errorf("BITMAPSIZE: %w", err)
	}
	win, err := xproto.NewWindowId(x.conn)
	if err != nil {
		return err
	}
	err = xproto.CreateWindowChecked(x.conn, screen.RootDepth, win, screen.Root,
		0, 0, clampU16(w), clampU16(h), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwBackingStore|xproto.CwEventMask,
		[]uint32{screen.WhitePixel, xproto.BackingStoreAlways, xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	xproto.MapWindow(x.conn, win)
	for {
		ev, xerr := x.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return fmt.Errorf("X connection closed")
		}
		if _, ok := ev.(xproto.MapNotifyEvent); ok {
			break
		}
	}
	x.drawable = xproto.Drawable(win)
	x.width, x.height = w, h
	return nil
}

func (x *display) Size() (int, int) {
	return x.width, x.height
}

func (x *display) Pixel(c colors.RGB) (uint32, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if p, ok := x.pixels[c]; ok {
		return p, nil
	}
	reply, err := xproto.AllocColor(x.conn, x.cmap, c.R, c.G, c.B).Reply()
	if err != nil {
		return 0, fmt.Errorf("allocate color %s: %w", c.Hex(), err)
	}
	x.pixels[c] = reply.Pixel
	return reply.Pixel, nil
}

func (x *display) SetGC(g gcValues) error {
	mask := uint32(xproto.GcForeground | xproto.GcLineWidth | xproto.GcLineStyle |
		xproto.GcCapStyle | xproto.GcJoinStyle | xproto.GcFillRule)
	xproto.ChangeGC(x.conn, x.gc, mask,
		[]uint32{g.Foreground, g.LineWidth, g.LineStyle, g.Cap, g.Join, g.FillRule})
	return nil
}

func (x *display) SetDashes(offset uint16, dashes []byte) error {
	xproto.SetDashes(x.conn, x.gc, offset, uint16(len(dashes)), dashes)
	return nil
}

func (x *display) PolyLine(pts []xproto.Point) error {
	xproto.PolyLine(x.conn, xproto.CoordModeOrigin, x.drawable, x.gc, pts)
	return nil
}

func (x *display) FillPoly(pts []xproto.Point) error {
	xproto.FillPoly(x.conn, x.drawable, x.gc, xproto.PolyShapeComplex, xproto.CoordModeOrigin, pts)
	return nil
}

func (x *display) PolyArc(arcs []xproto.Arc, fill bool) error {
	if fill {
		xproto.PolyFillArc(x.conn, x.drawable, x.gc, arcs)
	} else {
		xproto.PolyArc(x.conn, x.drawable, x.gc, arcs)
	}
	return nil
}

func (x *display) PolyPoint(pts []xproto.Point) error {
	xproto.PolyPoint(x.conn, xproto.CoordModeOrigin, x.drawable, x.gc, pts)
	return nil
}

func (x *display) FillRect(r xproto.Rectangle) error {
	xproto.PolyFillRectangle(x.conn, x.drawable, x.gc, []xproto.Rectangle{r})
	return nil
}

// Sync makes a round trip, so every request sent so far has been
// processed and any error it caused has been reported.
func (x *display) Sync() error {
	_, err := xproto.GetInputFocus(x.conn).Reply()
	return err
}

func (x *display) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.conn != nil {
		xproto.FreeGC(x.conn, x.gc)
		x.conn.Close()
		x.conn = nil
	}
}
