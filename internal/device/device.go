// Package device maps output type names, as given to the -T option of the
// front ends, onto backends.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device/fig"
	"github.com/opd-ai/go-plotutils/internal/device/hpgl"
	"github.com/opd-ai/go-plotutils/internal/device/meta"
	"github.com/opd-ai/go-plotutils/internal/device/ps"
	"github.com/opd-ai/go-plotutils/internal/device/raster"
	"github.com/opd-ai/go-plotutils/internal/device/svgdev"
	"github.com/opd-ai/go-plotutils/internal/device/tektronix"
	"github.com/opd-ai/go-plotutils/internal/device/window"
	"github.com/opd-ai/go-plotutils/internal/device/xdraw"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// ErrUnknownDevice is returned for an output type that is not registered.
var ErrUnknownDevice = errors.New("unknown output type")

// Interactive is implemented by devices that own a window and must run
// their event loop on the calling goroutine while draw plots. The context
// passed to draw is cancelled when the window closes.
type Interactive interface {
	Run(ctx context.Context, draw func(ctx context.Context) error) error
}

var _ Interactive = (*window.Device)(nil)

type constructor func(w io.Writer, params *config.Params) (plot.Backend, error)

func rasterOf(f raster.Format) constructor {
	return func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return raster.New(w, f, params)
	}
}

var registry = map[string]constructor{
	"meta": func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return meta.New(w, params), nil
	},
	"ps": func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return ps.New(w, params)
	},
	"hpgl": func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return hpgl.New(w, params)
	},
	"fig": func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return fig.New(w, params)
	},
	"tek": func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return tektronix.New(w, params), nil
	},
	"svg": func(w io.Writer, params *config.Params) (plot.Backend, error) {
		return svgdev.New(w, params)
	},
	"png":  rasterOf(raster.PNG),
	"gif":  rasterOf(raster.GIF),
	"bmp":  rasterOf(raster.BMP),
	"tiff": rasterOf(raster.TIFF),
	"pnm":  rasterOf(raster.PNM),
	"xdrawable": func(_ io.Writer, params *config.Params) (plot.Backend, error) {
		return xdraw.Open(params)
	},
	"X": func(_ io.Writer, params *config.Params) (plot.Backend, error) {
		return window.New(params)
	},
}

// New returns the backend for an output type. Devices that write a file
// write it to w; the X devices ignore it. A nil params uses the defaults.
func New(name string, w io.Writer, params *config.Params) (plot.Backend, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDevice, name)
	}
	if params == nil {
		p := config.DefaultParams()
		params = &p
	}
	return c(w, params)
}

// Names returns the registered output types in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Binary reports whether an output type writes data that should not be
// sent to a terminal.
func Binary(name string, params *config.Params) bool {
	switch name {
	case "png", "gif", "bmp", "tiff", "pnm":
		return true
	case "meta":
		return params == nil || !params.MetaPortable
	}
	return false
}

// Windowed reports whether an output type draws on the display rather
// than writing a file.
func Windowed(name string) bool {
	return name == "X" || name == "xdrawable"
}
