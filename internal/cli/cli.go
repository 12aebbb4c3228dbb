// Package cli holds what the front ends share: the common flags, parameter
// loading, logging and the output session that owns a Plotter.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/device"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Version is the release of the tools. It can be overridden at build time:
//
//	go build -ldflags "-X github.com/opd-ai/go-plotutils/internal/cli.Version=x.y.z"
var Version = "0.1.0-dev"

// ErrTerminal is returned when binary output would go to a terminal.
var ErrTerminal = errors.New("refusing to write binary output to a terminal")

// settings collects repeated -param KEY=value flags.
type settings []string

func (s *settings) String() string { return strings.Join(*s, ",") }

func (s *settings) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("%q is not KEY=value", v)
	}
	*s = append(*s, v)
	return nil
}

// Common are the flags every front end accepts.
type Common struct {
	Type      string
	Output    string
	ParamFile string
	Settings  []string
	Debug     bool
	Version   bool
	Title     string

	CPUProfile string
	MemProfile string
}

// Register adds the common flags to fs. defType is the default output type.
func (c *Common) Register(fs *flag.FlagSet, defType string) {
	fs.StringVar(&c.Type, "T", defType, "output type: "+strings.Join(device.Names(), ", "))
	fs.StringVar(&c.Output, "o", "", "write output to `file` instead of standard output")
	fs.StringVar(&c.ParamFile, "params", "", "read plotter parameters from `file` (Lua, TOML, YAML or KEY value lines)")
	fs.Var((*settings)(&c.Settings), "param", "set a plotter parameter, as `KEY=value`; may be repeated")
	fs.BoolVar(&c.Debug, "debug", false, "log debug output")
	fs.BoolVar(&c.Version, "version", false, "print version and exit")
	fs.StringVar(&c.Title, "title", "", "window title for -T X")
	fs.StringVar(&c.CPUProfile, "cpuprofile", "", "write a CPU profile to `file`")
	fs.StringVar(&c.MemProfile, "memprofile", "", "write a heap profile to `file` on exit")
}

// StartProfile starts the profiles asked for with -cpuprofile and
// -memprofile. The returned stop function writes them; failures are
// logged.
func (c *Common) StartProfile(log plot.Logger) (stop func(), err error) {
	prof := NewProfiler(c.CPUProfile, c.MemProfile)
	if !prof.Enabled() {
		return func() {}, nil
	}
	if err := prof.Start(); err != nil {
		return nil, err
	}
	return func() {
		if err := prof.Stop(); err != nil {
			log.Warn("failed to write profile", "error", err)
		}
	}, nil
}

// Logger returns a text logger on w.
func (c *Common) Logger(w io.Writer) plot.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if c.Debug {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}
	}
	return plot.NewSlogAdapter(slog.New(slog.NewTextHandler(w, opts)))
}

// Params loads the plotter parameters: defaults, the environment, the
// parameter file and -param settings, in that order. Validation warnings
// go to log.
func (c *Common) Params(log plot.Logger) (config.Params, error) {
	p, result, err := config.Load(config.Sources{
		Lookup:   os.LookupEnv,
		File:     c.ParamFile,
		Settings: c.Settings,
	})
	if result != nil {
		for _, w := range result.Warnings {
			log.Warn("plotter parameter", "field", w.Field, "warning", w.Message)
		}
	}
	return p, err
}

// Session is one output: a device, the Plotter drawing on it and the file
// it writes.
type Session struct {
	Plotter *plot.Plotter
	backend plot.Backend
	closer  io.Closer
}

// Open creates the output session. Output goes to the -o file, or to
// stdout when none is given; binary output types refuse a terminal stdout.
func (c *Common) Open(params *config.Params, stdout io.Writer, log plot.Logger) (*Session, error) {
	var w io.Writer = stdout
	var closer io.Closer
	switch {
	case device.Windowed(c.Type):
	case c.Output != "":
		f, err := os.Create(c.Output)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	case device.Binary(c.Type, params) && isTerminal(stdout):
		return nil, fmt.Errorf("%w (-T %s); use -o or redirect", ErrTerminal, c.Type)
	}

	b, err := device.New(c.Type, w, params)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	if t, ok := b.(interface{ SetTitle(string) }); ok && c.Title != "" {
		t.SetTitle(c.Title)
	}
	return &Session{
		Plotter: plot.New(b, plot.WithLogger(log)),
		backend: b,
		closer:  closer,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether the device owns a window event loop.
func (s *Session) Interactive() bool {
	_, ok := s.backend.(device.Interactive)
	return ok
}

// Draw runs draw against the Plotter and finishes the output. An
// interactive device runs its event loop on the calling goroutine until
// the window closes or ctx is cancelled; the context passed to draw ends
// with the window.
func (s *Session) Draw(ctx context.Context, draw func(ctx context.Context, p *plot.Plotter) error) error {
	run := func(ctx context.Context) error {
		if err := draw(ctx, s.Plotter); err != nil {
			return err
		}
		if s.Plotter.IsOpen() {
			return s.Plotter.Flush()
		}
		return nil
	}
	var err error
	if w, ok := s.backend.(device.Interactive); ok {
		err = w.Run(ctx, run)
	} else {
		err = run(ctx)
	}
	if ferr := s.Plotter.Finish(); err == nil {
		err = ferr
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Watch draws once, then redraws whenever one of files changes, until ctx
// is cancelled or the window closes. Only interactive devices can be
// redrawn in place; redraw failures are logged and watching goes on.
func (s *Session) Watch(ctx context.Context, files []string, log plot.Logger, draw func(p *plot.Plotter) error) error {
	if !s.Interactive() {
		return fmt.Errorf("%w: watching needs an interactive output type", plot.ErrInvalidOperation)
	}
	changes := make(chan struct{}, 1)
	w, err := NewWatcher(files, 0, func() error {
		select {
		case changes <- struct{}{}:
		default:
		}
		return nil
	}, func(err error) {
		log.Warn("watching input", "error", err)
	})
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	return s.Draw(ctx, func(ctx context.Context, p *plot.Plotter) error {
		if err := draw(p); err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				log.Info("input changed, redrawing")
				if err := draw(p); err != nil {
					log.Warn("redraw failed", "error", err)
					if p.IsOpen() {
						p.Close()
					}
				}
			}
		}
	})
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Fail prints err prefixed with the program name and returns exit status 1.
func Fail(stderr io.Writer, prog string, err error) int {
	fmt.Fprintf(stderr, "%s: %v\n", prog, err)
	return 1
}
