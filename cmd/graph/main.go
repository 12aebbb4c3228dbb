// Command graph reads x y pairs and plots them in a ticked, labelled frame.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/opd-ai/go-plotutils/internal/cli"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/internal/graph"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

const prog = "graph"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// rangeFlag parses "lo,hi".
type rangeFlag struct{ r *graph.Range }

func (f rangeFlag) String() string {
	if f.r == nil || !f.r.Set {
		return ""
	}
	return fmt.Sprintf("%g,%g", f.r.Min, f.r.Max)
}

func (f rangeFlag) Set(v string) error {
	lo, hi, ok := strings.Cut(v, ",")
	if !ok {
		return fmt.Errorf("%q is not lo,hi", v)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return err
	}
	*f.r = graph.Range{Min: a, Max: b, Set: true}
	return nil
}

// symbolFlag parses "type" or "type,size".
type symbolFlag struct{ o *graph.Options }

func (f symbolFlag) String() string {
	if f.o == nil {
		return ""
	}
	return strconv.Itoa(f.o.Symbol)
}

func (f symbolFlag) Set(v string) error {
	typ, size, hasSize := strings.Cut(v, ",")
	n, err := strconv.Atoi(strings.TrimSpace(typ))
	if err != nil {
		return err
	}
	f.o.Symbol = n
	if hasSize {
		s, err := strconv.ParseFloat(strings.TrimSpace(size), 64)
		if err != nil {
			return err
		}
		f.o.SymbolSize = s
	}
	return nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// joinPairs rewrites the traditional "-x lo hi" and "-S type size" forms
// into the single flag values the flag package reads.
func joinPairs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		name := strings.TrimLeft(a, "-")
		switch {
		case (name == "x" || name == "y") && i+2 < len(args) && isNumber(args[i+1]) && isNumber(args[i+2]):
			out = append(out, a, args[i+1]+","+args[i+2])
			i += 2
		case name == "S" && i+2 < len(args) && isNumber(args[i+1]) && isNumber(args[i+2]):
			out = append(out, a, args[i+1]+","+args[i+2])
			i += 2
		default:
			out = append(out, a)
		}
	}
	return out
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli.Common
	opts := graph.DefaultOptions()
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] [file...]\n", prog)
		fs.PrintDefaults()
	}
	c.Register(fs, "meta")
	fs.IntVar(&opts.LineMode, "m", opts.LineMode, "line `mode`: 0 none, 1 solid, 2-5 dotted to long-dashed")
	fs.Var(symbolFlag{&opts}, "S", "draw marker `type[ size]` at each point")
	fs.Var(rangeFlag{&opts.X}, "x", "x axis range `lo hi`")
	fs.Var(rangeFlag{&opts.Y}, "y", "y axis range `lo hi`")
	fs.StringVar(&opts.Title, "L", "", "plot `title`")
	fs.StringVar(&opts.FontName, "F", opts.FontName, "label `font`")
	fs.IntVar(&opts.MaxTicks, "ticks", opts.MaxTicks, "at most `n` tick intervals per axis")
	if err := fs.Parse(joinPairs(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if c.Version {
		fmt.Fprintf(stdout, "%s version %s\n", prog, cli.Version)
		return 0
	}

	log := c.Logger(stderr)
	stopProfile, err := c.StartProfile(log)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	defer stopProfile()
	warn := graph.NewWarner(log)
	pts, err := readAll(fs.Args(), stdin, warn)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	params, err := c.Params(log)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	s, err := c.Open(&params, stdout, log)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	ctx, stop := cli.SignalContext()
	defer stop()

	g := graph.New(opts, warn)
	err = s.Draw(ctx, func(_ context.Context, p *plot.Plotter) error {
		if err := p.Open(); err != nil {
			return err
		}
		if err := g.Draw(p, pts); err != nil {
			p.Close()
			return err
		}
		return p.Close()
	})
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	return 0
}

func readAll(files []string, stdin io.Reader, warn *graph.Warner) ([]geom.Point, error) {
	if len(files) == 0 {
		return graph.ReadPoints(stdin, warn)
	}
	var pts []geom.Point
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		more, err := graph.ReadPoints(f, warn)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		pts = append(pts, more...)
	}
	return pts, nil
}
