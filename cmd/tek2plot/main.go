// Command tek2plot draws Tektronix 4014 byte streams, such as the output of
// -T tek or of old terminal graphics programs, on any output type.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/go-plotutils/internal/cli"
	"github.com/opd-ai/go-plotutils/internal/tek"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

const prog = "tek2plot"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli.Common
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] [file...]\n", prog)
		fs.PrintDefaults()
	}
	c.Register(fs, "meta")
	if err := fs.Parse(args); err != nil {
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

	files := fs.Args()
	err = s.Draw(ctx, func(_ context.Context, p *plot.Plotter) error {
		if len(files) == 0 {
			return tek.Play(tek.NewDecoder(stdin), p)
		}
		for _, name := range files {
			if err := playFile(p, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	return 0
}

func playFile(p *plot.Plotter, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := tek.Play(tek.NewDecoder(f), p); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
