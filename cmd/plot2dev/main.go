// Command plot2dev replays GNU and traditional plot(5) metafiles on any
// output type.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/go-plotutils/internal/cli"
	"github.com/opd-ai/go-plotutils/internal/metafile"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

const prog = "plot2dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	cli.Common
	page     int
	watch    bool
	portable bool
	int16    bool
	little   bool
	big      bool
}

func parse(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{}
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] [file...]\n", prog)
		fs.PrintDefaults()
	}
	o.Register(fs, "meta")
	fs.IntVar(&o.page, "p", 0, "play only page `n` (counting from 1)")
	fs.BoolVar(&o.watch, "watch", false, "redraw when an input file changes (-T X only)")
	fs.BoolVar(&o.portable, "portable", false, "write portable (ASCII) metafile output")
	fs.BoolVar(&o.int16, "int16", false, "read input as traditional plot(5) 16-bit metafiles")
	fs.BoolVar(&o.little, "le", false, "binary input numbers are little-endian")
	fs.BoolVar(&o.big, "be", false, "binary input numbers are big-endian")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if o.little && o.big {
		return nil, nil, errors.New("-le and -be are exclusive")
	}
	if o.page < 0 {
		return nil, nil, fmt.Errorf("page number %d is negative", o.page)
	}
	if o.portable {
		o.Settings = append(o.Settings, "META_PORTABLE=yes")
	}
	return o, fs.Args(), nil
}

func (o *options) decoderOptions() []metafile.Option {
	var opts []metafile.Option
	if o.int16 {
		opts = append(opts, metafile.WithFormat(metafile.Traditional))
	}
	if o.big {
		opts = append(opts, metafile.WithByteOrder(binary.BigEndian))
	}
	return opts
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, files, err := parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if o.Version {
		fmt.Fprintf(stdout, "%s version %s\n", prog, cli.Version)
		return 0
	}
	if o.watch && len(files) == 0 {
		return cli.Fail(stderr, prog, errors.New("-watch needs input files"))
	}

	log := o.Logger(stderr)
	stopProfile, err := o.StartProfile(log)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	defer stopProfile()
	params, err := o.Params(log)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	s, err := o.Open(&params, stdout, log)
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	draw := func(p *plot.Plotter) error {
		return replay(p, log, o, files, stdin)
	}
	if o.watch {
		err = s.Watch(ctx, files, log, draw)
	} else {
		err = s.Draw(ctx, func(_ context.Context, p *plot.Plotter) error { return draw(p) })
	}
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	return 0
}

// replay plays every file in turn, or stdin when there are none. Pages are
// counted across files.
func replay(p *plot.Plotter, log plot.Logger, o *options, files []string, stdin io.Reader) error {
	pl := metafile.NewPlayer(p, log)
	pl.Page = o.page
	if len(files) == 0 {
		return pl.PlayAll(metafile.NewDecoder(stdin, o.decoderOptions()...))
	}
	for _, name := range files {
		if err := playFile(pl, name, stdin, o.decoderOptions()); err != nil {
			return err
		}
	}
	return nil
}

func playFile(pl *metafile.Player, name string, stdin io.Reader, opts []metafile.Option) error {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := pl.PlayAll(metafile.NewDecoder(r, opts...)); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
