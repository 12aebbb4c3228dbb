// Command plotlua runs a Lua script against a Plotter.
//
// The script sees the drawing operations as the plot module (plot.line,
// plot.pencolor, ...) and as pl_ globals. A script may draw directly with
// openpl and closepl, or define hook functions:
//
//	plot_startup()   called once after the script is loaded
//	plot_page(n)     called for pages 1..-pages, with page n open
//	plot_shutdown()  called once at the end
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-plotutils/internal/cli"
	"github.com/opd-ai/go-plotutils/internal/lua"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

const prog = "plotlua"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	cli.Common
	pages  int
	watch  bool
	cpu    uint64
	memory uint64
}

func run(args []string, stdout, stderr io.Writer) int {
	o := &options{}
	defaults := lua.DefaultConfig()
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] script.lua\n", prog)
		fs.PrintDefaults()
	}
	o.Register(fs, "meta")
	fs.IntVar(&o.pages, "pages", 1, "call plot_page for `n` pages")
	fs.BoolVar(&o.watch, "watch", false, "rerun the script when it changes (-T X only)")
	fs.Uint64Var(&o.cpu, "cpu-limit", defaults.CPULimit, "Lua instruction limit per call, 0 for none")
	fs.Uint64Var(&o.memory, "memory-limit", defaults.MemoryLimit, "Lua memory limit in bytes per call, 0 for none")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.Version {
		fmt.Fprintf(stdout, "%s version %s\n", prog, cli.Version)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if o.pages < 0 {
		return cli.Fail(stderr, prog, fmt.Errorf("page count %d is negative", o.pages))
	}
	script := fs.Arg(0)

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

	// print output goes with the log, never into the plot
	cfg := lua.RuntimeConfig{CPULimit: o.cpu, MemoryLimit: o.memory, Stdout: stderr}
	draw := func(p *plot.Plotter) error {
		return runScript(p, log, cfg, script, o.pages)
	}
	if o.watch {
		err = s.Watch(ctx, []string{script}, log, draw)
	} else {
		err = s.Draw(ctx, func(_ context.Context, p *plot.Plotter) error { return draw(p) })
	}
	if err != nil {
		return cli.Fail(stderr, prog, err)
	}
	return 0
}

// runScript runs script in a fresh runtime, then its hooks. A page the
// script leaves open is closed.
func runScript(p *plot.Plotter, log plot.Logger, cfg lua.RuntimeConfig, script string, pages int) error {
	runtime, err := lua.New(cfg)
	if err != nil {
		return err
	}
	defer runtime.Close()

	if _, err := lua.NewBindings(runtime, p, log); err != nil {
		return err
	}
	if _, err := runtime.ExecuteFile(script); err != nil {
		return err
	}

	hooks, err := lua.NewHookManager(runtime)
	if err != nil {
		return err
	}
	for _, h := range hooks.AutoRegisterHooks() {
		log.Debug("script hook", "hook", h.LuaFunctionName())
	}

	if _, err := hooks.Call(lua.HookStartup); err != nil {
		return err
	}
	if hooks.IsRegistered(lua.HookPage) {
		for n := 1; n <= pages; n++ {
			if err := drawPage(p, hooks, n); err != nil {
				return err
			}
		}
	}
	if _, err := hooks.Call(lua.HookShutdown); err != nil {
		return err
	}
	if p.IsOpen() {
		return p.Close()
	}
	return nil
}

func drawPage(p *plot.Plotter, hooks *lua.HookManager, n int) error {
	if p.IsOpen() {
		if err := p.Close(); err != nil {
			return err
		}
	}
	if err := p.Open(); err != nil {
		return err
	}
	if _, err := hooks.Call(lua.HookPage, rt.IntValue(int64(n))); err != nil {
		return err
	}
	if p.IsOpen() {
		return p.Close()
	}
	return nil
}
