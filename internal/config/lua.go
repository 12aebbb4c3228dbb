package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaParamsParser runs Lua parameter files. A file assigns fields of the
// plot.params table, using lowercase parameter names:
//
//	plot.params = { pagesize = "a4", bg_color = "black", rotation = 90 }
type LuaParamsParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaParamsParser creates a parser with a fresh Lua runtime.
func NewLuaParamsParser() (*LuaParamsParser, error) {
	return NewLuaParamsParserWithOutput(io.Discard)
}

// NewLuaParamsParserWithOutput creates a parser whose print output goes
// to stdout.
func NewLuaParamsParserWithOutput(stdout io.Writer) (*LuaParamsParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)
	return &LuaParamsParser{runtime: runtime, cleanup: cleanup}, nil
}

// Parse executes content and applies plot.params to p.
func (lp *LuaParamsParser) Parse(content []byte, p *Params) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.initPlotGlobal()

	closure, err := lp.runtime.CompileAndLoadLuaChunk(
		"params",
		content,
		rt.TableValue(lp.runtime.GlobalEnv()),
	)
	if err != nil {
		return fmt.Errorf("failed to compile Lua parameters: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024,
		},
	}
	lp.runtime.PushContext(ctx)
	defer lp.runtime.PopContext()

	if _, err := rt.Call1(lp.runtime.MainThread(), rt.FunctionValue(closure)); err != nil {
		return fmt.Errorf("failed to execute Lua parameters: %w", err)
	}
	return lp.extract(p)
}

func (lp *LuaParamsParser) initPlotGlobal() {
	plotTable := rt.NewTable()
	plotTable.Set(rt.StringValue("params"), rt.TableValue(rt.NewTable()))
	lp.runtime.GlobalEnv().Set(rt.StringValue("plot"), rt.TableValue(plotTable))
}

func (lp *LuaParamsParser) extract(p *Params) error {
	plotVal := lp.runtime.GlobalEnv().Get(rt.StringValue("plot"))
	if plotVal == rt.NilValue {
		return nil
	}
	plotTable, ok := plotVal.TryTable()
	if !ok {
		return fmt.Errorf("plot is not a table")
	}
	paramsVal := plotTable.Get(rt.StringValue("params"))
	if paramsVal == rt.NilValue {
		return nil
	}
	table, ok := paramsVal.TryTable()
	if !ok {
		return fmt.Errorf("plot.params is not a table")
	}
	for _, pp := range params {
		v, ok := tableString(table, strings.ToLower(pp.name))
		if !ok {
			continue
		}
		if err := p.Set(pp.name, v); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the Lua runtime.
func (lp *LuaParamsParser) Close() error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.cleanup != nil {
		lp.cleanup()
		lp.cleanup = nil
	}
	return nil
}

// tableString returns the string form of a table field of any scalar type.
func tableString(table *rt.Table, key string) (string, bool) {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return "", false
	}
	if b, ok := val.TryBool(); ok {
		return FormatBool(b), true
	}
	if n, ok := val.TryInt(); ok {
		return strconv.FormatInt(n, 10), true
	}
	if f, ok := val.TryFloat(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
	if s, ok := val.TryString(); ok {
		return s, true
	}
	return "", false
}
