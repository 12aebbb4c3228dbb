package lua

import (
	"testing"

	rt "github.com/arnodel/golua/runtime"
)

func TestHookTypeNames(t *testing.T) {
	tests := []struct {
		hookType HookType
		name     string
		function string
	}{
		{HookStartup, "startup", "plot_startup"},
		{HookPage, "page", "plot_page"},
		{HookShutdown, "shutdown", "plot_shutdown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hookType.String(); got != tt.name {
				t.Errorf("expected %q, got %q", tt.name, got)
			}
			if got := tt.hookType.LuaFunctionName(); got != tt.function {
				t.Errorf("expected %q, got %q", tt.function, got)
			}
			parsed, err := ParseHookType(tt.name)
			if err != nil || parsed != tt.hookType {
				t.Errorf("ParseHookType(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}

	if HookType(99).String() != "unknown" {
		t.Error("expected unknown for an out of range hook")
	}
	if h, err := ParseHookType("draw"); err == nil || h != HookInvalid {
		t.Errorf("expected HookInvalid and an error, got %v, %v", h, err)
	}
}

func TestNewHookManagerNilRuntime(t *testing.T) {
	if _, err := NewHookManager(nil); err != ErrNilRuntime {
		t.Errorf("expected ErrNilRuntime, got %v", err)
	}
}

func TestRegisterHook(t *testing.T) {
	runtime := newRuntime(t)
	hm, err := NewHookManager(runtime)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := runtime.ExecuteString("setup", "function plot_page(n) end\nplot_shutdown = 3"); err != nil {
		t.Fatal(err)
	}

	if err := hm.RegisterHook(HookPage, "page"); err != nil {
		t.Errorf("RegisterHook() error = %v", err)
	}
	if !hm.IsRegistered(HookPage) {
		t.Error("expected page hook to be registered")
	}
	if err := hm.RegisterHook(HookStartup, "startup"); err == nil {
		t.Error("expected error for a missing function")
	}
	if err := hm.RegisterHook(HookShutdown, "shutdown"); err == nil {
		t.Error("expected error for a non-function global")
	}

	hm.UnregisterHook(HookPage)
	if hm.IsRegistered(HookPage) {
		t.Error("expected page hook to be unregistered")
	}
}

func TestAutoRegisterAndCall(t *testing.T) {
	runtime := newRuntime(t)
	hm, err := NewHookManager(runtime)
	if err != nil {
		t.Fatal(err)
	}

	_, err = runtime.ExecuteString("setup", `
		pages = 0
		function plot_startup() started = true end
		function plot_page(n) pages = pages + n end
	`)
	if err != nil {
		t.Fatal(err)
	}

	found := hm.AutoRegisterHooks()
	if len(found) != 2 || found[0] != HookStartup || found[1] != HookPage {
		t.Fatalf("unexpected hooks %v", found)
	}

	if _, err := hm.Call(HookStartup); err != nil {
		t.Fatalf("Call(startup) error = %v", err)
	}
	for n := int64(1); n <= 3; n++ {
		if _, err := hm.Call(HookPage, rt.IntValue(n)); err != nil {
			t.Fatalf("Call(page) error = %v", err)
		}
	}
	if _, err := hm.Call(HookShutdown); err != nil {
		t.Errorf("calling an unregistered hook should be a no-op, got %v", err)
	}

	if got, ok := rt.ToInt(runtime.GetGlobal("pages")); !ok || got != 6 {
		t.Errorf("expected pages 6, got %v", runtime.GetGlobal("pages"))
	}
	if !runtime.GetGlobal("started").AsBool() {
		t.Error("expected startup hook to run")
	}

	hm.Clear()
	if hm.IsRegistered(HookStartup) {
		t.Error("expected hooks to be cleared")
	}
}

func TestCallPropagatesErrors(t *testing.T) {
	runtime := newRuntime(t)
	hm, _ := NewHookManager(runtime)
	if _, err := runtime.ExecuteString("setup", `function plot_page() error("bad page") end`); err != nil {
		t.Fatal(err)
	}
	hm.AutoRegisterHooks()
	if _, err := hm.Call(HookPage); err == nil {
		t.Error("expected hook error")
	}
}
