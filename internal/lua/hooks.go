package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"
)

// HookType identifies a script callback invoked by the front end.
type HookType int

const (
	// HookInvalid is returned by ParseHookType when parsing fails.
	HookInvalid HookType = iota

	// HookStartup runs once, before the first page is opened.
	HookStartup

	// HookPage runs once per page, between openpl and closepl. It receives
	// the page number.
	HookPage

	// HookShutdown runs once, after the last page is closed.
	HookShutdown
)

// HookPrefix starts the name of every hook function.
const HookPrefix = "plot_"

// String returns the hook name.
func (h HookType) String() string {
	switch h {
	case HookStartup:
		return "startup"
	case HookPage:
		return "page"
	case HookShutdown:
		return "shutdown"
	case HookInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// LuaFunctionName returns the global function implementing the hook.
func (h HookType) LuaFunctionName() string {
	return HookPrefix + h.String()
}

// ParseHookType parses a hook name.
func ParseHookType(s string) (HookType, error) {
	switch s {
	case "startup":
		return HookStartup, nil
	case "page":
		return HookPage, nil
	case "shutdown":
		return HookShutdown, nil
	default:
		return HookInvalid, fmt.Errorf("unknown hook type: %s", s)
	}
}

// HookManager tracks which hooks a script defines.
type HookManager struct {
	runtime *Runtime
	hooks   map[HookType]string
	mu      sync.RWMutex
}

// NewHookManager creates a HookManager for runtime.
func NewHookManager(runtime *Runtime) (*HookManager, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	return &HookManager{
		runtime: runtime,
		hooks:   make(map[HookType]string),
	}, nil
}

// RegisterHook binds hookType to the global function plot_<funcName>.
func (hm *HookManager) RegisterHook(hookType HookType, funcName string) error {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	fullName := HookPrefix + funcName
	fn := hm.runtime.GetGlobal(fullName)
	if fn == rt.NilValue {
		return fmt.Errorf("Lua function %s not found", fullName)
	}
	if fn.Type() != rt.FunctionType {
		return fmt.Errorf("%s is not a function (type: %v)", fullName, fn.Type())
	}

	hm.hooks[hookType] = funcName
	return nil
}

// UnregisterHook removes a hook registration.
func (hm *HookManager) UnregisterHook(hookType HookType) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	delete(hm.hooks, hookType)
}

// IsRegistered reports whether a hook is registered.
func (hm *HookManager) IsRegistered(hookType HookType) bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	_, ok := hm.hooks[hookType]
	return ok
}

// Call invokes the registered hook. Calling an unregistered hook does
// nothing.
func (hm *HookManager) Call(hookType HookType, args ...rt.Value) (rt.Value, error) {
	hm.mu.RLock()
	funcName, ok := hm.hooks[hookType]
	hm.mu.RUnlock()

	if !ok {
		return rt.NilValue, nil
	}

	result, err := hm.runtime.CallFunction(HookPrefix+funcName, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("hook %s execution failed: %w", hookType, err)
	}
	return result, nil
}

// AutoRegisterHooks registers every hook whose function the script
// defines and returns them.
func (hm *HookManager) AutoRegisterHooks() []HookType {
	var found []HookType
	for _, h := range []HookType{HookStartup, HookPage, HookShutdown} {
		fn := hm.runtime.GetGlobal(h.LuaFunctionName())
		if fn != rt.NilValue && fn.Type() == rt.FunctionType {
			found = append(found, h)
		}
	}

	hm.mu.Lock()
	for _, h := range found {
		hm.hooks[h] = h.String()
	}
	hm.mu.Unlock()

	return found
}

// Clear removes all hook registrations.
func (hm *HookManager) Clear() {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.hooks = make(map[HookType]string)
}
