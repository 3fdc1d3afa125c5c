// Package hooking lets observers attach to the lifecycle of engines and
// adapters.
package hooking

import "sync"

// HookPos names a point in the lifecycle of a domain where hooks fire.
type HookPos struct {
	Name string
}

// HookCtx describes one firing of a hook.
type HookCtx struct {
	// Domain raised the hook.
	Domain Hookable

	Pos *HookPos

	// Item is the subject of the hook, such as the simulations of a run.
	Item any

	// Detail is optional and depends on Pos.
	Detail any
}

// Hookable is implemented by everything observers can attach to.
type Hookable interface {
	// AcceptHook registers a hook for the lifetime of the domain.
	AcceptHook(hook Hook)

	NumHooks() int

	// InvokeHook calls every registered hook in registration order.
	InvokeHook(ctx HookCtx)
}

// Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a function to a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase is embedded by types implementing Hookable. Hooks may be
// registered while other goroutines invoke them.
type HookableBase struct {
	lock  sync.RWMutex
	hooks []Hook
}

// NewHookableBase creates a HookableBase without hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return len(h.hooks)
}

// AcceptHook registers hook. Registering the same hook twice panics; HookFunc
// values cannot be compared and are always accepted.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, isFunc := hook.(HookFunc); !isFunc {
		for _, registered := range h.hooks {
			if registered == hook {
				panic("hook registered twice")
			}
		}
	}

	h.hooks = append(h.hooks, hook)
}

// InvokeHook calls the hooks registered when it starts.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	h.lock.RLock()
	hooks := h.hooks
	h.lock.RUnlock()

	for _, hook := range hooks {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
