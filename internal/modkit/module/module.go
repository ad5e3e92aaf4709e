// Package module holds the module contract and the process-wide port registry
// used when binaries compose services
package module

import "sync"

// Module is what a service module exposes to composition code
type Module interface {
	Ports() any
	Name() string
}

var (
	regMu sync.RWMutex
	reg   = map[string]any{}
)

// Publish registers the ports of every module under its name; nil modules are skipped
// A later module with the same name replaces the earlier one
func Publish(ms ...Module) {
	regMu.Lock()
	defer regMu.Unlock()
	for _, m := range ms {
		if m == nil {
			continue
		}
		reg[m.Name()] = m.Ports()
	}
}

// Published returns the ports registered for name as T
// ok is false when nothing is registered or the ports are not a T
func Published[T any](name string) (T, bool) {
	regMu.RLock()
	v, found := reg[name]
	regMu.RUnlock()
	out, ok := v.(T)
	return out, found && ok
}

// MustPublished is Published that panics naming the module
func MustPublished[T any](name string) T {
	v, ok := Published[T](name)
	if !ok {
		panic("module: " + name + " is not published with the requested ports type")
	}
	return v
}

// Unpublish clears the registry
func Unpublish() {
	regMu.Lock()
	reg = map[string]any{}
	regMu.Unlock()
}
