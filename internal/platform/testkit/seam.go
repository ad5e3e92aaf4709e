package testkit

import (
	"sync"
	"testing"
)

// seams is held by every test that replaces package state
var seams sync.Mutex

// Swap points *target at v until t finishes
func Swap[T any](t testing.TB, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds the seam lock until t finishes
// Tests that Swap shared package variables take it first
func Serial(t testing.TB) {
	t.Helper()
	seams.Lock()
	t.Cleanup(seams.Unlock)
}
