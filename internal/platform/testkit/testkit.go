// Package testkit provides testing helpers
package testkit

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// Epoch is the fixed instant fixtures are expressed against
var Epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// At returns Epoch shifted by d, for readable timestamp fixtures
func At(d time.Duration) time.Time { return Epoch.Add(d) }

// MustPanic asserts that fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain asserts that haystack contains needle. If not, the haystack is dumped to a temp file
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		tmpfile := filepath.Join(t.TempDir(), "output.txt")
		_ = os.WriteFile(tmpfile, []byte(haystack), 0o600)
		t.Fatalf("expected output to contain %q\n\nfull output written to %s", needle, tmpfile)
	}
}

// MustEqualSlice asserts got and want hold the same elements in the same order
func MustEqualSlice[T comparable](t *testing.T, got, want []T) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("slice mismatch\n got: %v\nwant: %v", got, want)
	}
}
