package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// RepoPath resolves a path relative to the module root.
func RepoPath(t testing.TB, elem ...string) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve testutil source location")
	}
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return filepath.Join(append([]string{root}, elem...)...)
}
