package testsupport

import (
	"path/filepath"
	"testing"

	"drivesort/internal/history"
)

// MustOpenStore opens a history.Store backed by a per-test database and
// registers cleanup.
func MustOpenStore(t testing.TB) *history.Store {
	t.Helper()

	store, err := history.OpenPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.OpenPath: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
