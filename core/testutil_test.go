package core

import (
	"testing"

	"github.com/pkgguard/pkgguard/internal/patterns"
	"github.com/stretchr/testify/require"
)

// testStore loads the real embedded pattern database, shared by tests that
// need a Registry but are not exercising pattern content directly.
func testStore(t *testing.T) *patterns.Store {
	t.Helper()
	store, err := patterns.Load()
	require.NoError(t, err)
	return store
}
