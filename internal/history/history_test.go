package history

import (
	"context"
	"testing"
	"time"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreRequiresConnectionString(t *testing.T) {
	_, err := NewStore(SQLiteBackend, "")
	assert.Error(t, err)
}

func TestNewStoreRejectsUnsupportedBackend(t *testing.T) {
	_, err := NewStore(Backend("oracle"), "whatever")
	assert.Error(t, err)
}

func TestStoreRecordAndRecentByPackage(t *testing.T) {
	store, err := NewStore(SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	older := schema.ScanResult{
		Package: "yay-git",
		Score:   80,
		Tier:    schema.TierOK,
		Signals: []schema.Signal{{ID: "M-VOTES-ZERO"}},
		Duration: 5 * time.Millisecond,
	}
	require.NoError(t, store.Record(ctx, older))

	newer := schema.ScanResult{
		Package:  "yay-git",
		Score:    0,
		Tier:     schema.TierMalicious,
		Signals:  []schema.Signal{{ID: "SA-DIRECT-REMOTE-EXEC"}, {ID: "M-VOTES-ZERO"}},
		Duration: 8 * time.Millisecond,
	}
	require.NoError(t, store.Record(ctx, newer))

	require.NoError(t, store.Record(ctx, schema.ScanResult{Package: "other-pkg", Tier: schema.TierTrusted, Score: 100}))

	results, err := store.RecentByPackage(ctx, "yay-git", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "yay-git", results[0].Package)
	assert.Equal(t, schema.TierMalicious, results[0].Tier)
	assert.Equal(t, 0, results[0].Score)

	assert.Equal(t, schema.TierOK, results[1].Tier)
	assert.Equal(t, 80, results[1].Score)
}

func TestStoreRecordPersistsErrorAndAppliesLimit(t *testing.T) {
	store, err := NewStore(SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	for range 3 {
		require.NoError(t, store.Record(ctx, schema.ScanResult{Package: "flaky-pkg", Error: "timeout"}))
	}

	results, err := store.RecentByPackage(ctx, "flaky-pkg", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "timeout", results[0].Error)
}

func TestRecentByPackageEmptyForUnknownPackage(t *testing.T) {
	store, err := NewStore(SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	results, err := store.RecentByPackage(context.Background(), "never-scanned", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestParseBackend(t *testing.T) {
	cases := map[string]Backend{
		"sqlite":     SQLiteBackend,
		"SQLite":     SQLiteBackend,
		" mysql ":    MySQLBackend,
		"postgresql": PostgreSQLBackend,
	}
	for input, want := range cases {
		got, err := ParseBackend(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseBackend("oracle")
	assert.Error(t, err)
}

func TestMigrateRejectsSQLite(t *testing.T) {
	err := Migrate(SQLiteBackend, ":memory:", -1)
	assert.Error(t, err)
}
