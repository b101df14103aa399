package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a migrated in-memory database with a fixed clock.
func NewTestDB(t *testing.T, now time.Time) *DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err, "failed to create test database")
	db.now = func() time.Time { return now }

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpenCreatesTables(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"visitors", "messages", "documents"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	assert.NoError(t, db.Migrate(context.Background()), "migrations must be repeatable")
}
