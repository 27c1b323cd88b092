package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "nested", name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, table string) bool {
	t.Helper()
	var count int
	err := db.Conn().QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestNew_CreatesDirectoryAndDefaultsProfile(t *testing.T) {
	db := newTestDB(t, "scratch", "")

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "scratch", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
	assert.FileExists(t, db.Path())
}

func TestBuildConnectionString(t *testing.T) {
	ledger := buildConnectionString("/data/ledger.db", ProfileLedger)
	assert.Contains(t, ledger, "/data/ledger.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, ledger, "&_pragma=synchronous(FULL)")
	assert.NotContains(t, ledger, "synchronous(NORMAL)")

	standard := buildConnectionString("/data/portfolio.db", ProfileStandard)
	assert.Contains(t, standard, "&_pragma=synchronous(NORMAL)")
	assert.Contains(t, standard, "&_pragma=foreign_keys(1)")
}

func TestMigrate(t *testing.T) {
	t.Run("ledger", func(t *testing.T) {
		db := newTestDB(t, "ledger", ProfileLedger)
		require.NoError(t, db.Migrate())
		assert.True(t, tableExists(t, db, "order_journal"))

		// Idempotent
		require.NoError(t, db.Migrate())
	})

	t.Run("portfolio", func(t *testing.T) {
		db := newTestDB(t, "portfolio", ProfileStandard)
		require.NoError(t, db.Migrate())
		assert.True(t, tableExists(t, db, "position_snapshots"))
	})

	t.Run("unknown name is skipped", func(t *testing.T) {
		db := newTestDB(t, "scratch", ProfileStandard)
		require.NoError(t, db.Migrate())
		assert.False(t, tableExists(t, db, "order_journal"))
	})
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "scratch", ProfileStandard)
	_, err := db.Conn().Exec("CREATE TABLE items (name TEXT)")
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM items").Scan(&n))
		return n
	}

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (name) VALUES ('a')")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (name) VALUES ('b')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count())

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO items (name) VALUES ('c')")
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
	assert.Equal(t, 1, count())

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestHealthCheckAndVacuumInto(t *testing.T) {
	db := newTestDB(t, "ledger", ProfileLedger)
	require.NoError(t, db.Migrate())
	ctx := context.Background()

	require.NoError(t, db.HealthCheck(ctx))

	_, err := db.Conn().Exec(`INSERT INTO order_journal (id, action, created_at) VALUES ('x', 'PENDING', 1)`)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "it's a copy.db")
	require.NoError(t, db.VacuumInto(ctx, dest))

	copyDB, err := New(Config{Path: dest, Name: "copy"})
	require.NoError(t, err)
	defer copyDB.Close()

	var n int
	require.NoError(t, copyDB.Conn().QueryRow("SELECT COUNT(*) FROM order_journal").Scan(&n))
	assert.Equal(t, 1, n)

	// Destination must not exist
	assert.Error(t, db.VacuumInto(ctx, dest))
}
