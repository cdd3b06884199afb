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

func TestNew_FileDatabaseMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	db, err := New(Config{Path: path, Profile: ProfileLedger, Name: "runs"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	// idempotent
	require.NoError(t, db.Migrate())

	var name string
	err = db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "runs", name)

	assert.NoError(t, db.QuickCheck(context.Background()))
	assert.NoError(t, db.WALCheckpoint(""))
	assert.Error(t, db.WALCheckpoint("BOGUS"))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Equal(t, path, db.Path())
}

func TestNew_InMemory(t *testing.T) {
	db, err := New(Config{Path: "file::memory:?cache=shared", Name: "runs"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	assert.Equal(t, "runs", db.Name())
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Name: "scratch"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate())
}

func TestWithTransaction_RollsBack(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Name: "scratch"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Conn().Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t VALUES (1)"); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var n int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Zero(t, n)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("bad")
	})
	assert.ErrorContains(t, err, "panic in transaction")

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}
