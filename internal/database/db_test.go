package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, SQLite, filepath.Join(t.TempDir(), "nested", "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	v, _, err := MigrationVersion(db, SQLite)
	require.NoError(t, err)
	require.Zero(t, v)

	require.NoError(t, RunMigrations(db, SQLite))
	require.NoError(t, RunMigrations(db, SQLite))

	v, dirty, err := MigrationVersion(db, SQLite)
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, v)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n))
	require.Zero(t, n)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db, SQLite))

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO transactions(id, user_id, date, description, amount_cents) VALUES('a', 'u', '2026-01-01', 'x', 1)`); err != nil {
			return err
		}
		return errors.New("stop")
	})
	require.EqualError(t, err, "stop")

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n))
	require.Zero(t, n)
}

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver("SQLite3")
	require.NoError(t, err)
	require.Equal(t, SQLite, d)
	d, err = ParseDriver("mysql")
	require.NoError(t, err)
	require.Equal(t, MySQL, d)
	_, err = ParseDriver("postgres")
	require.Error(t, err)
}
