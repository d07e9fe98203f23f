// Package sqlitetest opens migrated throwaway SQLite stores for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hktikhin/personal-budget/internal/adapter/repository/sqlstore"
)

// New returns a migrated store backed by a file in t.TempDir().
// The connection is closed when the test ends.
func New(t testing.TB) *sqlstore.DB {
	t.Helper()

	dsn, err := sqlstore.SQLiteDSN(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)

	require.NoError(t, sqlstore.RunMigrations(sqlstore.DriverSQLite, dsn))

	db, err := sqlstore.NewDB(context.Background(), sqlstore.DriverSQLite, dsn, sqlstore.Options{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}
