package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"membership-service/internal/config"
	"membership-service/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// SQLiteDB is a throwaway database file living in the test's temp dir.
type SQLiteDB struct {
	DB   *bun.DB
	Path string
}

// Setup opens a fresh SQLite file for the test and closes it on cleanup.
// Every call gets its own file, so tests using it may run in parallel.
//
// Usage:
//
//	func TestMyRepo(t *testing.T) {
//	    sqlite := testdb.Setup(t)
//	    sqlite.RunMigrations(t, (*member.Enrollment)(nil))
//	    ...
//	}
func Setup(t *testing.T) *SQLiteDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ave.db")
	database, err := db.New(config.DatabaseConfig{Path: path})
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close(database)
	})

	return &SQLiteDB{DB: database, Path: path}
}

func (s *SQLiteDB) RunMigrations(t *testing.T, models ...interface{}) {
	t.Helper()
	require.NoError(t, db.RunMigrations(context.Background(), s.DB, models...), "failed to create tables")
}

// CountRows returns the number of rows currently in table.
func CountRows(t *testing.T, database *bun.DB, table string) int {
	t.Helper()

	var count int
	err := database.NewSelect().
		TableExpr(table).
		ColumnExpr("count(*)").
		Scan(context.Background(), &count)
	require.NoError(t, err, "failed to count rows in %s", table)
	return count
}
