package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_OrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_second.sql": {Data: []byte("SELECT 2;")},
		"m/001_first.sql":  {Data: []byte("SELECT 1;")},
		"m/README.md":      {Data: []byte("docs")},
		"m/abc_bad.sql":    {Data: []byte("SELECT 0;")},
	}

	got, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "001_first.sql", got[0].Name)
	assert.Equal(t, 2, got[1].Version)
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	_, err := loadMigrations(fstest.MapFS{}, "nope")
	assert.Error(t, err)
}

func TestOpenSQLite_MigrateIsIdempotent(t *testing.T) {
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	var applied int
	require.NoError(t, db.SQLite.GetContext(ctx, &applied, "SELECT COUNT(*) FROM schema_migrations"))
	assert.Equal(t, 1, applied)

	var tables int
	require.NoError(t, db.SQLite.GetContext(ctx, &tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'assistants'"))
	assert.Equal(t, 1, tables)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}
