package db_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/internal/notes/config"
	"notedesk/internal/notes/db"
	"notedesk/pkg/resilience"
)

func TestNew_UnreachableDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := &config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "postgres",
		Password: "postgres",
		Database: "notes",
		MinConn:  0,
		MaxConn:  1,
	}
	retry := resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond}

	database, err := db.New(ctx, cfg, retry, "")

	require.Error(t, err)
	assert.Nil(t, database)
	assert.Contains(t, err.Error(), db.ErrDBConnection)
}

func TestMigrate_MissingDirectory(t *testing.T) {
	cfg := &config.PostgresConfig{Host: "127.0.0.1", Port: 1, User: "u", Password: "p", Database: "d"}

	err := db.Migrate(context.Background(), cfg, t.TempDir()+"/missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), db.ErrDBMigrations)
}

func TestMigrationsNormalizeAssignees(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations", "notes")

	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, up := range ups {
		_, err := os.Stat(strings.TrimSuffix(up, ".up.sql") + ".down.sql")
		assert.NoError(t, err, "missing down migration for %s", filepath.Base(up))
	}

	data, err := os.ReadFile(filepath.Join(dir, "000003_normalize_assigned_to.up.sql"))
	require.NoError(t, err)
	sql := string(data)
	assert.Contains(t, sql, "lower(btrim(a))")
	assert.Contains(t, sql, "BEFORE INSERT OR UPDATE OF assigned_to ON notes")
	assert.Contains(t, sql, "UPDATE notes SET assigned_to = assigned_to")
}
