package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"task-manager/configs"
	"task-manager/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDBSQLiteEnablesForeignKeys(t *testing.T) {
	cfg := configs.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "app.db")}

	db, err := database.ConnectDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestConnectDBUnsupportedDriver(t *testing.T) {
	_, err := database.ConnectDB(configs.Config{DBDriver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestConnectRedisDisabledWithoutHost(t *testing.T) {
	client, err := database.ConnectRedis(context.Background(), configs.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
