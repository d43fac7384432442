// Package testutil builds databases and Redis instances for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"task-manager/internal/repository"
	"task-manager/pkg/database"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLiteDB membuka database SQLite di temp dir test dan menjalankan migrasi.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, repository.Migrate(db))
	return db
}

func dockerPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping docker-backed test in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	pool.MaxWait = 2 * time.Minute
	return pool
}

func run(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()

	resource, err := pool.RunWithOptions(opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(300)
	return resource
}

// StartRedis menjalankan container Redis dan mengembalikan client yang siap.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()

	pool := dockerPool(t)
	resource := run(t, pool, &dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"})

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
	t.Cleanup(func() { _ = client.Close() })

	err := pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	})
	require.NoError(t, err)
	return client
}

// StartPostgres menjalankan container Postgres, konek lewat lib/pq, dan
// menjalankan migrasi.
func StartPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool := dockerPool(t)
	resource := run(t, pool, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=taskmanager_test",
		},
	})

	dsn := fmt.Sprintf("host=%s port=%s user=postgres password=secret dbname=taskmanager_test sslmode=disable",
		resource.GetBoundIP("5432/tcp"), resource.GetPort("5432/tcp"))

	var db *gorm.DB
	err := pool.Retry(func() error {
		var err error
		db, err = database.ConnectPostgres(dsn, false)
		return err
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, repository.Migrate(db))
	return db
}
