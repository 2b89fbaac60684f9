//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCoverspotWithMySQL tests the coverspot CLI with a MySQL backend.
func TestCoverspotWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "coverspot",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/coverspot?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("COVERSPOT_CACHE_BACKEND", "mysql")
	_ = os.Setenv("COVERSPOT_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("COVERSPOT_HISTORY_BACKEND", "mysql")
	_ = os.Setenv("COVERSPOT_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("COVERSPOT_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("COVERSPOT_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("COVERSPOT_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("COVERSPOT_HISTORY_DB_CONNECT") }()

	assertStoreRoundTrip(t)
}

// TestCoverspotWithPostgres tests the coverspot CLI with a PostgreSQL backend.
func TestCoverspotWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("COVERSPOT_CACHE_BACKEND", "postgresql")
	_ = os.Setenv("COVERSPOT_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("COVERSPOT_HISTORY_BACKEND", "postgresql")
	_ = os.Setenv("COVERSPOT_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("COVERSPOT_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("COVERSPOT_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("COVERSPOT_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("COVERSPOT_HISTORY_DB_CONNECT") }()

	assertStoreRoundTrip(t)
}

// assertStoreRoundTrip runs the clear, evaluate, status cycle against the
// backends configured through the environment.
func assertStoreRoundTrip(t *testing.T) {
	home := t.TempDir()

	_, err := runCoverspot(t, home, "cache", "clear")
	require.NoError(t, err)
	_, err = runCoverspot(t, home, "history", "clear")
	require.NoError(t, err)

	_, err = runCoverspot(t, home, "report", fixturePath, "--as-of", "2024-07-01", "--output", "json")
	require.NoError(t, err)

	// Served from the report cached by the previous run.
	_, err = runCoverspot(t, home, "ranked", fixturePath, "--as-of", "2024-07-01", "--limit", "2")
	require.NoError(t, err)

	out, err := runCoverspot(t, home, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Connected: true")
	assert.Contains(t, string(out), "Total Entries: 1")

	out, err = runCoverspot(t, home, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Total Runs: 1")
	assert.Contains(t, string(out), "Total Consultants Scored: 4")
}
