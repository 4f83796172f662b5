package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestHealthCheck(t *testing.T) {
	require.NoError(t, HealthCheck(context.Background(), stubPinger{}))

	err := HealthCheck(context.Background(), stubPinger{err: errors.New("connection refused")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unhealthy")
}

func TestDatabaseName(t *testing.T) {
	name, err := DatabaseName("postgres://u:p@localhost:5432/chamada_dev?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "chamada_dev", name)

	_, err = DatabaseName("://bad")
	assert.Error(t, err)
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig("postgres://localhost/x")
	assert.Equal(t, "postgres://localhost/x", cfg.DSN)
	assert.Greater(t, cfg.MaxConns, cfg.MinConns)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
