package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/movequote/internal/config"
	"github.com/Simplici0/movequote/internal/db"
	"github.com/Simplici0/movequote/internal/migrations"
	"github.com/Simplici0/movequote/internal/session"
)

func TestOpenSessionStore(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(database, "../../migrations", nil))
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		url     string
		want    session.Store
	}{
		{name: "sqlite", backend: config.SessionBackendSQLite, want: &session.Cached{}},
		{name: "memory", backend: config.SessionBackendMemory, want: &session.MemoryStore{}},
		{name: "redis", backend: config.SessionBackendRedis, url: os.Getenv("REDIS_URL"), want: &session.RedisStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.backend == config.SessionBackendRedis && tt.url == "" {
				t.Skip("REDIS_URL not set")
			}
			cfg := config.Config{SessionBackend: tt.backend, SessionTTL: time.Hour, RedisURL: tt.url}

			store, closeStore, err := openSessionStore(ctx, cfg, database, zap.NewNop())
			require.NoError(t, err)
			t.Cleanup(closeStore)

			assert.IsType(t, tt.want, store)
		})
	}
}
