package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

func TestOpenSQLiteIsRepeatable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "desk.db")

	db, err := OpenSQLite(ctx, path, zap.NewNop())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO documents (id, body, revision) VALUES ('doc-1', '{}', 0)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{
		DSN:            "postgres://desk:pw@db.internal:5432/helpdesk",
		MaxConns:       8,
		MinConns:       1,
		ConnMaxIdleSec: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(8), cfg.MaxConns)
	assert.Equal(t, int32(1), cfg.MinConns)
	assert.Equal(t, 15*time.Second, cfg.MaxConnIdleTime)
	assert.Equal(t, "helpdesk", cfg.ConnConfig.Database)

	_, err = poolConfig(config.PostgresConfig{DSN: "postgres://desk@db.internal:notaport/helpdesk"})
	assert.Error(t, err)
}

func TestUnconfiguredClients(t *testing.T) {
	ctx := context.Background()

	pg, err := NewPostgres(ctx, config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, pg.Ping(ctx))
	pg.Close()

	var r *Redis
	assert.Error(t, r.Ping(ctx))
	r.Close()

	assert.NoError(t, RunMigrations(ctx, nil, zap.NewNop()))
}
