package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("AUTH_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBackendJSONBlob, cfg.Store.Backend)
	assert.Equal(t, HandleBackendFile, cfg.Store.HandleBackend)
	assert.Equal(t, AuthProviderDemo, cfg.Auth.Provider)
	assert.Equal(t, "Technical Issues", cfg.Tickets.DefaultCategory)
	assert.Equal(t, 3, cfg.Store.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.Store.RetryBase())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", StoreBackendSQLite)
	t.Setenv("STORE_SQLITE_PATH", "/tmp/desk.db")
	t.Setenv("STORE_MAX_RETRIES", "7")
	t.Setenv("STORE_SEED", "false")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/desk.db", cfg.Store.SQLitePath)
	assert.Equal(t, 7, cfg.Store.MaxRetries)
	assert.False(t, cfg.Store.Seed)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store backend", env: map[string]string{"STORE_BACKEND": "mongo"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_BACKEND": "postgres", "POSTGRES_DSN": ""}},
		{name: "unknown handle backend", env: map[string]string{"STORE_HANDLE_BACKEND": "cookie"}},
		{name: "unknown auth provider", env: map[string]string{"AUTH_PROVIDER": "ldap"}},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
