package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/docstore"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// Store is the document client plus the infrastructure behind it.
type Store struct {
	Client   *docstore.Client
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	sqlite   *sql.DB
}

// OpenStore connects the configured backend and handle store and binds the
// client to a document.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*Store, error) {
	store := &Store{}

	backend, err := store.openBackend(ctx, cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	handles := store.openHandles(ctx, cfg, logger)
	store.Client = docstore.NewClient(backend, handles, logger.Named("docstore"), docstore.Options{
		DocumentID: cfg.Store.DocumentID,
		Seed:       cfg.Store.Seed,
		MaxRetries: cfg.Store.MaxRetries,
		RetryBase:  cfg.Store.RetryBase(),
		Metrics:    metrics,
	})

	id, err := store.Client.Initialize(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize document store: %w", err)
	}
	logger.Info("document store ready",
		zap.String("backend", backend.Name()),
		zap.String("document_id", id),
	)
	return store, nil
}

func (s *Store) openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Backend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.Postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return docstore.NewPostgresBackend(pg.PoolHandle()), nil
	case config.StoreBackendSQLite:
		db, err := persistence.OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		s.sqlite = db
		return docstore.NewSQLiteBackend(db), nil
	case config.StoreBackendFile:
		return docstore.NewFileBackend(cfg.Store.FileDir)
	case config.StoreBackendMemory:
		return docstore.NewMemoryBackend(), nil
	default:
		return docstore.NewHTTPBackend(cfg.Store.BaseURL, &http.Client{Timeout: cfg.Store.HTTPTimeout()}), nil
	}
}

func (s *Store) openHandles(ctx context.Context, cfg *config.Config, logger *zap.Logger) docstore.HandleStore {
	switch cfg.Store.HandleBackend {
	case config.HandleBackendRedis:
		s.Redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		return docstore.NewRedisHandleStore(s.Redis.Client, cfg.Store.HandleKey)
	case config.HandleBackendMemory:
		return &docstore.MemoryHandleStore{}
	default:
		return docstore.NewFileHandleStore(cfg.Store.HandlePath)
	}
}

// ForgetHandle clears the saved document handle without touching any
// document, so the next start binds to a fresh one.
func ForgetHandle(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store := &Store{}
	defer store.Close()
	return store.openHandles(ctx, cfg, logger).Clear(ctx)
}

// Close releases every connection the store opened.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
	s.Postgres.Close()
	s.Redis.Close()
}
