package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores documents in the documents table and enforces the
// revision check with a conditional UPDATE.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend wraps a pool whose schema has been migrated.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Create(ctx context.Context, body []byte) (string, error) {
	rev, err := peekRevision(body)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	const query = `INSERT INTO documents (id, body, revision) VALUES ($1, $2, $3)`
	if _, err := b.pool.Exec(ctx, query, id, body, rev); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

func (b *PostgresBackend) Load(ctx context.Context, id string) ([]byte, error) {
	const query = `SELECT body FROM documents WHERE id=$1`
	var body []byte
	if err := b.pool.QueryRow(ctx, query, id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return body, nil
}

func (b *PostgresBackend) Store(ctx context.Context, id string, body []byte, expectedRevision int64) error {
	const query = `
        UPDATE documents SET body=$1, revision=revision+1, updated_at=NOW()
        WHERE id=$2 AND revision=$3`
	cmd, err := b.pool.Exec(ctx, query, body, id, expectedRevision)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := b.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if !exists {
		return ErrDocumentNotFound
	}
	return ErrRevisionConflict
}
