package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLiteBackend stores documents in a local SQLite database, using the same
// conditional UPDATE as the Postgres backend.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps a database whose schema has been migrated.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Create(ctx context.Context, body []byte) (string, error) {
	rev, err := peekRevision(body)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := b.db.ExecContext(ctx, `INSERT INTO documents (id, body, revision) VALUES (?, ?, ?)`, id, string(body), rev); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, id string) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Store(ctx context.Context, id string, body []byte, expectedRevision int64) error {
	res, err := b.db.ExecContext(ctx,
		`UPDATE documents SET body = ?, revision = revision + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND revision = ?`,
		string(body), id, expectedRevision)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 1 {
		return nil
	}
	var exists int
	err = b.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM documents WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if exists == 0 {
		return ErrDocumentNotFound
	}
	return ErrRevisionConflict
}
