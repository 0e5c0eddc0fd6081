// Package docstore reads and replaces the single JSON document that holds
// every help-desk collection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound is returned when the addressed document does not exist.
	ErrDocumentNotFound = errors.New("docstore: document not found")
	// ErrRevisionConflict is returned when the stored revision moved since it was read.
	ErrRevisionConflict = errors.New("docstore: revision conflict")
	// ErrNotInitialized is returned when the client has no document handle yet.
	ErrNotInitialized = errors.New("docstore: client not initialized")
	// ErrMalformedDocument is returned when the stored document does not decode.
	ErrMalformedDocument = errors.New("docstore: malformed document")
)

// Backend stores whole documents. Implementations never merge: Store replaces
// the document body, and only when the current revision equals expectedRevision.
type Backend interface {
	Name() string
	Create(ctx context.Context, body []byte) (string, error)
	Load(ctx context.Context, id string) ([]byte, error)
	Store(ctx context.Context, id string, body []byte, expectedRevision int64) error
}

// StatusError carries a non-2xx answer from a remote store.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("docstore: %s returned status %d", e.Op, e.StatusCode)
}

func peekRevision(body []byte) (int64, error) {
	var head struct {
		Revision json.RawMessage `json:"revision"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return 0, fmt.Errorf("decode revision: %w", err)
	}
	if len(head.Revision) == 0 || string(head.Revision) == "null" {
		return 0, nil
	}
	var rev int64
	if err := json.Unmarshal(head.Revision, &rev); err != nil {
		return 0, nil
	}
	return rev, nil
}
