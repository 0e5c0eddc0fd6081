// Package repository exposes entity-level access over the shared document.
// Every read fetches the document fresh; every write is one Mutate call so
// derived counters change in the same write as the records they count.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail is returned when another user already owns the email.
	ErrDuplicateEmail = errors.New("repository: email already registered")
	// ErrDuplicateName is returned when another category already uses the name.
	ErrDuplicateName = errors.New("repository: category name already exists")
	// ErrInvalidTransition is returned for a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("repository: invalid status transition")
	// ErrStoreUnavailable wraps failures to read the document.
	ErrStoreUnavailable = errors.New("repository: store unavailable")
)

// Document is the slice of the document client the repositories need.
type Document interface {
	Fetch(ctx context.Context) (*domain.Dataset, error)
	Mutate(ctx context.Context, fn func(*domain.Dataset) error) (*domain.Dataset, error)
}

func fetch(ctx context.Context, doc Document) (*domain.Dataset, error) {
	data, err := doc.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return data, nil
}

// Reconcile recomputes comment and category counters from the collections
// and persists the result.
func Reconcile(ctx context.Context, doc Document) (*domain.Dataset, error) {
	return doc.Mutate(ctx, func(d *domain.Dataset) error {
		d.Reconcile()
		return nil
	})
}
