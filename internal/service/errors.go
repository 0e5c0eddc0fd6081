package service

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk/internal/docstore"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// translate turns repository and store failures into domain errors. Errors
// it does not recognise pass through and surface as internal errors.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", nil)
	case errors.Is(err, repository.ErrDuplicateName):
		return apperrors.NewConflict("category name already exists", nil)
	case errors.Is(err, repository.ErrInvalidTransition):
		return apperrors.NewValidationError("invalid status transition", nil)
	case errors.Is(err, docstore.ErrRevisionConflict):
		return apperrors.NewConflict("the data changed concurrently; retry the request", nil)
	case errors.Is(err, docstore.ErrMalformedDocument):
		return apperrors.NewUnavailable("stored document is malformed", err)
	case errors.Is(err, repository.ErrStoreUnavailable):
		return apperrors.NewUnavailable("document store unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewUnavailable("document store timed out", err)
	}
	return err
}

func required(fields map[string]string) error {
	missing := []string{}
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewValidationError("missing required fields", map[string]any{"fields": sortedCopy(missing)})
}
