package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "validation", err: NewValidationError("subject required", nil), code: "VALIDATION_FAILED", status: http.StatusBadRequest},
		{name: "not found", err: NewNotFound("ticket", nil), code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "conflict", err: NewConflict("email already registered", nil), code: "CONFLICT", status: http.StatusConflict},
		{name: "unavailable", err: NewUnavailable("store unavailable", cause), code: "STORE_UNAVAILABLE", status: http.StatusServiceUnavailable},
		{name: "wrapped domain error", err: fmt.Errorf("create ticket: %w", NewForbidden("nope")), code: "FORBIDDEN", status: http.StatusForbidden},
		{name: "plain error", err: cause, code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := NewUnavailable("store unavailable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable: timeout", err.Error())
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("load user: %w", NewNotFound("user", map[string]any{"id": "u-1"}))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.Nil(t, MapError(nil))
}
