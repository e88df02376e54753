package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{Auth, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
		{Unavailable, http.StatusInternalServerError},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := New(tt.kind, "boom", nil)
		assert.Equal(t, tt.want, err.StatusCode())
	}
}

func TestIs_Wrapped(t *testing.T) {
	cause := New(Conflict, "username already exists", nil)
	wrapped := fmt.Errorf("create user: %w", cause)

	assert.True(t, Is(wrapped, Conflict))
	assert.False(t, Is(wrapped, Validation))
	assert.False(t, Is(errors.New("plain"), Conflict))
	assert.False(t, Is(nil, Conflict))
}

func TestFrom_PlainError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	appErr := From(cause)

	assert.Equal(t, Internal, appErr.Kind)
	assert.Equal(t, "internal server error", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestFrom_KeepsAppError(t *testing.T) {
	orig := Validationf("all fields are required")
	appErr := From(fmt.Errorf("register: %w", orig))

	assert.Equal(t, Validation, appErr.Kind)
	assert.Equal(t, "all fields are required", appErr.Message)
}

func TestError_MessageOnly(t *testing.T) {
	err := New(Unavailable, "database unreachable", errors.New("timeout"))
	assert.Equal(t, "database unreachable: timeout", err.Error())

	noCause := Conflictf("email already exists")
	assert.Equal(t, "email already exists", noCause.Error())
}
