package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "nil", err: nil, status: http.StatusOK},
		{name: "validation", err: NewValidationError("Name", "is required"), status: http.StatusBadRequest},
		{name: "not found", err: NewNotFoundError("user", "user not found"), status: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", NewNotFoundError("user", "")), status: http.StatusNotFound},
		{name: "internal", err: NewInternalError("failed to get user", cause), status: http.StatusInternalServerError},
		{name: "plain error", err: cause, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestInternalError_PreservesCause(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := fmt.Errorf("usecase: %w", NewInternalError("failed to get user", cause))

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "usecase: failed to get user: disk I/O error", err.Error())

	var ie *InternalError
	assert.True(t, stderrors.As(err, &ie))
	assert.Equal(t, "failed to get user", ie.Message)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation failed: invalid argument", ErrInvalidArgument.Error())
	assert.Equal(t, "validation failed: ID - must be positive", NewValidationError("ID", "must be positive").Error())
	assert.Equal(t, "user not found", NewNotFoundError("user", "").Error())
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(ErrInternal))
}
