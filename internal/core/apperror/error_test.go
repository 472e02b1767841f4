package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrappedLookup(t *testing.T) {
	base := NewNotFound("Product", "42")
	wrapped := fmt.Errorf("get product: %w", base)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsForbidden(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestNewDatabase_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabase(cause)

	assert.Equal(t, CodeDatabase, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNewFieldValidation(t *testing.T) {
	err := NewFieldValidation(map[string]string{"name": "required"})

	assert.True(t, IsValidation(err))
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, map[string]string{"name": "required"}, err.Details["fields"])
}

func TestNewDuplicate(t *testing.T) {
	err := NewDuplicate("User", "email", "a@b.c")

	assert.True(t, IsDuplicate(err))
	assert.Equal(t, "User with this email already exists", err.Message)
	assert.Equal(t, "a@b.c", err.Details["value"])
}
