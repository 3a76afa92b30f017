package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("book")))
	assert.True(t, IsValidation(NewValidationError("bad input")))
	assert.True(t, IsConflict(NewConflictError("already exists")))
	assert.True(t, IsUnavailable(NewUnavailableError("put", errors.New("throttled"))))
	assert.True(t, IsInternal(NewInternalError("boom")))

	assert.False(t, IsNotFound(NewConflictError("already exists")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestWrapPreservesType(t *testing.T) {
	err := Wrap(NewNotFoundError("tag"), "detach tag")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "detach tag")
}

func TestWrapPlainErrorBecomesInternal(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, "list books")
	assert.True(t, IsInternal(err))
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "noop"))
}

func TestUnwrapThroughFmt(t *testing.T) {
	inner := NewNotFoundError("collection")
	outer := fmt.Errorf("handling request: %w", inner)
	assert.True(t, IsNotFound(outer))
	assert.Equal(t, inner, GetAppError(outer))
}
