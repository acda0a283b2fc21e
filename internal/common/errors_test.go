package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewError(KindValidation, "missing required columns", nil)
	assert.Equal(t, "validation: missing required columns", err.Error())

	wrapped := NewError(KindStorageIO, "failed to save status file", errors.New("disk full"))
	assert.Equal(t, "storage_io: failed to save status file: disk full", wrapped.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewError(KindPerEmployee, "slip upload failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestIsKind(t *testing.T) {
	err := NewError(KindValidation, "empty source file", nil)

	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(err, KindStorageIO))

	// Kind survives wrapping
	wrapped := fmt.Errorf("batch aborted: %w", err)
	assert.True(t, IsKind(wrapped, KindValidation))

	assert.False(t, IsKind(errors.New("plain"), KindValidation))
	assert.False(t, IsKind(nil, KindValidation))
}
