package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewSourceUnavailableError("failed to open registry", io.ErrUnexpectedEOF)
	assert.Equal(t, "SOURCE_UNAVAILABLE: failed to open registry: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	plain := NewValidationError("age must be positive")
	assert.Equal(t, "VALIDATION: age must be positive", plain.Error())

	external := NewExternalError("specialty recommendation failed", io.EOF)
	assert.Equal(t, "EXTERNAL: specialty recommendation failed: EOF", external.Error())
	assert.True(t, IsType(external, ErrorTypeExternal))
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", NewSourceUnavailableError("registry", nil))

	assert.True(t, IsType(wrapped, ErrorTypeSourceUnavailable))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(io.EOF, ErrorTypeExternal))
	assert.False(t, IsType(nil, ErrorTypeExternal))
}
