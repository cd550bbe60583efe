package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormat(t *testing.T) {
	err := NewAppError(ErrorTypeDecode, "missing field items", "FETCHER")
	assert.Equal(t, "[DECODE] missing field items", err.Error())

	err = err.WithDetails("page %d", 3)
	assert.Equal(t, "[DECODE] missing field items: page 3", err.Error())
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, ErrorTypeTransport, "request failed", "RPC")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "TRANSPORT", string(GetErrorType(err)))
}

func TestGetErrorTypeThroughWrapping(t *testing.T) {
	inner := NewAppError(ErrorTypeConfig, "bad keys file", "STATS")
	wrapped := fmt.Errorf("startup: %w", inner)

	assert.Equal(t, ErrorTypeConfig, GetErrorType(wrapped))
}

func TestGetErrorTypePlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, GetErrorType(errors.New("boom")))
}

func TestTypePredicates(t *testing.T) {
	require.True(t, IsDecodeError(NewAppError(ErrorTypeDecode, "x", "T")))
	require.False(t, IsDecodeError(NewAppError(ErrorTypeTransport, "x", "T")))
	require.True(t, IsTransportError(NewAppError(ErrorTypeTransport, "x", "T")))
	require.False(t, IsTransportError(errors.New("plain")))
}
