package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("hunter2")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 7), buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("get herd 7: %w", ErrorNotFound)
	assert.True(t, errors.Is(err, ErrorNotFound))
	assert.False(t, errors.Is(err, ErrorAlreadyExists))
}

func TestError_DetailAndKind(t *testing.T) {
	err := fmt.Errorf("register: %w", NewError(ErrorAlreadyExists, "Email already registered"))

	assert.True(t, errors.Is(err, ErrorAlreadyExists))

	var ce *Error
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "Email already registered", ce.Detail)
}
