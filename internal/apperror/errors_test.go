package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesValueAndKind(t *testing.T) {
	errTaken := New(ErrConflict, "email already registered")
	wrapped := fmt.Errorf("register: %w", errTaken)

	assert.True(t, errors.Is(wrapped, errTaken))
	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "email already registered", errTaken.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrValidation, KindOf(Validation("bad date")))
	assert.Equal(t, ErrRateLimited, KindOf(fmt.Errorf("x: %w", New(ErrRateLimited, "slow down"))))
	assert.Nil(t, KindOf(errors.New("db down")))
}

func TestMessage(t *testing.T) {
	msg, ok := Message(fmt.Errorf("wrapped: %w", New(ErrNotFound, "workout not found")))
	assert.True(t, ok)
	assert.Equal(t, "workout not found", msg)

	_, ok = Message(errors.New("plain"))
	assert.False(t, ok)
}
