package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel with same code", func(t *testing.T) {
		err := NewDomainError(CodeNotFound, "Order not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("fetch order: %w", NewDomainError(CodeEncodingFailed, "bad url"))
		assert.True(t, errors.Is(err, ErrEncodingFailed))
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})
}

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(CodeInvalidInput, "quantity must be positive")
	assert.Equal(t, "quantity must be positive", err.Error())
	assert.Equal(t, CodeInvalidInput, err.Code)
}
