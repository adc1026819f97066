package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "user missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		cause := errors.New("driver: bad connection")
		err := Wrap(cause, CodeUnavailable, "commit failed")
		err = fmt.Errorf("register user: %w", err)

		assert.True(t, HasCode(err, CodeUnavailable))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("matches inner code behind outer code", func(t *testing.T) {
		inner := New(CodeValidation, "bad email")
		outer := Wrap(inner, CodeInternal, "mapper failure")

		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeValidation))
	})

	t.Run("nil and uncoded errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	})
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "version mismatch")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeMapping, "corrupt row"))
	assert.Equal(t, CodeMapping, CodeOf(wrapped))
}
