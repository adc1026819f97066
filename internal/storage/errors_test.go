package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	dErrors "fintrack/pkg/domain-errors"
	"fintrack/pkg/platform/sentinel"
)

func TestTranslate(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, Translate(nil, "op"))
	})

	t.Run("unique violation becomes conflict", func(t *testing.T) {
		err := Translate(&pq.Error{Code: "23505"}, "create user")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("serialization failure becomes conflict", func(t *testing.T) {
		err := Translate(&pq.Error{Code: "40001"}, "commit")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("foreign key becomes invariant violation", func(t *testing.T) {
		err := Translate(&pq.Error{Code: "23503"}, "create account")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("connection class becomes unavailable", func(t *testing.T) {
		err := Translate(&pq.Error{Code: "08006"}, "query")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("closed transaction becomes unavailable", func(t *testing.T) {
		err := Translate(sql.ErrTxDone, "commit")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("context cancellation becomes timeout", func(t *testing.T) {
		err := Translate(context.Canceled, "query")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("unknown errors become internal", func(t *testing.T) {
		err := Translate(errors.New("boom"), "query")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.False(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestSentinelBridging(t *testing.T) {
	t.Run("not-found carries sentinel and code", func(t *testing.T) {
		err := NotFound("user")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.False(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("conflict carries sentinel and code", func(t *testing.T) {
		err := Conflict("version mismatch")
		assert.ErrorIs(t, err, sentinel.ErrConflict)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}
