package store

import (
	"errors"
	"helpmatch/pkg/types"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreErrorTagsTransientFailures(t *testing.T) {
	for _, code := range []string{"55P03", "40001", "40P01"} {
		pgErr := &pgconn.PgError{Code: code}

		err := storeError(pgErr, "failed to accept application")

		assert.ErrorIs(t, err, types.ErrStoreUnavailable, code)
		assert.ErrorIs(t, err, pgErr, code)
		assert.NotErrorIs(t, err, types.ErrCanNotAccept, code)

		e, ok := types.AsError(err)
		assert.True(t, ok, code)
		assert.Equal(t, types.KindUnavailable, e.Kind, code)
	}
}

func TestStoreErrorLeavesOtherFailuresInternal(t *testing.T) {
	err := storeError(&pgconn.PgError{Code: "42601"}, "failed to list requests")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrStoreUnavailable)

	_, ok := types.AsError(err)
	assert.False(t, ok)
}

func TestStoreErrorPassesDomainErrors(t *testing.T) {
	assert.Same(t, types.ErrCanNotAccept, storeError(types.ErrCanNotAccept, "ignored"))
	assert.Nil(t, storeError(nil, "ignored"))
	assert.Contains(t, storeError(errors.New("boom"), "failed to scan").Error(), "failed to scan: boom")
}
