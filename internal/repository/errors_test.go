package repository

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
)

func TestStorageError(t *testing.T) {
	plain := errors.New("syntax error at or near")

	tests := []struct {
		name string
		err  error
		kind apperrors.Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, apperrors.KindNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), apperrors.KindNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, apperrors.KindConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, apperrors.KindConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, apperrors.KindTransient},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, apperrors.KindTransient},
		{"connection failure", &pgconn.PgError{Code: "08006"}, apperrors.KindTransient},
		{"bad connection", driver.ErrBadConn, apperrors.KindTransient},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, apperrors.KindNotFound},
		{"check violation", &pgconn.PgError{Code: "23514"}, apperrors.KindInternal},
		{"other", plain, apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storageError("get bid", "bid", tt.err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Equal(t, tt.kind == apperrors.KindTransient, apperrors.IsRetryable(err))
		})
	}

	assert.NoError(t, storageError("get bid", "bid", nil))
	assert.Equal(t, "bid not found", apperrors.PublicMessage(storageError("get bid", "bid", gorm.ErrRecordNotFound)))
	assert.ErrorIs(t, storageError("get bid", "bid", plain), plain)
}

func TestInsertError(t *testing.T) {
	err := insertError("create trip", "trip", &pgconn.PgError{Code: "22P02"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "invalid id for trip", apperrors.PublicMessage(err))

	err = insertError("create booking", "booking for this trip", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = insertError("create trip", "trip", &pgconn.PgError{Code: "40001"})
	assert.True(t, apperrors.IsRetryable(err))
}
