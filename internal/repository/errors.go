package repository

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tripbid/tripbid-backend/internal/apperrors"
)

// Postgres error codes worth retrying: serialization_failure, deadlock_detected,
// lock_not_available, admin_shutdown, cannot_connect_now.
var retryableCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
	"57P01": true,
	"57P03": true,
}

// storageError translates a GORM/pgx error into the apperrors taxonomy.
func storageError(op, entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), isMalformedID(err):
		return apperrors.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return apperrors.Conflict("%s already exists", entity)
	case isTransient(err):
		return apperrors.Transient(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// insertError is storageError for inserts, where a malformed id comes from
// the caller's input rather than a missing row.
func insertError(op, entity string, err error) error {
	if isMalformedID(err) {
		return apperrors.Validation("invalid id for %s", entity)
	}
	return storageError(op, entity, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception
		return retryableCodes[pgErr.Code] || strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}

// isMalformedID reports invalid_text_representation, raised when a non-uuid
// string is compared against a uuid column.
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
