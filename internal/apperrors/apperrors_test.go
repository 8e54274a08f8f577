package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("accept: %w", Conflict("trip %s is no longer open", "t-1"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "trip t-1 is no longer open", PublicMessage(err))
}

func TestTransientUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient("update trip", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransient)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(cause))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{Validation("bidAmount must be positive"), http.StatusBadRequest, "bidAmount must be positive"},
		{&Error{Kind: KindUnauthorized}, http.StatusUnauthorized, "unauthorized"},
		{Forbidden("not yours"), http.StatusForbidden, "not yours"},
		{NotFound("bid not found"), http.StatusNotFound, "bid not found"},
		{Conflict("bid already resolved"), http.StatusConflict, "bid already resolved"},
		{Transient("create booking", errors.New("timeout")), http.StatusInternalServerError, "Internal server error"},
		{FatalInconsistency("trip booked without a booking", errors.New("x")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), tt.err.Error())
		assert.Equal(t, tt.message, PublicMessage(tt.err), tt.err.Error())
	}
}
