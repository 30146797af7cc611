package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("insufficient_funds", "Insufficient balance", http.StatusBadRequest)
	assert.Equal(t, "[insufficient_funds] Insufficient balance", e.Error())

	wrapped := Wrap("internal_error", "Internal server error", http.StatusInternalServerError, errors.New("pq: connection refused"))
	assert.Contains(t, wrapped.Error(), "internal_error")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	e := InternalError(fmt.Errorf("commit tx: %w", inner))

	assert.True(t, errors.Is(e, inner))

	var appErr *AppError
	require.True(t, errors.As(error(e), &appErr))
	assert.Equal(t, "internal_error", appErr.Code)
}

func TestErrorConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrInvalidCredentials(), "invalid_credentials", http.StatusUnauthorized},
		{ErrUsernameTaken(), "username_taken", http.StatusConflict},
		{ErrInvalidRefreshToken(), "invalid_refresh_token", http.StatusUnauthorized},
		{ErrDeviceMismatch(), "device_mismatch", http.StatusUnauthorized},
		{ErrInvalidAmount(), "invalid_amount", http.StatusBadRequest},
		{ErrInsufficientFunds(), "insufficient_funds", http.StatusBadRequest},
		{ErrAccountNotFound(), "person_not_found", http.StatusNotFound},
		{ErrDuplicateReceiptNo(), "duplicate_receipt_no", http.StatusConflict},
		{ErrInvalidPayload(), "invalid_payload", http.StatusBadRequest},
		{ErrSchoolCodeRequired(), "schoolcode_required", http.StatusBadRequest},
		{ErrSchoolNotFound(), "school_not_found", http.StatusNotFound},
		{ErrNotLinkedToSchool(), "not_linked_to_school", http.StatusBadRequest},
		{ErrSchoolHasNoPOS(), "school_has_no_pos", http.StatusBadRequest},
		{ErrSchoolMismatch(), "school_mismatch", http.StatusForbidden},
		{ErrParentNotLinked(), "parent_not_linked", http.StatusBadRequest},
		{ErrNotLinkedToChild(), "not_linked_to_child", http.StatusBadRequest},
		{ErrRequestNotFound(), "not_found", http.StatusNotFound},
		{ErrNotPending(), "not_pending", http.StatusBadRequest},
		{ErrForbidden(), "forbidden", http.StatusForbidden},
		{ErrRateLimitExceeded(), "rate_limit_exceeded", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
