package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
// Code is a stable machine-readable identifier; Message is for humans.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // wrapped internal error, never exposed to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Sessions ----

func ErrInvalidCredentials() *AppError {
	return New("invalid_credentials", "Invalid username or password", http.StatusUnauthorized)
}

func ErrUsernameTaken() *AppError {
	return New("username_taken", "Username already taken", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("invalid_token", "Invalid or expired access token", http.StatusUnauthorized)
}

func ErrInvalidRefreshToken() *AppError {
	return New("invalid_refresh_token", "Invalid refresh token", http.StatusUnauthorized)
}

func ErrDeviceMismatch() *AppError {
	return New("device_mismatch", "Refresh token is bound to another device", http.StatusUnauthorized)
}

// ---- Ledger ----

func ErrInvalidAmount() *AppError {
	return New("invalid_amount", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("insufficient_funds", "Insufficient balance", http.StatusBadRequest)
}

func ErrAccountNotFound() *AppError {
	return New("person_not_found", "Account not found", http.StatusNotFound)
}

func ErrDuplicateReceiptNo() *AppError {
	return New("duplicate_receipt_no", "Receipt number already in use", http.StatusConflict)
}

// ---- QR payments ----

func ErrInvalidPayload() *AppError {
	return New("invalid_payload", "QR payload could not be parsed", http.StatusBadRequest)
}

func ErrSchoolCodeRequired() *AppError {
	return New("schoolcode_required", "School code is required", http.StatusBadRequest)
}

func ErrSchoolNotFound() *AppError {
	return New("school_not_found", "School not found", http.StatusNotFound)
}

func ErrNotLinkedToSchool() *AppError {
	return New("not_linked_to_school", "Payer is not affiliated with this school", http.StatusBadRequest)
}

func ErrSchoolHasNoPOS() *AppError {
	return New("school_has_no_pos", "School has no terminal account", http.StatusBadRequest)
}

func ErrSchoolMismatch() *AppError {
	return New("school_mismatch", "Terminal is not bound to this school", http.StatusForbidden)
}

// ---- Top-up workflow ----

func ErrParentNotLinked() *AppError {
	return New("parent_not_linked", "No parent is linked to this account", http.StatusBadRequest)
}

func ErrNotLinkedToChild() *AppError {
	return New("not_linked_to_child", "Child is not linked to this account", http.StatusBadRequest)
}

func ErrRequestNotFound() *AppError {
	return New("not_found", "Top-up request not found", http.StatusNotFound)
}

func ErrNotPending() *AppError {
	return New("not_pending", "Top-up request is no longer pending", http.StatusBadRequest)
}

func ErrForbidden() *AppError {
	return New("forbidden", "Not allowed to act on this resource", http.StatusForbidden)
}

// ---- Rate limiting ----

func ErrRateLimitExceeded() *AppError {
	return New("rate_limit_exceeded", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System ----

// InternalError wraps an internal error; details stay server-side.
func InternalError(err error) *AppError {
	return Wrap("internal_error", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a 400 validation error with the given message.
func Validation(message string) *AppError {
	return New("validation_error", message, http.StatusBadRequest)
}
