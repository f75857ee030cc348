package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
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

// ---- Ledger Business Logic (LAND) ----

func ErrInvalidArgument(message string) *AppError {
	return New("LAND_001", message, http.StatusBadRequest)
}

func ErrParcelNotFound(id int64) *AppError {
	return New("LAND_002", fmt.Sprintf("Parcel %d not found", id), http.StatusNotFound)
}

func ErrUnauthorized() *AppError {
	return New("LAND_003", "Caller is not the parcel owner", http.StatusForbidden)
}

func ErrNotForSale() *AppError {
	return New("LAND_004", "Parcel is not listed for sale", http.StatusConflict)
}

func ErrSelfPurchase() *AppError {
	return New("LAND_005", "Owner cannot purchase their own parcel", http.StatusConflict)
}

func ErrPaymentMismatch() *AppError {
	return New("LAND_006", "Amount paid does not equal the listed price", http.StatusUnprocessableEntity)
}

func ErrCapacityExceeded() *AppError {
	return New("LAND_007", "Parcel identifier space exhausted", http.StatusInsufficientStorage)
}

func ErrSettlementFailed(err error) *AppError {
	return Wrap("LAND_008", "Settlement recording failed, transition rolled back", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidGatewaySecret() *AppError {
	return New("AUTH_002", "Invalid gateway secret", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LAND_001-style validation error.
func Validation(message string) *AppError {
	return New("LAND_001", message, http.StatusBadRequest)
}
