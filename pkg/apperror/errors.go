package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
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

// WithDetails attaches client-visible detail fields to the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
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

// ---- Meal-card business logic (CARD) ----

func ErrNotFound(entity string) *AppError {
	return New("CARD_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrOutsideMealWindow() *AppError {
	return New("CARD_002", "Current time is not within any meal slot", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("CARD_003", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("CARD_004", "Invalid amount", http.StatusBadRequest)
}

func ErrDuplicateScan() *AppError {
	return New("CARD_005", "Card was scanned moments ago", http.StatusConflict)
}

// ---- Printing (PRN) ----

func ErrPrinterUnreachable(err error) *AppError {
	return Wrap("PRN_001", "Printer unreachable or write failed", http.StatusBadGateway, err)
}

// ErrRenderFailure marks QR fetch/decode failures. It is recovered locally by
// falling back to a text receipt and never surfaced to callers.
func ErrRenderFailure(err error) *AppError {
	return Wrap("PRN_002", "Receipt QR rendering failed", http.StatusInternalServerError, err)
}

// ---- Security (SEC) ----

func ErrInvalidAPIKey() *AppError {
	return New("SEC_001", "Invalid API key", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a CARD_004-style validation error.
func Validation(message string) *AppError {
	return New("CARD_004", message, http.StatusBadRequest)
}
