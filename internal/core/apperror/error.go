// Package apperror provides structured error handling for the document and ledger core.
// Business rejections carry a machine-readable code and details the caller can display;
// only infrastructure failures map to 5xx.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeInvalidPrice    = "INVALID_PRICE"

	// Business rule violations (422)
	CodeBusinessRule         = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeIllegalTransition    = "ILLEGAL_TRANSITION"
	CodeDocumentNotEditable  = "DOCUMENT_NOT_EDITABLE"
	CodeConversionNotAllowed = "CONVERSION_NOT_ALLOWED"

	// Authentication (401)
	CodeUnauthorized = "UNAUTHORIZED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeDuplicate              = "DUPLICATE_ENTRY"
)

// AppError is the standard error type of the service.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field, quantities, states)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// IsBusiness reports whether the error is a recoverable rejection (4xx).
func (e *AppError) IsBusiness() bool {
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidQuantity is returned for a line whose quantity is not positive.
func NewInvalidQuantity(quantity int64) *AppError {
	return &AppError{
		Code:       CodeInvalidQuantity,
		Message:    "Quantity must be greater than zero",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": "quantity", "quantity": quantity},
	}
}

// NewInvalidPrice is returned for a line whose unit price violates the document price rule.
func NewInvalidPrice(price string, rule string) *AppError {
	msg := "Unit price cannot be negative"
	if rule == "positive" {
		msg = "Unit price must be greater than zero"
	}
	return &AppError{
		Code:       CodeInvalidPrice,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": "unitPrice", "unitPrice": price, "rule": rule},
	}
}

// NewInvalidPriceScale is returned for a unit price with more decimal places than money columns store.
func NewInvalidPriceScale(price string, scale int32) *AppError {
	return &AppError{
		Code:       CodeInvalidPrice,
		Message:    fmt.Sprintf("Unit price cannot have more than %d decimal places", scale),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": "unitPrice", "unitPrice": price, "scale": scale},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requested),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewIllegalTransition is returned when an event cannot fire from the current status.
func NewIllegalTransition(document, status, event string) *AppError {
	return &AppError{
		Code:       CodeIllegalTransition,
		Message:    fmt.Sprintf("Cannot %s %s in status %s", event, document, status),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"document": document, "status": status, "event": event},
	}
}

// NewNotEditable is returned for edit or delete attempts outside the editable status.
func NewNotEditable(document, status string) *AppError {
	return &AppError{
		Code:       CodeDocumentNotEditable,
		Message:    fmt.Sprintf("%s in status %s cannot be modified", document, status),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"document": document, "status": status},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
