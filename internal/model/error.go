package model

import "strings"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeTotalMismatch     = "TOTAL_MISMATCH"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeEmailMismatch     = "EMAIL_MISMATCH"
	ErrCodeProfileNotFound   = "PROFILE_NOT_FOUND"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOutOfStock        = NewDomainError(ErrCodeOutOfStock, "Product is out of stock")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Invalid order status")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Order status transition not allowed")
	ErrTotalMismatch     = NewDomainError(ErrCodeTotalMismatch, "Order total does not match item prices")
	ErrInvalidAmount     = NewDomainError(ErrCodeInvalidAmount, "Invalid amount")
	ErrConflict          = NewDomainError(ErrCodeConflict, "Cart or wishlist was modified by another session")
	ErrStatusChanged     = NewDomainError(ErrCodeConflict, "Order status was changed by another request")
	ErrEmailMismatch     = NewDomainError(ErrCodeEmailMismatch, "Email does not match this order")
	ErrProfileNotFound   = NewDomainError(ErrCodeProfileNotFound, "Profile not found")
	ErrUnauthorised      = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Admin access required")
)

// ValidationError carries per-field messages from form validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
