package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailInUse         = "EMAIL_IN_USE"
	ErrCodeWeakPassword       = "WEAK_PASSWORD"
	ErrCodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeAlreadyInCart      = "ALREADY_IN_CART"
	ErrCodeCartEmpty          = "CART_EMPTY"
	ErrCodeProfileIncomplete  = "PROFILE_INCOMPLETE"
	ErrCodeOutOfStock         = "OUT_OF_STOCK"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeTicketNotFound     = "TICKET_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	ErrCodeInternalError      = "INTERNAL_ERROR"
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

// NewOutOfStockError names the product the customer cannot have.
// The wording matches what the storefront shows verbatim.
func NewOutOfStockError(productTitle string) *DomainError {
	return NewDomainError(ErrCodeOutOfStock, fmt.Sprintf("Sorry, %q is out of stock.", productTitle))
}

// Common domain errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid credentials. Please check your email and password.")
	ErrEmailInUse         = NewDomainError(ErrCodeEmailInUse, "This email is already registered. Please log in instead.")
	ErrWeakPassword       = NewDomainError(ErrCodeWeakPassword, "The password is too weak. It must be at least 6 characters long.")
	ErrTooManyAttempts    = NewDomainError(ErrCodeTooManyAttempts, "Access to this account has been temporarily disabled due to many failed login attempts. Please try again later.")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Authentication required.")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "You do not have permission to perform this action.")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found.")
	ErrAlreadyInCart      = NewDomainError(ErrCodeAlreadyInCart, "This item is already in your cart.")
	ErrCartEmpty          = NewDomainError(ErrCodeCartEmpty, "Cannot place order. Your cart is empty.")
	ErrProfileIncomplete  = NewDomainError(ErrCodeProfileIncomplete, "Please complete your profile before placing an order.")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found.")
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "This status change is not allowed.")
	ErrTicketNotFound     = NewDomainError(ErrCodeTicketNotFound, "Support ticket not found.")
	ErrUserNotFound       = NewDomainError(ErrCodeUserNotFound, "User not found.")
	ErrResetTokenInvalid  = NewDomainError(ErrCodeResetTokenInvalid, "This password reset link is invalid or has expired.")
)
