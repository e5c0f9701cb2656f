package errors

import (
	"errors"
	"fmt"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToRunTheServer         = "Failed to run the server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the server"
	ErrFailedDecodeRequestBody        = "Failed to decode request body"
	ErrInvalidRequestBody             = "Invalid request body"
	ErrFailedInitializePayment        = "Failed to initialize payment"
	ErrFailedVerifyPayment            = "Failed to verify payment"
	ErrFailedProcessWebhook           = "Failed to process webhook"
)

// ValidationError reports bad input before it reaches storage or the
// gateway. Field names the offending input when known.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// DuplicateReferenceError signals a reference collision on create. The
// caller should retry initiation with a fresh reference.
type DuplicateReferenceError struct{}

func NewDuplicateReferenceError() *DuplicateReferenceError {
	return &DuplicateReferenceError{}
}

func (e *DuplicateReferenceError) Error() string {
	return "transaction reference already exists"
}

// InvalidSignatureError rejects a webhook whose HMAC does not match. No
// state is mutated when this is returned.
type InvalidSignatureError struct{}

func NewInvalidSignatureError() *InvalidSignatureError {
	return &InvalidSignatureError{}
}

func (e *InvalidSignatureError) Error() string {
	return "invalid webhook signature"
}

// GatewayUnavailableError is transient: the gateway could not be reached
// or timed out. Local state is untouched and the caller may retry.
type GatewayUnavailableError struct {
	Cause error
}

func NewGatewayUnavailableError(cause error) *GatewayUnavailableError {
	return &GatewayUnavailableError{Cause: cause}
}

func (e *GatewayUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("payment gateway unavailable: %v", e.Cause)
	}
	return "payment gateway unavailable"
}

func (e *GatewayUnavailableError) Unwrap() error { return e.Cause }

// GatewayRejectedError is permanent for this attempt: the gateway refused
// the request. Initiation rolls the pending transaction back on it.
type GatewayRejectedError struct {
	Message string
}

func NewGatewayRejectedError(message string) *GatewayRejectedError {
	return &GatewayRejectedError{Message: message}
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("payment gateway rejected request: %s", e.Message)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
