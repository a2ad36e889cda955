// Package apperrors defines the classified failures returned by the
// authentication and inventory services. The HTTP layer maps a Kind to a
// status code; the services never deal with transport concerns.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidCredentials
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientStock
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code a transport should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInsufficientStock, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Remaining is only meaningful for
// KindInsufficientStock and Fields only for KindValidation.
type Error struct {
	Kind      Kind
	Message   string
	Remaining int
	Fields    map[string]string
	cause     error
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperrors.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy carrying a different caller-visible message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// Predefined errors.
var (
	// ErrInvalidCredentials is shared by every login and token failure so
	// that callers cannot tell the causes apart.
	ErrInvalidCredentials = New(KindInvalidCredentials, "Could not validate credentials")
	ErrIncorrectLogin     = New(KindInvalidCredentials, "Incorrect username or password")
	ErrForbidden          = New(KindForbidden, "Access denied")
	ErrNotFound           = New(KindNotFound, "Product not found")
	ErrConflict           = New(KindConflict, "Resource already exists")
	ErrDuplicateIdentity  = New(KindConflict, "User with this name or email already exists")
	ErrDuplicateProduct   = New(KindConflict, "Product is already added")
	ErrInsufficientStock  = New(KindInsufficientStock, "Quantity exceeds the remainder")
	ErrValidation         = New(KindValidation, "Validation failed")
)

// InsufficientStock reports a purchase larger than the available stock.
func InsufficientStock(available int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("Max quantity: %d", available),
		Remaining: available,
	}
}

// Validation wraps per-field validation messages.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: ErrValidation.Message, Fields: fields}
}

// Internal classifies an unexpected failure, keeping the cause for logs.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", cause: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From returns err as an *Error, classifying it as internal if needed.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
