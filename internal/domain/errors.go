package domain

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrDuplicate     = errors.New("duplicate")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrPrecondition  = errors.New("precondition failed")
	ErrDelivery      = errors.New("delivery failed")
)

// Error carries a client-facing message and unwraps to one of the error kinds above,
// so callers can use errors.Is(err, domain.ErrNotFound).
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func Duplicate(message string) error {
	return &Error{Kind: ErrDuplicate, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Kind: ErrAuthorization, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Precondition(message string) error {
	return &Error{Kind: ErrPrecondition, Message: message}
}
