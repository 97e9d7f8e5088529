package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnsupportedType = errors.New("unsupported content type")
)

// AppError wraps a sentinel kind with a user-facing message.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func NotFound(what string) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf("%s not found", what)}
}

func Validation(message string) error {
	return &AppError{Kind: ErrValidation, Message: message}
}

func UnsupportedType(t string) error {
	return &AppError{Kind: ErrUnsupportedType, Message: fmt.Sprintf("unsupported content type: %s", t)}
}
