package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every MarketError unwraps to exactly one of these, so callers
// branch with errors.Is instead of inspecting messages.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrReceiptCheckedOut = errors.New("receipt is checked out")
)

// MarketError is the domain error carrying a kind and an optional message
type MarketError struct {
	Kind    error
	Message string
}

func (e *MarketError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *MarketError) Unwrap() error {
	return e.Kind
}

// NotFoundf builds an ErrNotFound error.
func NotFoundf(format string, args ...any) error {
	return &MarketError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalidf builds an ErrInvalidInput error.
func Invalidf(format string, args ...any) error {
	return &MarketError{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds an ErrConflict error.
func Conflictf(format string, args ...any) error {
	return &MarketError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}
