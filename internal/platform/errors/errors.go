package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrNotAuthenticated  = errors.New("not authenticated: run `medibill login` first")
	ErrSessionUnresolved = errors.New("session not resolved yet")
	ErrNoReport          = errors.New("no analysis report stored yet")
)
