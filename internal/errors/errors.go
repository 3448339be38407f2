package errors

import (
	"errors"
)

// Common error types
var (
	ErrEmptyBank        = errors.New("question bank is empty")
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
)
