package models

import "errors"

// Domain errors shared by repositories, services and handlers.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrValidation        = errors.New("validation error")
	ErrForbidden         = errors.New("forbidden")
)
