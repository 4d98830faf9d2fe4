package services

import "errors"

var (
	// ErrNotFound means the record does not exist or is not owned by the caller
	ErrNotFound = errors.New("record not found")

	// ErrValidation means the input referenced something invalid; nothing was written
	ErrValidation = errors.New("validation failed")
)
