package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("username or email already exists")
	// ErrAuth covers both unknown users and wrong passwords.
	ErrAuth     = errors.New("invalid username or password")
	ErrNotFound = errors.New("not found")
)

var (
	ErrMissingFields    = fmt.Errorf("%w: all fields are required", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: email address is malformed", ErrValidation)
)
