package trailobject

import "errors"

var (
	ErrInvalid      = errors.New("invalid input")
	ErrNotFound     = errors.New("trail object not found")
	ErrUnauthorized = errors.New("unauthorized")
)
