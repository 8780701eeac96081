package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrSessionExpired   = errors.New("session expired")
)
