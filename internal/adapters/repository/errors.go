package repository

import "errors"

// Sentinel kinds for profile store errors.
var (
	ErrNotFound     = errors.New("profile not found")
	ErrExists       = errors.New("profile already exists")
	ErrClosed       = errors.New("profile store closed")
	ErrUnknownStore = errors.New("unknown store driver")
)
