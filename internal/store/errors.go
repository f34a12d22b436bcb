package store

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrImageNotFound = errors.New("image not found")
)
