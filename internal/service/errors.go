package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email or username already in use")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access denied")
	ErrValidation         = errors.New("invalid request")
)
