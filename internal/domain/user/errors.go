package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotVerified   = errors.New("user account is pending verification")
	ErrInvalidRole       = errors.New("invalid user role")
	ErrTokenNotFound     = errors.New("refresh token not found")
	ErrTokenRevoked      = errors.New("refresh token has been revoked")
)
