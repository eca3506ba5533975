package domain

import "errors"

var (
	ErrTokenNotFound = errors.New("download token not found")
	ErrExpired       = errors.New("download token expired")
	ErrLimitExceeded = errors.New("download limit exceeded")
)
