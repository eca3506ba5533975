package domain

import "errors"

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrEmailRequired   = errors.New("customer email is required")
	ErrOrderNotFound   = errors.New("order not found")
	ErrSessionMismatch = errors.New("payment session reference does not match")
	ErrNotOwner        = errors.New("order does not belong to this account")
)
