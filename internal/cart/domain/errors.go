package domain

import "errors"

var (
	ErrSampleNotFound  = errors.New("sample not found")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)
