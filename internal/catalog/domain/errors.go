package domain

import "errors"

var (
	ErrPackNotFound    = errors.New("pack not found")
	ErrSampleNotFound  = errors.New("sample not found")
	ErrNotOwner        = errors.New("sample does not belong to this producer")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrSamplePurchased = errors.New("sample has been purchased and cannot be deleted")
)
