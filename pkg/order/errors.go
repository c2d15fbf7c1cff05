package order

import "errors"

var (
	ErrNotFound         = errors.New("order not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidWordCount = errors.New("word count must be positive")
	ErrInvalidDeadline  = errors.New("deadline must be at least one day")
	ErrStorage          = errors.New("storage error")
)
