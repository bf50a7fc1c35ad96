package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrEmptyImage          = errors.New("image has zero width or height")
	ErrInvalidBudget       = errors.New("size budget must be positive")
	ErrBudgetUnreachable   = errors.New("image cannot be shrunk under the size budget")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrModelUnavailable    = errors.New("language model unavailable")
)
