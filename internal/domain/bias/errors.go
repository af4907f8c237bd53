package bias

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidArea      = errors.New("area dimensions must be positive")
	ErrInvalidThreshold = errors.New("suggestion threshold must be non-negative")
)
