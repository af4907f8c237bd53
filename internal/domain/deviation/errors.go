package deviation

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidRadius = errors.New("inclusion radius must be non-negative")
)
