package replay

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTruncated = errors.New("session container truncated")
	ErrMalformed = errors.New("session container malformed")
)
