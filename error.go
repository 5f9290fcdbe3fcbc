package bptree

import (
	"errors"
)

// Sentinel errors. Returned errors wrap these with detail; match them
// with errors.Is.
var (
	ErrInvalidCapacity = errors.New("node capacity too small")
	ErrCorruption      = errors.New("tree structure corrupted")
	ErrInvalidCache    = errors.New("invalid lookup cache size")
)
