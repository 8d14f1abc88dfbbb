package storage

import "errors"

// Sentinel errors shared by every Store implementation.
var (
	ErrNotFound    = errors.New("storage: artifact not found")
	ErrInvalidCID  = errors.New("storage: invalid cid")
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	ErrImmutable   = errors.New("storage: immutable artifact mismatch")
)

// IsNotFound reports whether err indicates an absent artifact.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
