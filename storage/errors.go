package storage

import "errors"

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrInvalidID  = errors.New("storage: invalid element id")
	ErrIDMismatch = errors.New("storage: stored element id mismatch")
	ErrImmutable  = errors.New("storage: immutable element mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
