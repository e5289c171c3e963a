package ident

import (
	"fmt"

	"github.com/google/uuid"
)

// Guid is a 128-bit identifier in the usual registry string form.
type Guid = uuid.UUID

// NilGuid is the all-zero GUID.
var NilGuid Guid

// NewGuid returns a fresh random GUID.
func NewGuid() Guid { return uuid.New() }

// ParseGuid parses a GUID in either bare or braced form.
func ParseGuid(s string) (Guid, error) {
	g, err := uuid.Parse(s)
	if err != nil {
		return NilGuid, fmt.Errorf("ident: invalid guid %q: %w", s, err)
	}
	return g, nil
}

// MustGuid is like ParseGuid but panics on error. It is intended for literal
// wire constants.
func MustGuid(s string) Guid {
	g, err := ParseGuid(s)
	if err != nil {
		panic(err)
	}
	return g
}
