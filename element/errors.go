package element

import (
	"errors"

	"xdao.co/revstore/ident"
)

// ErrorKind is a stable category for programmatic error handling.
//
// Callers should branch on ErrorKind rather than matching error strings.
type ErrorKind string

const (
	// ReferenceNotFound: a reference whose absence is never expected
	// (the storage index itself, or an undeclared cell).
	ReferenceNotFound ErrorKind = "ReferenceNotFound"
	// IncompleteSnapshot: a mapped element is absent from the package.
	// Expected during incremental transfer.
	IncompleteSnapshot ErrorKind = "IncompleteSnapshot"
	// MalformedOrWrongSchema: an element of the wrong kind, a schema
	// mismatch, or undecodable structure.
	MalformedOrWrongSchema ErrorKind = "MalformedOrWrongSchema"
	// SubFormatNotFound: an optional embedded sub-format is absent.
	SubFormatNotFound ErrorKind = "SubFormatNotFound"
)

// Error is the structured error for package resolution.
//
// Ref names the identifier involved, when there is one.
type Error struct {
	Kind    ErrorKind
	Ref     ident.ExGuid
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Ref.IsNull() {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + " (" + e.Ref.String() + ")"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError constructs a structured error.
func NewError(kind ErrorKind, ref ident.ExGuid, msg string) error {
	return &Error{Kind: kind, Ref: ref, Message: msg}
}

// WrapError constructs a structured error with a cause.
func WrapError(kind ErrorKind, ref ident.ExGuid, msg string, cause error) error {
	return &Error{Kind: kind, Ref: ref, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the ErrorKind of err, or "" if err is not structured.
func KindOf(err error) ErrorKind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
