package model

import (
	"errors"
	"fmt"

	"xdao.co/revstore/element"
	"xdao.co/revstore/storage"
)

type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrInvalidID          ErrorCode = "INVALID_ID"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrReferenceNotFound  ErrorCode = "REFERENCE_NOT_FOUND"
	ErrIncompleteSnapshot ErrorCode = "INCOMPLETE_SNAPSHOT"
	ErrMalformed          ErrorCode = "MALFORMED_OR_WRONG_SCHEMA"
	ErrSubFormatNotFound  ErrorCode = "SUBFORMAT_NOT_FOUND"
	ErrInternal           ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Ref names the element involved, when there is one.
	Ref string `json:"ref,omitempty"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// MapError converts library errors into a CodedError. A CodedError passes
// through unchanged; nil maps to nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce
	}

	var ee *element.Error
	if errors.As(err, &ee) {
		out := &CodedError{Message: ee.Message}
		if !ee.Ref.IsNull() {
			out.Ref = ee.Ref.String()
		}
		switch ee.Kind {
		case element.ReferenceNotFound:
			out.Code = ErrReferenceNotFound
		case element.IncompleteSnapshot:
			out.Code = ErrIncompleteSnapshot
		case element.MalformedOrWrongSchema:
			out.Code = ErrMalformed
		case element.SubFormatNotFound:
			out.Code = ErrSubFormatNotFound
		default:
			out.Code = ErrInternal
		}
		return out
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewError(ErrNotFound, "not found")
	case errors.Is(err, storage.ErrInvalidID):
		return NewError(ErrInvalidID, "invalid element id")
	default:
		return NewError(ErrInternal, err.Error())
	}
}
