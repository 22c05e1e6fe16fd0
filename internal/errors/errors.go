// Package errors provides coded error types for sheetcanvas.
//
// Codes let callers tell a bad input package apart from a missing part or an
// internal failure without matching on message text:
//
//	err := errors.New(errors.ErrCodeSheetNotFound, "sheet %q not found", name)
//	if errors.Is(err, errors.ErrCodeSheetNotFound) {
//	    // list the available sheets
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidDrawing, xmlErr, "could not decode %s", part)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Input errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"

	// Lookup errors
	ErrCodePartNotFound  Code = "PART_NOT_FOUND"
	ErrCodeSheetNotFound Code = "SHEET_NOT_FOUND"

	// Per-sheet and per-element errors; these never abort a conversion
	ErrCodeInvalidDrawing         Code = "INVALID_DRAWING"
	ErrCodeUnresolvedRelationship Code = "UNRESOLVED_RELATIONSHIP"
	ErrCodeUndecodableImage       Code = "UNDECODABLE_IMAGE"
	ErrCodeDegenerateGeometry     Code = "DEGENERATE_GEOMETRY"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error around an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the code of the first *Error in err's chain.
// It returns an empty Code when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
