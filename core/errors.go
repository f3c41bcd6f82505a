/*
Package core holds error codes and small helpers shared by all packages of
devatext.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'devatext.core'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.core")
}

// General error codes
const (
	NOERROR   int = 0
	EMISSING  int = 122 // resource does not exist (font, shaping engine)
	EINVALID  int = 123 // validation failed or API used incorrectly
	EFALLBACK int = 124 // shaping pass failed, caller should use the non-shaped path
	EINTERNAL int = 125 // internal error
)

func errorText(ecode int) string {
	switch ecode {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case EFALLBACK:
		return "shaping unavailable"
	case EINTERNAL:
		return "internal error"
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	error
	code int
	msg  string
}

func (e coreError) Unwrap() error {
	return e.error
}

func (e coreError) Error() string {
	if e.msg != "" && e.msg != errorText(e.code) {
		return fmt.Sprintf("[%d] %v: %s", e.code, e.error, e.msg)
	}
	return fmt.Sprintf("[%d] %v", e.code, e.error)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

// Is matches sentinel errors by error code.
func (e coreError) Is(target error) bool {
	t, ok := target.(coreError)
	return ok && t.msg == "" && t.code == e.code
}

var _ AppError = coreError{}

// Sentinel errors for use with errors.Is. Every error carrying the code of a
// sentinel somewhere in its chain matches it.
var (
	ErrMissing  error = sentinel(EMISSING)
	ErrInvalid  error = sentinel(EINVALID)
	ErrFallback error = sentinel(EFALLBACK)
	ErrInternal error = sentinel(EINTERNAL)
)

func sentinel(code int) coreError {
	return coreError{errors.New(errorText(code)), code, ""}
}

// ErrorWithCode adds an error code to err's error chain.
// Unlike pkg/errors, ErrorWithCode will wrap nil error.
func ErrorWithCode(err error, code int) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return coreError{err, code, errorText(code)}
}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
// If err is nil, an error denoting the code's default text is wrapped.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	msg := fmt.Sprintf(format, v...)
	return coreError{err, code, msg}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// IsFallback returns true if err tells the caller to render with a
// non-shaped fallback path.
func IsFallback(err error) bool {
	return Code(err) == EFALLBACK
}

// UserMessage returns the user message associated with an error.
// If no message is found, it checks StatusCode and returns that message.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{
		errors.New(errorText(code)),
		code,
		fmt.Sprintf(format, v...),
	}
}

// UserError prints an error to stderr, preferring the user message.
func UserError(err error) {
	if err == nil {
		return
	}
	tracer().Debugf("user error: %v", err)
	if e := AppError(nil); errors.As(err, &e) {
		fmt.Fprintf(os.Stderr, "[%d] %s\n", e.ErrorCode(), e.UserMessage())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
}
