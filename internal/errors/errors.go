package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error type mapped to process exit codes.
type Code int

const (
	CodeSuccess       Code = 0
	CodeInternal      Code = 1
	CodeUsage         Code = 2
	CodeAuth          Code = 10
	CodeRateLimited   Code = 11
	CodeUnavailable   Code = 12
	CodeUnsupported   Code = 13
	CodeNotFound      Code = 14
	CodeNotConfigured Code = 15
	CodeExhausted     Code = 16
)

// Error is a typed CLI error that carries a stable error code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func CodeOf(err error) Code {
	if cliErr, ok := As(err); ok {
		return cliErr.Code
	}
	return CodeInternal
}

// IsNotConfigured reports whether err means a required credential is absent,
// as opposed to a capable provider whose remote call failed.
func IsNotConfigured(err error) bool {
	return CodeOf(err) == CodeNotConfigured
}

// IsNotFound reports whether err means the provider answered but has no
// record of the requested entity (e.g. an unknown transaction hash).
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// Kind maps an error code to the failure category printed on stderr.
func Kind(err error) string {
	switch CodeOf(err) {
	case CodeUsage:
		return "usage"
	case CodeNotConfigured:
		return "not configured"
	case CodeExhausted:
		return "all providers failed"
	case CodeNotFound:
		return "not found"
	case CodeAuth, CodeRateLimited, CodeUnavailable, CodeUnsupported:
		return "provider failure"
	default:
		return "internal error"
	}
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	return int(CodeOf(err))
}
