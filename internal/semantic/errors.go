package semantic

import (
	"errors"
	"fmt"

	"unilang/internal/parser"
	"unilang/pkg/unitypes"
)

// Error is a binding failure reported by the analyzer.
type Error struct {
	Code       unitypes.ErrorCode
	Message    string
	Command    string
	Argument   string
	Suggestion string
	Location   parser.SourceLocation
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns the pipeline error code.
func (e *Error) ErrorCode() unitypes.ErrorCode {
	return e.Code
}

func newError(code unitypes.ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) at(loc parser.SourceLocation) *Error {
	e.Location = loc
	return e
}

func (e *Error) forArgument(command, argument string) *Error {
	e.Command = command
	e.Argument = argument
	return e
}

// IsInteractiveRequired reports whether err asks for an interactive argument, and which one.
func IsInteractiveRequired(err error) (command, argument string, ok bool) {
	var semErr *Error
	if errors.As(err, &semErr) && semErr.Code == unitypes.ErrCodeArgumentInteractiveRequired {
		return semErr.Command, semErr.Argument, true
	}
	return "", "", false
}

// IsHelpRequest reports whether err is a help request, and for which command.
// An empty command asks for the command listing.
func IsHelpRequest(err error) (command string, ok bool) {
	var semErr *Error
	if errors.As(err, &semErr) && semErr.Code == unitypes.ErrCodeHelpRequested {
		return semErr.Command, true
	}
	return "", false
}
