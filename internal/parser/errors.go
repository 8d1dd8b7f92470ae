package parser

import (
	"fmt"

	"unilang/pkg/unitypes"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// ErrorKindSyntax covers misplaced delimiters and malformed command paths.
	ErrorKindSyntax ErrorKind = iota
	// ErrorKindUnclosedQuote is reported for a quote without its closing pair.
	ErrorKindUnclosedQuote
	// ErrorKindMultipleInstructions is reported when a single instruction was expected.
	ErrorKindMultipleInstructions
	// ErrorKindDuplicateNamedArgument is reported when duplicates are disallowed by options.
	ErrorKindDuplicateNamedArgument
	// ErrorKindPositionalAfterNamed is reported when ordering is enforced by options.
	ErrorKindPositionalAfterNamed
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindSyntax:
		return "syntax"
	case ErrorKindUnclosedQuote:
		return "unclosed_quote"
	case ErrorKindMultipleInstructions:
		return "multiple_instructions"
	case ErrorKindDuplicateNamedArgument:
		return "duplicate_named_argument"
	case ErrorKindPositionalAfterNamed:
		return "positional_after_named"
	default:
		return "unknown"
	}
}

// ParseError is returned for any input the parser rejects.
type ParseError struct {
	Kind     ErrorKind
	Message  string
	Location SourceLocation
}

func newParseError(kind ErrorKind, loc SourceLocation, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error: %s (%s)", e.Message, e.Location)
}

// ErrorCode returns the pipeline error code for parse failures.
func (e *ParseError) ErrorCode() unitypes.ErrorCode {
	return unitypes.ErrCodeParse
}
