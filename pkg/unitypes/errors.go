package unitypes

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode is the machine-readable classification carried by every pipeline error.
type ErrorCode string

// Error codes reported by the analyzer, interpreter and registry.
const (
	ErrCodeParse                       ErrorCode = "UNILANG_PARSE_ERROR"
	ErrCodeCommandNotFound             ErrorCode = "UNILANG_COMMAND_NOT_FOUND"
	ErrCodeArgumentMissing             ErrorCode = "UNILANG_ARGUMENT_MISSING"
	ErrCodeArgumentTypeMismatch        ErrorCode = "UNILANG_ARGUMENT_TYPE_MISMATCH"
	ErrCodeArgumentInteractiveRequired ErrorCode = "UNILANG_ARGUMENT_INTERACTIVE_REQUIRED"
	ErrCodeArgumentAmbiguous           ErrorCode = "UNILANG_ARGUMENT_AMBIGUOUS"
	ErrCodeValidationRuleFailed        ErrorCode = "UNILANG_VALIDATION_RULE_FAILED"
	ErrCodeTooManyArguments            ErrorCode = "UNILANG_TOO_MANY_ARGUMENTS"
	ErrCodeUnknownParameter            ErrorCode = "UNILANG_UNKNOWN_PARAMETER"
	ErrCodeCommandAlreadyExists        ErrorCode = "UNILANG_COMMAND_ALREADY_EXISTS"
	ErrCodeInvalidCommandName          ErrorCode = "UNILANG_INVALID_COMMAND_NAME"
	ErrCodeInvalidDefinition           ErrorCode = "UNILANG_INVALID_DEFINITION"
	ErrCodeCommandNotImplemented       ErrorCode = "UNILANG_COMMAND_NOT_IMPLEMENTED"
	ErrCodeTypeMismatch                ErrorCode = "UNILANG_TYPE_MISMATCH"
	ErrCodeVariableNotFound            ErrorCode = "UNILANG_VARIABLE_NOT_FOUND"
	ErrCodeInternalError               ErrorCode = "UNILANG_INTERNAL_ERROR"
	ErrCodeHelpRequested               ErrorCode = "HELP_REQUESTED"
)

// String returns the code text.
func (c ErrorCode) String() string {
	return string(c)
}

// ErrorData is the structured failure returned by routines and the interpreter.
type ErrorData struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// NewErrorData creates an ErrorData with a formatted message.
func NewErrorData(code ErrorCode, format string, args ...interface{}) *ErrorData {
	return &ErrorData{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps err into an ErrorData with the given code, keeping err as the cause.
func WrapError(code ErrorCode, err error) *ErrorData {
	return &ErrorData{Code: code, Message: err.Error(), Cause: err}
}

// Error implements the error interface.
func (e *ErrorData) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ErrorData) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the error code carried anywhere in err's chain.
// It returns ErrCodeInternalError for errors without a code and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coded interface{ ErrorCode() ErrorCode }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ErrCodeInternalError
}

// ErrorCode returns the error's code.
func (e *ErrorData) ErrorCode() ErrorCode {
	return e.Code
}

// Output formats understood by the output printer.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// OutputData is the successful result of one routine invocation.
type OutputData struct {
	Content       string        `json:"content"`
	Format        string        `json:"format"`
	ExecutionTime time.Duration `json:"execution_time,omitempty"`
}

// NewTextOutput creates a plain text OutputData.
func NewTextOutput(content string) OutputData {
	return OutputData{Content: content, Format: FormatText}
}
