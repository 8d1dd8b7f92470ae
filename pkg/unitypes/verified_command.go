package unitypes

import (
	"fmt"
	"io"
)

// VerifiedCommand is an instruction bound against a CommandDefinition.
// Every required, non-interactive argument of Definition has an entry in Arguments.
type VerifiedCommand struct {
	Definition *CommandDefinition
	Arguments  map[string]Value
}

// Name returns the full name of the bound command.
func (c VerifiedCommand) Name() string {
	if c.Definition == nil {
		return ""
	}
	return c.Definition.FullName()
}

// Redacted renders the bound arguments as text, masking sensitive values with "****".
func (c VerifiedCommand) Redacted() map[string]string {
	out := make(map[string]string, len(c.Arguments))
	for name, value := range c.Arguments {
		if c.Definition != nil {
			if arg, ok := c.Definition.Argument(name); ok && arg.Attributes.Sensitive {
				out[name] = "****"
				continue
			}
		}
		out[name] = value.String()
	}
	return out
}

// Has reports whether an argument was bound.
func (c VerifiedCommand) Has(name string) bool {
	_, ok := c.Arguments[name]
	return ok
}

// Get returns the bound value of an argument.
func (c VerifiedCommand) Get(name string) (Value, bool) {
	v, ok := c.Arguments[name]
	return v, ok
}

// String returns a string-like argument. Paths, enums and JSON text are accepted too.
func (c VerifiedCommand) String(name string) (string, error) {
	v, ok := c.Arguments[name]
	if !ok {
		return "", fmt.Errorf("argument '%s' is not bound", name)
	}
	switch s := v.(type) {
	case StringValue, PathValue, FileValue, DirectoryValue, EnumValue, JSONStringValue:
		return s.String(), nil
	default:
		return "", fmt.Errorf("argument '%s' is %s, not a string", name, v.Type())
	}
}

// StringOr returns a string-like argument or fallback when it is not bound.
func (c VerifiedCommand) StringOr(name, fallback string) string {
	if s, err := c.String(name); err == nil {
		return s
	}
	return fallback
}

// Integer returns an Integer argument.
func (c VerifiedCommand) Integer(name string) (int64, error) {
	v, ok := c.Arguments[name]
	if !ok {
		return 0, fmt.Errorf("argument '%s' is not bound", name)
	}
	i, ok := v.(IntegerValue)
	if !ok {
		return 0, fmt.Errorf("argument '%s' is %s, not Integer", name, v.Type())
	}
	return int64(i), nil
}

// Float returns a Float argument. Integer values are widened.
func (c VerifiedCommand) Float(name string) (float64, error) {
	v, ok := c.Arguments[name]
	if !ok {
		return 0, fmt.Errorf("argument '%s' is not bound", name)
	}
	switch n := v.(type) {
	case FloatValue:
		return float64(n), nil
	case IntegerValue:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument '%s' is %s, not Float", name, v.Type())
	}
}

// Boolean returns a Boolean argument.
func (c VerifiedCommand) Boolean(name string) (bool, error) {
	v, ok := c.Arguments[name]
	if !ok {
		return false, fmt.Errorf("argument '%s' is not bound", name)
	}
	b, ok := v.(BooleanValue)
	if !ok {
		return false, fmt.Errorf("argument '%s' is %s, not Boolean", name, v.Type())
	}
	return bool(b), nil
}

// Path returns a Path, File or Directory argument.
func (c VerifiedCommand) Path(name string) (string, error) {
	v, ok := c.Arguments[name]
	if !ok {
		return "", fmt.Errorf("argument '%s' is not bound", name)
	}
	switch p := v.(type) {
	case PathValue, FileValue, DirectoryValue:
		return p.String(), nil
	default:
		return "", fmt.Errorf("argument '%s' is %s, not a path", name, v.Type())
	}
}

// List returns a List argument.
func (c VerifiedCommand) List(name string) (ListValue, error) {
	v, ok := c.Arguments[name]
	if !ok {
		return nil, fmt.Errorf("argument '%s' is not bound", name)
	}
	l, ok := v.(ListValue)
	if !ok {
		return nil, fmt.Errorf("argument '%s' is %s, not List", name, v.Type())
	}
	return l, nil
}

// Context is the execution state handed to routines. Implementations are not
// required to be safe for concurrent use.
type Context interface {
	RunID() string
	GetVariable(name string) (string, error)
	SetVariable(name string, value string) error
	InterpolateVariables(text string) string
	Output() io.Writer
	IsTestMode() bool
}

// Routine executes a verified command. A returned *ErrorData is reported as is;
// any other error is wrapped as an internal error.
type Routine func(cmd VerifiedCommand, ctx Context) (OutputData, error)
