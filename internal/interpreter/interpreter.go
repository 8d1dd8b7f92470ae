// Package interpreter executes verified commands by invoking their registered routines.
package interpreter

import (
	"errors"
	"time"

	"unilang/internal/logger"
	"unilang/pkg/unitypes"

	"github.com/charmbracelet/log"
)

// RoutineRegistry resolves the routine of a command by its full name.
type RoutineRegistry interface {
	RoutineFor(fullName string) (unitypes.Routine, bool)
}

// outputRecorder is implemented by contexts that keep the last command output.
type outputRecorder interface {
	RecordOutput(command, content string)
}

// Interpreter runs verified commands in order.
type Interpreter struct {
	registry RoutineRegistry
	logger   *log.Logger
	now      func() time.Time
}

// New creates an Interpreter resolving routines from registry.
func New(registry RoutineRegistry) *Interpreter {
	return &Interpreter{
		registry: registry,
		logger:   logger.NewStyledLogger("Interpreter"),
		now:      time.Now,
	}
}

// Run executes verified with a fresh Interpreter.
func Run(verified []unitypes.VerifiedCommand, registry RoutineRegistry, ctx unitypes.Context) ([]unitypes.OutputData, error) {
	return New(registry).Run(verified, ctx)
}

// Run invokes each command's routine exactly once, in order, and stops at the first
// failure. Outputs of the commands that completed before the failure are returned
// alongside the error.
func (in *Interpreter) Run(verified []unitypes.VerifiedCommand, ctx unitypes.Context) ([]unitypes.OutputData, error) {
	outputs := make([]unitypes.OutputData, 0, len(verified))
	for _, cmd := range verified {
		out, err := in.Execute(cmd, ctx)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Execute invokes the routine of a single verified command.
func (in *Interpreter) Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
	name := cmd.Name()
	routine, ok := in.registry.RoutineFor(name)
	if !ok || routine == nil {
		in.logger.Debug("No routine registered", "command", name)
		return unitypes.OutputData{}, unitypes.NewErrorData(unitypes.ErrCodeCommandNotImplemented,
			"Execution Error: The command '%s' is registered but has no executable routine.", name)
	}

	if cmd.Definition.IsDeprecated() {
		msg := cmd.Definition.Deprecation
		if msg == "" {
			msg = "this command is deprecated"
		}
		in.logger.Warn("Deprecated command", "command", name, "message", msg)
	}

	logger.CommandExecution(name, ctx.RunID(), cmd.Redacted())
	start := in.now()
	out, err := routine(cmd, ctx)
	elapsed := in.now().Sub(start)
	if err != nil {
		var data *unitypes.ErrorData
		if errors.As(err, &data) {
			in.logger.Debug("Routine failed", "command", name, "code", data.Code)
			return unitypes.OutputData{}, err
		}
		in.logger.Debug("Routine failed with internal error", "command", name, "error", err)
		return unitypes.OutputData{}, &unitypes.ErrorData{
			Code:    unitypes.ErrCodeInternalError,
			Message: "Execution Error: " + err.Error(),
			Cause:   err,
		}
	}

	if out.Format == "" {
		out.Format = unitypes.FormatText
	}
	out.ExecutionTime = elapsed
	if recorder, ok := ctx.(outputRecorder); ok {
		recorder.RecordOutput(name, out.Content)
	}
	return out, nil
}
