package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"unilang/internal/commands"
	"unilang/internal/context"
	"unilang/internal/logger"
	"unilang/pkg/unitypes"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routineMap map[string]unitypes.Routine

func (m routineMap) RoutineFor(fullName string) (unitypes.Routine, bool) {
	r, ok := m[fullName]
	return r, ok
}

func verified(name string, args map[string]unitypes.Value) unitypes.VerifiedCommand {
	return unitypes.VerifiedCommand{
		Definition: &unitypes.CommandDefinition{Name: name},
		Arguments:  args,
	}
}

func TestRun_InvokesInOrder(t *testing.T) {
	var calls []string
	record := func(out string) unitypes.Routine {
		return func(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
			calls = append(calls, cmd.Name())
			return unitypes.NewTextOutput(out), nil
		}
	}
	reg := routineMap{".a": record("first"), ".b": record("second")}

	outputs, err := Run([]unitypes.VerifiedCommand{verified(".a", nil), verified(".b", nil), verified(".a", nil)},
		reg, context.NewTestContext(nil))

	require.NoError(t, err)
	assert.Equal(t, []string{".a", ".b", ".a"}, calls)
	require.Len(t, outputs, 3)
	assert.Equal(t, "first", outputs[0].Content)
	assert.Equal(t, "second", outputs[1].Content)
	assert.Equal(t, unitypes.FormatText, outputs[1].Format)
}

func TestRun_Empty(t *testing.T) {
	outputs, err := Run(nil, routineMap{}, context.NewTestContext(nil))
	require.NoError(t, err)
	assert.Empty(t, outputs)
}

func TestRun_MissingRoutine(t *testing.T) {
	outputs, err := Run([]unitypes.VerifiedCommand{verified(".ghost", nil)}, routineMap{}, context.NewTestContext(nil))

	require.Error(t, err)
	assert.Empty(t, outputs)
	assert.Equal(t, unitypes.ErrCodeCommandNotImplemented, unitypes.CodeOf(err))
	assert.Contains(t, err.Error(), "'.ghost'")
}

func TestRun_NilRoutineFromRegistry(t *testing.T) {
	reg := commands.NewRegistry()
	require.NoError(t, reg.Register(unitypes.CommandDefinition{Name: ".stub"}, nil))
	def, ok := reg.Lookup(".stub")
	require.True(t, ok)

	_, err := Run([]unitypes.VerifiedCommand{{Definition: def}}, reg, context.NewTestContext(nil))
	assert.Equal(t, unitypes.ErrCodeCommandNotImplemented, unitypes.CodeOf(err))
}

func TestRun_StopsAtFirstError(t *testing.T) {
	failure := unitypes.NewErrorData(unitypes.ErrCodeValidationRuleFailed, "bad input")
	called := false
	reg := routineMap{
		".ok": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
			return unitypes.NewTextOutput("ok"), nil
		},
		".fail": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
			return unitypes.OutputData{}, failure
		},
		".never": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
			called = true
			return unitypes.OutputData{}, nil
		},
	}

	outputs, err := Run([]unitypes.VerifiedCommand{verified(".ok", nil), verified(".fail", nil), verified(".never", nil)},
		reg, context.NewTestContext(nil))

	require.Error(t, err)
	assert.Same(t, failure, err)
	assert.False(t, called)
	require.Len(t, outputs, 1)
	assert.Equal(t, "ok", outputs[0].Content)
}

func TestRun_WrapsPlainErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	reg := routineMap{".boom": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.OutputData{}, fmt.Errorf("write failed: %w", cause)
	}}

	_, err := Run([]unitypes.VerifiedCommand{verified(".boom", nil)}, reg, context.NewTestContext(nil))

	require.Error(t, err)
	assert.Equal(t, unitypes.ErrCodeInternalError, unitypes.CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "write failed: disk on fire")
}

func TestRun_PassesWrappedErrorData(t *testing.T) {
	failure := unitypes.NewErrorData(unitypes.ErrCodeValidationRuleFailed, "bad input")
	wrapped := fmt.Errorf("saving profile: %w", failure)
	reg := routineMap{".save": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.OutputData{}, wrapped
	}}

	_, err := Run([]unitypes.VerifiedCommand{verified(".save", nil)}, reg, context.NewTestContext(nil))

	require.Error(t, err)
	assert.Same(t, wrapped, err)
	assert.Equal(t, unitypes.ErrCodeValidationRuleFailed, unitypes.CodeOf(err))
	assert.NotContains(t, err.Error(), "Execution Error")
}

func TestExecute_LogsRedactedArguments(t *testing.T) {
	original := logger.Logger
	t.Cleanup(func() { logger.Logger = original })
	var buf bytes.Buffer
	logger.Logger = log.New(&buf)
	logger.Logger.SetLevel(log.DebugLevel)

	cmd := unitypes.VerifiedCommand{
		Definition: &unitypes.CommandDefinition{
			Name: ".login",
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "user", Kind: unitypes.String},
				{Name: "token", Kind: unitypes.String, Attributes: unitypes.ArgumentAttributes{Sensitive: true}},
			},
		},
		Arguments: map[string]unitypes.Value{
			"user":  unitypes.StringValue("ada"),
			"token": unitypes.StringValue("s3cret"),
		},
	}
	reg := routineMap{".login": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.NewTextOutput("ok"), nil
	}}

	_, err := New(reg).Execute(cmd, context.NewTestContext(nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Executing command")
	assert.Contains(t, buf.String(), "ada")
	assert.Contains(t, buf.String(), "****")
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestExecute_ExecutionTimeAndRecording(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.NewTestContext(&buf)
	reg := routineMap{".echo": func(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
		text := cmd.StringOr("text", "")
		fmt.Fprint(ctx.Output(), "side effect")
		return unitypes.OutputData{Content: text, Format: unitypes.FormatMarkdown}, nil
	}}

	in := New(reg)
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in.now = func() time.Time {
		tick = tick.Add(5 * time.Millisecond)
		return tick
	}

	out, err := in.Execute(verified(".echo", map[string]unitypes.Value{"text": unitypes.StringValue("hi")}), ctx)

	require.NoError(t, err)
	assert.Equal(t, "hi", out.Content)
	assert.Equal(t, unitypes.FormatMarkdown, out.Format)
	assert.Equal(t, 5*time.Millisecond, out.ExecutionTime)
	assert.Equal(t, "side effect", buf.String())
	assert.Equal(t, "hi", ctx.LastOutput())

	count, err := ctx.GetVariable("#command_count")
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}

func TestExecute_DeprecatedCommandStillRuns(t *testing.T) {
	reg := routineMap{".old": func(unitypes.VerifiedCommand, unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.NewTextOutput("done"), nil
	}}
	cmd := unitypes.VerifiedCommand{Definition: &unitypes.CommandDefinition{
		Name:        ".old",
		Status:      unitypes.StatusDeprecated,
		Deprecation: "use .new instead",
	}}

	out, err := New(reg).Execute(cmd, context.NewTestContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "done", out.Content)
}
