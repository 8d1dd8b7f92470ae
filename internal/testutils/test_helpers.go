package testutils

import (
	"sync"
	"testing"

	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Definition builds a command definition for tests. Dotted names are full paths.
func Definition(name string, args ...unitypes.ArgumentDefinition) unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        name,
		Description: "Test command " + name,
		Status:      unitypes.StatusStable,
		Version:     "1.0.0",
		Arguments:   args,
	}
}

// Required builds a required argument of kind.
func Required(name string, kind unitypes.Kind) unitypes.ArgumentDefinition {
	return unitypes.ArgumentDefinition{Name: name, Kind: kind}
}

// Optional builds an optional argument with an optional default value.
func Optional(name string, kind unitypes.Kind, def ...string) unitypes.ArgumentDefinition {
	arg := unitypes.ArgumentDefinition{Name: name, Kind: kind, Attributes: unitypes.ArgumentAttributes{Optional: true}}
	if len(def) > 0 {
		arg.Attributes.Default = unitypes.StringPtr(def[0])
	}
	return arg
}

// StaticRoutine returns a routine that always outputs content.
func StaticRoutine(content string) unitypes.Routine {
	return func(_ unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.NewTextOutput(content), nil
	}
}

// FailingRoutine returns a routine that always fails with err.
func FailingRoutine(err error) unitypes.Routine {
	return func(_ unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.OutputData{}, err
	}
}

// RoutineRecorder records the commands its routines receive.
type RoutineRecorder struct {
	mu    sync.Mutex
	calls []unitypes.VerifiedCommand
}

// Routine returns a routine that records each call and outputs content.
func (r *RoutineRecorder) Routine(content string) unitypes.Routine {
	return func(cmd unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, cmd)
		return unitypes.NewTextOutput(content), nil
	}
}

// Calls returns the recorded commands in call order.
func (r *RoutineRecorder) Calls() []unitypes.VerifiedCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]unitypes.VerifiedCommand(nil), r.calls...)
}

// Names returns the full names of the recorded commands.
func (r *RoutineRecorder) Names() []string {
	calls := r.Calls()
	names := make([]string, 0, len(calls))
	for _, cmd := range calls {
		names = append(names, cmd.Name())
	}
	return names
}

// MemFs creates an in-memory filesystem holding files, keyed by absolute path.
func MemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644), "Should create file %s", path)
	}
	return fs
}
