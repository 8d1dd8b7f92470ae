package testutils

import (
	"errors"
	"fmt"
	"testing"

	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockContext_Variables(t *testing.T) {
	ctx := NewMockContextWithVars(map[string]string{"name": "Ada"})

	value, err := ctx.GetVariable("name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", value)

	_, err = ctx.GetVariable("missing")
	assert.Error(t, err)

	require.NoError(t, ctx.SetVariable("greeting", "Hi"))
	assert.Equal(t, []string{"greeting", "name"}, ctx.VariableNames())
	assert.Equal(t, "Hi Ada, ", ctx.InterpolateVariables("${greeting} ${name}, ${unknown}"))

	ctx.ClearVariables()
	assert.Empty(t, ctx.GetAllVariables())
}

func TestMockContext_Errors(t *testing.T) {
	ctx := NewMockContext()
	failure := errors.New("injected")

	ctx.SetSetVariableError(failure)
	assert.ErrorIs(t, ctx.SetVariable("a", "b"), failure)

	ctx.SetGetVariableError(failure)
	_, err := ctx.GetVariable("a")
	assert.ErrorIs(t, err, failure)
}

func TestMockContext_OutputAndMode(t *testing.T) {
	ctx := NewMockContext()
	assert.True(t, ctx.IsTestMode())
	assert.Equal(t, MockRunID, ctx.RunID())

	fmt.Fprint(ctx.Output(), "written")
	assert.Equal(t, "written", ctx.Written())

	ctx.SetTestMode(false)
	assert.False(t, ctx.IsTestMode())
}

func TestRoutines(t *testing.T) {
	ctx := NewMockContext()
	cmd := unitypes.VerifiedCommand{Definition: &unitypes.CommandDefinition{Name: ".x"}}

	out, err := StaticRoutine("ok")(cmd, ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Content)

	failure := errors.New("nope")
	_, err = FailingRoutine(failure)(cmd, ctx)
	assert.ErrorIs(t, err, failure)

	recorder := &RoutineRecorder{}
	_, err = recorder.Routine("done")(cmd, ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{".x"}, recorder.Names())
}

func TestDefinitionHelpers(t *testing.T) {
	def := Definition(".deploy", Required("target", unitypes.String), Optional("replicas", unitypes.Integer, "2"))

	assert.Equal(t, ".deploy", def.FullName())
	require.Len(t, def.Arguments, 2)
	assert.True(t, def.Arguments[0].IsRequired())
	assert.False(t, def.Arguments[1].IsRequired())
	require.NotNil(t, def.Arguments[1].Attributes.Default)
	assert.Equal(t, "2", *def.Arguments[1].Attributes.Default)
}

func TestMemFs(t *testing.T) {
	fs := MemFs(t, map[string]string{"/a/b.txt": "content"})

	data, err := afero.ReadFile(fs, "/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}
