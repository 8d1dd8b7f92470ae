package builtin

import (
	"bytes"
	"testing"

	"unilang/internal/commands"
	"unilang/internal/context"
	"unilang/internal/interpreter"
	"unilang/internal/parser"
	"unilang/internal/semantic"
	"unilang/internal/version"
	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	registry *commands.Registry
	fs       afero.Fs
	ctx      *context.ExecutionContext
	out      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg := commands.NewRegistry()
	require.NoError(t, RegisterAll(reg))

	var out bytes.Buffer
	fs := afero.NewMemMapFs()
	ctx := context.NewTestContext(&out)
	ctx.SetFs(fs)
	return &harness{registry: reg, fs: fs, ctx: ctx, out: &out}
}

func (h *harness) run(t *testing.T, input string) (unitypes.OutputData, error) {
	t.Helper()
	instruction, err := parser.ParseSingleInstruction(input)
	require.NoError(t, err)

	verified, err := semantic.NewAnalyzer(h.registry, h.fs).Analyze([]parser.GenericInstruction{instruction})
	if err != nil {
		return unitypes.OutputData{}, err
	}
	outputs, err := interpreter.Run(verified, h.registry, h.ctx)
	if err != nil {
		return unitypes.OutputData{}, err
	}
	require.Len(t, outputs, 1)
	return outputs[0], nil
}

func (h *harness) content(t *testing.T, input string) string {
	t.Helper()
	out, err := h.run(t, input)
	require.NoError(t, err)
	return out.Content
}

func TestRegisterAll(t *testing.T) {
	reg := commands.NewRegistry()
	require.NoError(t, RegisterAll(reg))

	for _, name := range []string{
		".math.add", ".math.sum", ".math.plus", ".math.sub", ".math.minus",
		".greet", ".hi", ".config.set", ".config.get", ".system.echo", ".system.e",
		".files.cat", ".files.type", ".text.diff", ".version",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
	for _, cmd := range All() {
		def := cmd.Definition()
		_, ok := reg.RoutineFor(def.FullName())
		assert.True(t, ok, def.FullName())
	}

	err := RegisterAll(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestGlobalRegistryHasBuiltins(t *testing.T) {
	_, ok := commands.GlobalRegistry.Lookup(".math.add")
	assert.True(t, ok)
}

func TestMathCommands(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"named", ".math.add a::3 b::4", "Result: 7"},
		{"positional", ".math.add 10 20", "Result: 30"},
		{"alias", ".math.sum a::-2 b::2", "Result: 0"},
		{"second alias", ".math.plus 1 b::1", "Result: 2"},
		{"sub", ".math.sub x::10 y::4", "Result: 6"},
		{"sub alias", ".math.minus 1 5", "Result: -4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.content(t, tt.input))
		})
	}
}

func TestMathCommands_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, ".math.add a::x b::1")
	assert.Equal(t, unitypes.ErrCodeArgumentTypeMismatch, unitypes.CodeOf(err))

	_, err = h.run(t, ".math.add a::1")
	assert.Equal(t, unitypes.ErrCodeArgumentMissing, unitypes.CodeOf(err))
}

func TestGreetCommand(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Hello, World!", h.content(t, ".greet"))
	assert.Equal(t, "Hello, Alice!", h.content(t, `.greet name::"Alice"`))
	assert.Equal(t, "Hello, Bob!", h.content(t, ".hi Bob"))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Setting config: theme = ****", h.content(t, ".config.set key::theme value::dark"))
	assert.Equal(t, "dark", h.content(t, ".config.get key::theme"))

	_, err := h.run(t, ".config.set key::theme")
	command, argument, ok := semantic.IsInteractiveRequired(err)
	require.True(t, ok)
	assert.Equal(t, ".config.set", command)
	assert.Equal(t, "value", argument)

	_, err = h.run(t, ".config.get key::missing")
	assert.Equal(t, unitypes.ErrCodeVariableNotFound, unitypes.CodeOf(err))

	_, err = h.run(t, `.config.set key::"bad key" value::x`)
	assert.Equal(t, unitypes.ErrCodeValidationRuleFailed, unitypes.CodeOf(err))
}

func TestEchoCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctx.SetVariable("name", "World"))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `.system.echo "Hello"`, "Hello"},
		{"empty", ".system.echo", ""},
		{"interpolated", `.system.echo "Hello, ${name}!"`, "Hello, World!"},
		{"raw", `.system.echo raw::true "${name}"`, "${name}"},
		{"alias", `.system.e arg1::hi`, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.content(t, tt.input))
		})
	}
}

func TestEchoCommand_StoresResult(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctx.SetVariable("name", "Ada"))

	assert.Equal(t, "Hi Ada", h.content(t, `.system.echo "Hi ${name}" to::greeting`))
	value, err := h.ctx.GetVariable("greeting")
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada", value)

	_, err = h.run(t, `.system.echo x to::@pwd`)
	assert.Equal(t, unitypes.ErrCodeInternalError, unitypes.CodeOf(err))
}

func TestCatCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/notes.txt", []byte("one\ntwo\nthree\nfour\n"), 0o644))
	require.NoError(t, h.fs.MkdirAll("/dir", 0o755))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"whole file", ".files.cat path::/notes.txt", "one\ntwo\nthree\nfour\n"},
		{"positional", ".files.cat /notes.txt", "one\ntwo\nthree\nfour\n"},
		{"alias", ".files.type p::/notes.txt lines::2", "one\ntwo"},
		{"start", ".files.cat /notes.txt start::3", "three\nfour"},
		{"window", ".files.cat /notes.txt start::2 lines::2", "two\nthree"},
		{"past end", ".files.cat /notes.txt start::9", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.content(t, tt.input))
		})
	}

	_, err := h.run(t, ".files.cat /missing.txt")
	assert.Equal(t, unitypes.ErrCodeArgumentTypeMismatch, unitypes.CodeOf(err))
	_, err = h.run(t, ".files.cat /dir")
	assert.Equal(t, unitypes.ErrCodeArgumentTypeMismatch, unitypes.CodeOf(err))
	_, err = h.run(t, ".files.cat /notes.txt lines::0")
	assert.Equal(t, unitypes.ErrCodeValidationRuleFailed, unitypes.CodeOf(err))
}

func TestCatCommand_FsOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.txt", []byte("override"), 0o644))
	cmd := &CatCommand{Fs: fs}

	out, err := cmd.Execute(unitypes.VerifiedCommand{
		Definition: &unitypes.CommandDefinition{Name: ".files.cat"},
		Arguments: map[string]unitypes.Value{
			"path":  unitypes.FileValue("/a.txt"),
			"start": unitypes.IntegerValue(1),
		},
	}, context.NewTestContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "override", out.Content)

	_, err = cmd.Execute(unitypes.VerifiedCommand{
		Definition: &unitypes.CommandDefinition{Name: ".files.cat"},
		Arguments: map[string]unitypes.Value{
			"path":  unitypes.FileValue("/gone.txt"),
			"start": unitypes.IntegerValue(1),
		},
	}, context.NewTestContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read file: /gone.txt")
}

func TestDiffCommand(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "ab[-c-]{+d+}", h.content(t, ".text.diff old::abc new::abd"))
	assert.Equal(t, "ab{+c+}", h.content(t, ".text.diff ab abc"))
	assert.Equal(t, "same", h.content(t, ".text.diff same same semantic::false"))
}

func TestRenderDiff(t *testing.T) {
	assert.Equal(t, "", renderDiff("", "", true))
	assert.Equal(t, "{+new+}", renderDiff("", "new", true))
	assert.Equal(t, "[-old-]", renderDiff("old", "", false))
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, version.GetFormattedVersion(), h.content(t, ".version"))
	assert.Equal(t, version.GetDetailedVersion(), h.content(t, ".version detailed::true"))

	value, err := h.ctx.GetVariable("#version")
	require.NoError(t, err)
	assert.Equal(t, version.GetVersion(), value)
	value, err = h.ctx.GetVariable("#version_base")
	require.NoError(t, err)
	assert.Equal(t, version.GetBaseVersion(), value)
}
