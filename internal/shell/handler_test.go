package shell

import (
	"fmt"
	"strings"
	"testing"

	"unilang/internal/commands"
	"unilang/internal/commands/builtin"
	"unilang/internal/context"
	"unilang/internal/output"
	"unilang/internal/pipeline"
	"unilang/internal/services"
	"unilang/pkg/unitypes"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPrompter answers interactive prompts from a fixed list.
type MockPrompter struct {
	lines     []string
	passwords []string
	prompts   strings.Builder
	readLine  int
	readPass  int
}

func (m *MockPrompter) Print(val ...interface{}) {
	m.prompts.WriteString(fmt.Sprint(val...))
}

func (m *MockPrompter) ReadLine() string {
	m.readLine++
	if len(m.lines) == 0 {
		return ""
	}
	line := m.lines[0]
	m.lines = m.lines[1:]
	return line
}

func (m *MockPrompter) ReadPassword() string {
	m.readPass++
	if len(m.passwords) == 0 {
		return ""
	}
	password := m.passwords[0]
	m.passwords = m.passwords[1:]
	return password
}

func setupHandler(t *testing.T) (*Handler, *output.CaptureBuffer) {
	t.Helper()
	reg := commands.NewRegistry()
	require.NoError(t, builtin.RegisterAll(reg))
	require.NoError(t, reg.Register(unitypes.CommandDefinition{
		Name:      "ask",
		Namespace: ".test",
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "answer", Kind: unitypes.String, Attributes: unitypes.ArgumentAttributes{Interactive: true}},
		},
	}, func(cmd unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
		return unitypes.NewTextOutput("answer=" + cmd.StringOr("answer", "")), nil
	}))

	fs := afero.NewMemMapFs()
	options := pipeline.DefaultOptions()
	options.Fs = fs
	p := pipeline.New(reg, options)

	buffer := output.NewCaptureBuffer()
	printer := output.NewPrinter(output.WithWriter(buffer), output.TestMode())
	ctx := context.NewTestContext(buffer)
	ctx.SetFs(fs)
	return NewHandler(p, reg, ctx, printer), buffer
}

func TestExecute_PrintsOutput(t *testing.T) {
	h, buffer := setupHandler(t)

	result := h.Execute(".math.add a::3 b::4", nil)
	require.True(t, result.Success())
	assert.Equal(t, "Result: 7", result.Content())
	assert.True(t, buffer.Contains("Result: 7"))
}

func TestProcessInput_JoinsRawArgs(t *testing.T) {
	h, buffer := setupHandler(t)

	h.ProcessInput(&ishell.Context{RawArgs: []string{".system.echo", `"a`, `b"`}})
	assert.True(t, buffer.Contains("a b"))

	buffer.Reset()
	h.ProcessInput(&ishell.Context{})
	assert.Empty(t, buffer.String())
}

func TestExecute_KeepsWhitespaceInsideQuotes(t *testing.T) {
	h, _ := setupHandler(t)

	result := h.Execute(`.system.echo "a   b"`, nil)
	require.True(t, result.Success(), "error: %v", result.Err)
	assert.Equal(t, "a   b", result.Content())
}

func TestExecute_SkipsCommentsAndBlankLines(t *testing.T) {
	h, buffer := setupHandler(t)

	tests := []string{"", "   ", "# a comment", "  # indented comment"}
	for _, input := range tests {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			result := h.Execute(input, nil)
			assert.True(t, result.Success())
			assert.Empty(t, result.Outputs)
		})
	}
	assert.Empty(t, buffer.String())
}

func TestExecute_ReportsErrors(t *testing.T) {
	h, buffer := setupHandler(t)

	result := h.Execute(".nope", nil)
	require.False(t, result.Success())
	assert.Equal(t, unitypes.ErrCodeCommandNotFound, result.Code())
	assert.True(t, buffer.Contains(string(unitypes.ErrCodeCommandNotFound)))
	assert.True(t, buffer.Contains("Type ? for available commands"))
}

func TestExecute_HelpHasNoHint(t *testing.T) {
	h, buffer := setupHandler(t)

	result := h.Execute(".greet ?", nil)
	require.True(t, result.Success())
	assert.True(t, result.Help)
	assert.True(t, buffer.Contains(".greet"))
	assert.False(t, buffer.Contains("Type ? for available commands"))
}

func TestExecute_PromptsForInteractiveArgument(t *testing.T) {
	h, buffer := setupHandler(t)
	prompter := &MockPrompter{lines: []string{`say "hi"`}}

	result := h.Execute(".test.ask", prompter)
	require.True(t, result.Success(), "error: %v", result.Err)
	assert.Equal(t, `answer=say "hi"`, result.Content())
	assert.Equal(t, 1, prompter.readLine)
	assert.Equal(t, 0, prompter.readPass)
	assert.Contains(t, prompter.prompts.String(), "answer: ")
	assert.True(t, buffer.Contains(`answer=say "hi"`))
}

func TestExecute_SensitiveArgumentUsesPassword(t *testing.T) {
	h, buffer := setupHandler(t)
	prompter := &MockPrompter{passwords: []string{"dark"}}

	result := h.Execute(".config.set key::theme", prompter)
	require.True(t, result.Success(), "error: %v", result.Err)
	assert.Equal(t, 1, prompter.readPass)
	assert.Equal(t, 0, prompter.readLine)
	assert.False(t, buffer.Contains("dark"))

	result = h.Execute(".config.get key::theme", nil)
	require.True(t, result.Success())
	assert.Equal(t, "dark", result.Content())
}

func TestExecute_EmptyAnswerCancels(t *testing.T) {
	h, buffer := setupHandler(t)
	prompter := &MockPrompter{}

	result := h.Execute(".test.ask", prompter)
	require.False(t, result.Success())
	assert.Equal(t, unitypes.ErrCodeArgumentInteractiveRequired, result.Code())
	assert.True(t, buffer.Contains("Cancelled: no value entered for answer"))
}

func TestExecute_WithoutPrompterReportsInteractiveError(t *testing.T) {
	h, _ := setupHandler(t)

	result := h.Execute(".test.ask", nil)
	assert.Equal(t, unitypes.ErrCodeArgumentInteractiveRequired, result.Code())
}

func TestExecute_SharesContextAcrossInputs(t *testing.T) {
	h, _ := setupHandler(t)

	require.True(t, h.Execute(`.system.echo "Ada" to::name`, nil).Success())
	result := h.Execute(`.system.echo "Hi ${name}"`, nil)
	require.True(t, result.Success())
	assert.Equal(t, "Hi Ada", result.Content())

	value, err := h.Context().GetVariable("name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", value)
}

func TestAppendArgument(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"plain", "dark", `.cmd key::"dark"`},
		{"spaces", "a b", `.cmd key::"a b"`},
		{"quotes", `say "hi"`, `.cmd key::"say \"hi\""`},
		{"backslash", `C:\tmp`, `.cmd key::"C:\\tmp"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AppendArgument(".cmd", "key", tt.value))
		})
	}
}

func TestInitializeServices(t *testing.T) {
	original := services.GlobalRegistry
	t.Cleanup(func() { services.GlobalRegistry = original })

	registry := services.NewRegistry()
	services.GlobalRegistry = registry
	require.NoError(t, registry.RegisterService(services.NewHelpService(nil)))
	require.NoError(t, registry.RegisterService(services.NewMarkdownService()))

	require.NoError(t, InitializeServices(true))

	help, err := registry.GetService("help")
	require.NoError(t, err)
	assert.Equal(t, "help", help.Name())
}
