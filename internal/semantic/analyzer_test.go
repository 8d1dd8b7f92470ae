package semantic

import (
	"testing"

	"unilang/internal/commands"
	"unilang/internal/parser"
	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *commands.Registry {
	t.Helper()
	registry := commands.NewRegistry()
	defs := []unitypes.CommandDefinition{
		{
			Name: "add", Namespace: ".math", Aliases: []string{"sum"},
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "a", Kind: unitypes.Integer},
				{Name: "b", Kind: unitypes.Integer},
			},
		},
		{
			Name: ".greet",
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "name", Kind: unitypes.String, Attributes: unitypes.ArgumentAttributes{Default: unitypes.StringPtr("World")}},
			},
		},
		{
			Name: ".login",
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "user", Kind: unitypes.String},
				{Name: "password", Kind: unitypes.String, Attributes: unitypes.ArgumentAttributes{Interactive: true, Sensitive: true}},
			},
		},
		{
			Name: ".tag",
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "label", Kind: unitypes.String, Aliases: []string{"l"}},
				{Name: "items", Kind: unitypes.List(unitypes.Integer, 0), Attributes: unitypes.ArgumentAttributes{Multiple: true, Optional: true}},
			},
		},
		{
			Name: ".search",
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "query", Kind: unitypes.String, ValidationRules: []unitypes.ValidationRule{unitypes.MinLength(2)}},
				{Name: "limit", Kind: unitypes.Integer, Attributes: unitypes.ArgumentAttributes{Optional: true},
					ValidationRules: []unitypes.ValidationRule{unitypes.Min(1), unitypes.Max(100)}},
				{Name: "verbose", Kind: unitypes.Boolean, Attributes: unitypes.ArgumentAttributes{Optional: true}},
			},
		},
		{
			Name: ".open",
			Arguments: []unitypes.ArgumentDefinition{
				{Name: "file", Kind: unitypes.File, Attributes: unitypes.ArgumentAttributes{Optional: true}},
				{Name: "dir", Kind: unitypes.Directory, Attributes: unitypes.ArgumentAttributes{Optional: true}},
			},
		},
	}
	for _, def := range defs {
		require.NoError(t, registry.Register(def, nil))
	}
	return registry
}

func analyzeText(t *testing.T, registry CommandRegistry, fs afero.Fs, input string) ([]unitypes.VerifiedCommand, error) {
	t.Helper()
	instructions, err := parser.ParseSingleStr(input)
	require.NoError(t, err)
	return NewAnalyzer(registry, fs).Analyze(instructions)
}

func semanticError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	semErr, ok := err.(*Error)
	require.True(t, ok, "expected *semantic.Error, got %T", err)
	return semErr
}

func TestAnalyze_BindsNamedArguments(t *testing.T) {
	verified, err := analyzeText(t, testRegistry(t), nil, ".math.add a::3 b::4")
	require.NoError(t, err)
	require.Len(t, verified, 1)

	cmd := verified[0]
	assert.Equal(t, ".math.add", cmd.Name())
	a, err := cmd.Integer("a")
	require.NoError(t, err)
	b, err := cmd.Integer("b")
	require.NoError(t, err)
	assert.Equal(t, int64(7), a+b)
}

func TestAnalyze_BindsPositionalsInOrder(t *testing.T) {
	verified, err := analyzeText(t, testRegistry(t), nil, ".math.sum 10 20")
	require.NoError(t, err)
	require.Len(t, verified, 1)

	assert.Equal(t, ".math.add", verified[0].Name())
	assert.Equal(t, unitypes.IntegerValue(10), verified[0].Arguments["a"])
	assert.Equal(t, unitypes.IntegerValue(20), verified[0].Arguments["b"])
}

func TestAnalyze_PositionalsSkipNamedParameters(t *testing.T) {
	verified, err := analyzeText(t, testRegistry(t), nil, ".math.add 5 a::1")
	require.NoError(t, err)
	assert.Equal(t, unitypes.IntegerValue(1), verified[0].Arguments["a"])
	assert.Equal(t, unitypes.IntegerValue(5), verified[0].Arguments["b"])
}

func TestAnalyze_Defaults(t *testing.T) {
	registry := testRegistry(t)

	verified, err := analyzeText(t, registry, nil, ".greet")
	require.NoError(t, err)
	assert.Equal(t, "World", verified[0].StringOr("name", ""))

	verified, err = analyzeText(t, registry, nil, `.greet "Jane Doe"`)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", verified[0].StringOr("name", ""))
}

func TestAnalyze_OptionalWithoutDefaultIsUnbound(t *testing.T) {
	verified, err := analyzeText(t, testRegistry(t), nil, ".search query::cats")
	require.NoError(t, err)
	assert.False(t, verified[0].Has("limit"))
	assert.False(t, verified[0].Has("verbose"))
}

func TestAnalyze_CommandNotFound(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		command    string
		suggestion string
	}{
		{name: "typo", input: ".math.ad a::1", command: ".math.ad", suggestion: ".math.add"},
		{name: "unknown with help", input: ".nope ?", command: ".nope", suggestion: ".open"},
		{name: "distant name", input: ".zzzzzzzz", command: ".zzzzzzzz"},
		{name: "not a path", input: `"quoted" x`, command: "quoted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzeText(t, testRegistry(t), nil, tt.input)
			semErr := semanticError(t, err)
			assert.Equal(t, unitypes.ErrCodeCommandNotFound, semErr.Code)
			assert.Equal(t, tt.command, semErr.Command)
			assert.Contains(t, semErr.Message, "Command Error: The command '"+tt.command+"' was not found.")
			assert.Equal(t, tt.suggestion, semErr.Suggestion)
			if tt.suggestion != "" {
				assert.Contains(t, semErr.Message, "Did you mean '"+tt.suggestion+"'?")
			}
		})
	}
}

func TestAnalyze_NamedArgumentsWithoutPath(t *testing.T) {
	_, err := analyzeText(t, testRegistry(t), nil, "a::1")
	semErr := semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeCommandNotFound, semErr.Code)
	assert.Empty(t, semErr.Command)
	assert.Contains(t, semErr.Message, "No command path was given")
	assert.NotContains(t, semErr.Message, "The command ''")
}

func TestAnalyze_HelpRequests(t *testing.T) {
	registry := testRegistry(t)

	_, err := analyzeText(t, registry, nil, ".math.add ?")
	command, ok := IsHelpRequest(err)
	require.True(t, ok)
	assert.Equal(t, ".math.add", command)

	_, err = analyzeText(t, registry, nil, ".math.sum a::??")
	command, ok = IsHelpRequest(err)
	require.True(t, ok)
	assert.Equal(t, ".math.add", command)

	for _, input := range []string{".", "?"} {
		_, err = analyzeText(t, registry, nil, input)
		command, ok = IsHelpRequest(err)
		require.True(t, ok, input)
		assert.Equal(t, "", command)
	}
}

func TestAnalyze_MissingAndInteractive(t *testing.T) {
	registry := testRegistry(t)

	_, err := analyzeText(t, registry, nil, ".math.add a::1")
	semErr := semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeArgumentMissing, semErr.Code)
	assert.Equal(t, "Argument Error: The required argument 'b' is missing. Please provide a value for this argument.", semErr.Message)
	assert.Greater(t, semErr.Location.Len(), 0)

	_, err = analyzeText(t, registry, nil, ".login user::admin")
	semErr = semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeArgumentInteractiveRequired, semErr.Code)
	command, argument, ok := IsInteractiveRequired(err)
	require.True(t, ok)
	assert.Equal(t, ".login", command)
	assert.Equal(t, "password", argument)

	_, _, ok = IsInteractiveRequired(assert.AnError)
	assert.False(t, ok)

	verified, err := analyzeText(t, registry, nil, ".login user::admin password::secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", verified[0].StringOr("password", ""))
}

func TestAnalyze_TypeMismatch(t *testing.T) {
	_, err := analyzeText(t, testRegistry(t), nil, ".math.add a::three b::4")
	semErr := semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeArgumentTypeMismatch, semErr.Code)
	assert.Equal(t, "a", semErr.Argument)
	assert.Contains(t, semErr.Message, "Argument 'a' expects Integer but got 'three'")
	assert.Equal(t, parser.StrSpan(13, 18), semErr.Location)
}

func TestAnalyze_TypeMismatchRedactsSensitive(t *testing.T) {
	registry := commands.NewRegistry()
	require.NoError(t, registry.Register(unitypes.CommandDefinition{
		Name: ".pin",
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "code", Kind: unitypes.Integer, Attributes: unitypes.ArgumentAttributes{Sensitive: true}},
		},
	}, nil))

	_, err := analyzeText(t, registry, nil, ".pin code::hunter2")
	semErr := semanticError(t, err)
	assert.NotContains(t, semErr.Message, "hunter2")
}

func TestAnalyze_MultipleAccumulatesInOrder(t *testing.T) {
	registry := testRegistry(t)

	verified, err := analyzeText(t, registry, nil, `.tag label::x items::"1" items::"2,3" items::"4"`)
	require.NoError(t, err)
	items, err := verified[0].List("items")
	require.NoError(t, err)
	assert.Equal(t, unitypes.ListValue{
		unitypes.IntegerValue(1), unitypes.IntegerValue(2), unitypes.IntegerValue(3), unitypes.IntegerValue(4),
	}, items)

	verified, err = analyzeText(t, registry, nil, ".tag x 5 6 7")
	require.NoError(t, err)
	items, err = verified[0].List("items")
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "x", verified[0].StringOr("label", ""))
}

func TestAnalyze_MultipleWithScalarKindIsNeverTruncated(t *testing.T) {
	def := &unitypes.CommandDefinition{
		Name: ".raw",
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "v", Kind: unitypes.Integer, Attributes: unitypes.ArgumentAttributes{Multiple: true}},
		},
	}
	registry := fakeRegistry{def.FullName(): def}

	verified, err := analyzeText(t, registry, nil, ".raw v::1 v::2 v::3")
	require.NoError(t, err)
	items, err := verified[0].List("v")
	require.NoError(t, err)
	assert.Equal(t, unitypes.ListValue{unitypes.IntegerValue(1), unitypes.IntegerValue(2), unitypes.IntegerValue(3)}, items)
}

func TestAnalyze_NoSilentOverwrite(t *testing.T) {
	_, err := analyzeText(t, testRegistry(t), nil, ".math.add a::1 a::2 b::3")
	semErr := semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeArgumentAmbiguous, semErr.Code)
	assert.Equal(t, "a", semErr.Argument)
	assert.Contains(t, semErr.Message, "provided 2 times")

	_, err = analyzeText(t, testRegistry(t), nil, ".tag label::a l::b")
	semErr = semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeArgumentAmbiguous, semErr.Code)
	assert.Equal(t, "label", semErr.Argument)
}

func TestAnalyze_TooManyArguments(t *testing.T) {
	_, err := analyzeText(t, testRegistry(t), nil, ".math.add 1 2 3")
	semErr := semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeTooManyArguments, semErr.Code)
	assert.Equal(t, parser.StrSpan(14, 15), semErr.Location)
}

func TestAnalyze_UnknownParameters(t *testing.T) {
	registry := testRegistry(t)

	_, err := analyzeText(t, registry, nil, ".search qurey::cats")
	semErr := semanticError(t, err)
	assert.Equal(t, unitypes.ErrCodeUnknownParameter, semErr.Code)
	assert.Equal(t, "Argument Error: Unknown parameter 'qurey'. Did you mean 'query'? Use '.search ??' for help.", semErr.Message)
	assert.Equal(t, "query", semErr.Suggestion)

	_, err = analyzeText(t, registry, nil, ".search query::cats colour::red")
	semErr = semanticError(t, err)
	assert.Equal(t, "Argument Error: Unknown parameter 'colour'. Use '.search ??' to see valid parameters.", semErr.Message)

	_, err = analyzeText(t, registry, nil, ".search query::cats zz::1 aa::2")
	semErr = semanticError(t, err)
	assert.Equal(t, "Argument Error: Unknown parameters: 'aa', 'zz'. Use '.search ??' to see valid parameters.", semErr.Message)
}

func TestAnalyze_ValidationRules(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{
			name:    "min",
			input:   ".search query::cats limit::0",
			message: "Validation Error: Argument 'limit' has value 0 which is less than the minimum allowed value of 1. Please provide a value >= 1.",
		},
		{
			name:    "max",
			input:   ".search query::cats limit::500",
			message: "Validation Error: Argument 'limit' has value 500 which exceeds the maximum allowed value of 100. Please provide a value <= 100.",
		},
		{
			name:    "min length",
			input:   ".search query::a",
			message: "Validation Error: Argument 'query' has length 1 which is less than the minimum required length of 2. Please provide a value with at least 2 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzeText(t, testRegistry(t), nil, tt.input)
			semErr := semanticError(t, err)
			assert.Equal(t, unitypes.ErrCodeValidationRuleFailed, semErr.Code)
			assert.Equal(t, tt.message, semErr.Message)
		})
	}

	verified, err := analyzeText(t, testRegistry(t), nil, ".search query::cats limit::100 verbose::yes")
	require.NoError(t, err)
	v, err := verified[0].Boolean("verbose")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestAnalyze_FileAndDirectoryUseInjectedFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/notes.txt", []byte("hi"), 0o644))
	require.NoError(t, fs.MkdirAll("/data/sub", 0o755))
	registry := testRegistry(t)

	verified, err := analyzeText(t, registry, fs, ".open file::/data/notes.txt dir::/data/sub")
	require.NoError(t, err)
	path, err := verified[0].Path("file")
	require.NoError(t, err)
	assert.Equal(t, "/data/notes.txt", path)

	for _, input := range []string{
		".open file::/data/missing.txt",
		".open file::/data/sub",
		".open dir::/data/notes.txt",
	} {
		_, err := analyzeText(t, registry, fs, input)
		semErr := semanticError(t, err)
		assert.Equal(t, unitypes.ErrCodeArgumentTypeMismatch, semErr.Code, input)
	}
}

func TestAnalyze_StopsAtFirstFailure(t *testing.T) {
	verified, err := analyzeText(t, testRegistry(t), nil, ".greet ;; .math.add a::1 ;; .greet")
	require.Error(t, err)
	assert.Nil(t, verified)
}

func TestAnalyze_Deterministic(t *testing.T) {
	registry := testRegistry(t)
	input := `.search query::"hello world" limit::5 ;; .tag l::x 1 2`

	first, err := analyzeText(t, registry, nil, input)
	require.NoError(t, err)
	second, err := analyzeText(t, registry, nil, input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type fakeRegistry map[string]*unitypes.CommandDefinition

func (f fakeRegistry) Lookup(path string) (*unitypes.CommandDefinition, bool) {
	def, ok := f[path]
	return def, ok
}

func (f fakeRegistry) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	return names
}
