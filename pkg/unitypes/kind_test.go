package unitypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{input: "String", expected: String},
		{input: "Integer", expected: Integer},
		{input: " Float ", expected: Float},
		{input: "Url", expected: URL},
		{input: "JsonString", expected: JSONString},
		{input: "Enum(a,b,c)", expected: Enum("a", "b", "c")},
		{input: "Enum( low , high )", expected: Enum("low", "high")},
		{input: "List(Integer)", expected: List(Integer, 0)},
		{input: "List(String,;)", expected: List(String, ';')},
		{input: "List(String,)", expected: List(String, ',')},
		{input: "Map(String,Integer)", expected: Map(String, Integer, 0, 0)},
		{input: "Map(String,Integer,;,:)", expected: Map(String, Integer, ';', ':')},
		{input: "List(Enum(a,b))", expected: List(Enum("a", "b"), 0)},
		{input: "List(Enum(a,b),;)", expected: List(Enum("a", "b"), ';')},
		{input: "Map(String,List(Integer))", expected: Map(String, List(Integer, 0), 0, 0)},
		{input: "Map(Enum(x,y),List(Integer,;),|,:)", expected: Map(Enum("x", "y"), List(Integer, ';'), '|', ':')},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(kind), "got %s, want %s", kind, tt.expected)
		})
	}
}

func TestParseKind_Errors(t *testing.T) {
	for _, input := range []string{"", "Complex", "Enum()", "List()", "Map(String)", "List(Complex)", "Enum(a"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseKind(input)
			assert.Error(t, err)
		})
	}
}

func TestKind_StringRoundTrip(t *testing.T) {
	kinds := []Kind{
		String, Boolean, Path, File, Directory, DateTime, Pattern, Object,
		Enum("x", "y"), List(Float, 0), List(Path, '|'), Map(String, Boolean, 0, 0), Map(String, String, ';', ':'),
		List(Enum("a", "b"), 0), Map(String, List(Integer, 0), 0, 0),
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			parsed, err := ParseKind(kind.String())
			require.NoError(t, err)
			assert.Equal(t, kind.String(), parsed.String())
		})
	}
}

func TestKind_Delimiters(t *testing.T) {
	assert.Equal(t, ',', List(String, 0).ListDelimiter())
	assert.Equal(t, ';', List(String, ';').ListDelimiter())

	m := Map(String, Integer, 0, 0)
	assert.Equal(t, ',', m.EntryDelimiter())
	assert.Equal(t, '=', m.KeyValueDelimiter())

	assert.Equal(t, KindInteger, List(Integer, 0).ItemKind().Type)
	assert.Equal(t, KindBoolean, Boolean.ItemKind().Type)
}

func TestKind_YAML(t *testing.T) {
	var holder struct {
		Kind Kind `yaml:"kind"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("kind: List(Integer,;)"), &holder))
	assert.True(t, holder.Kind.IsList())
	assert.Equal(t, ';', holder.Kind.ListDelimiter())

	out, err := yaml.Marshal(holder)
	require.NoError(t, err)
	assert.Contains(t, string(out), "List(Integer,;)")

	assert.Error(t, yaml.Unmarshal([]byte("kind: Nope"), &holder))
}

func TestParseValidationRule(t *testing.T) {
	tests := []struct {
		input    string
		expected ValidationRule
	}{
		{input: "min:1", expected: Min(1)},
		{input: "max:2.5", expected: Max(2.5)},
		{input: "min_length:2", expected: MinLength(2)},
		{input: "max_length: 8", expected: MaxLength(8)},
		{input: "pattern:^a:b$", expected: MatchPattern("^a:b$")},
		{input: "min_items:1", expected: MinItems(1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rule, err := ParseValidationRule(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rule)
		})
	}

	for _, bad := range []string{"min", "min:x", "min_length:-1", "between:1"} {
		_, err := ParseValidationRule(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidationRule_String(t *testing.T) {
	assert.Equal(t, "min:1", Min(1).String())
	assert.Equal(t, "max:2.5", Max(2.5).String())
	assert.Equal(t, "min_length:3", MinLength(3).String())
	assert.Equal(t, "pattern:^[a-z]+$", MatchPattern("^[a-z]+$").String())
}

func TestCommandDefinition_FullName(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		expected  string
	}{
		{name: ".greet", expected: ".greet"},
		{name: "add", namespace: ".math", expected: ".math.add"},
		{name: ".add", namespace: ".math", expected: ".math.add"},
		{name: "greet", expected: "greet"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			def := CommandDefinition{Name: tt.name, Namespace: tt.namespace}
			assert.Equal(t, tt.expected, def.FullName())
		})
	}
}

func TestCommandDefinition_Argument(t *testing.T) {
	def := CommandDefinition{
		Name: ".cmd",
		Arguments: []ArgumentDefinition{
			{Name: "verbose", Aliases: []string{"v"}, Kind: Boolean, Attributes: ArgumentAttributes{Optional: true}},
			{Name: "name", Kind: String, Attributes: ArgumentAttributes{Default: StringPtr("x")}},
			{Name: "path", Kind: Path},
		},
	}

	arg, ok := def.Argument("v")
	require.True(t, ok)
	assert.Equal(t, "verbose", arg.Name)
	assert.False(t, arg.IsRequired())

	arg, ok = def.Argument("name")
	require.True(t, ok)
	assert.False(t, arg.IsRequired())

	arg, ok = def.Argument("path")
	require.True(t, ok)
	assert.True(t, arg.IsRequired())

	_, ok = def.Argument("missing")
	assert.False(t, ok)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, ErrCodeTooManyArguments, CodeOf(NewErrorData(ErrCodeTooManyArguments, "too many")))
	assert.Equal(t, ErrCodeInternalError, CodeOf(assert.AnError))

	wrapped := WrapError(ErrCodeTypeMismatch, assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Equal(t, "[UNILANG_TYPE_MISMATCH] "+assert.AnError.Error(), wrapped.Error())
}
