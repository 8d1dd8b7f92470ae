package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unilang/internal/commands"
	"unilang/pkg/unitypes"
)

type mapVariables map[string]string

func (m mapVariables) GetAllVariables() map[string]string {
	return m
}

func newTestAutoComplete(t *testing.T) *AutoCompleteService {
	t.Helper()
	registry := commands.NewRegistry()
	require.NoError(t, registry.Register(unitypes.CommandDefinition{
		Name:      "add",
		Namespace: ".math",
		Aliases:   []string{"sum"},
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "a", Kind: unitypes.Integer, Aliases: []string{"first"}},
			{Name: "b", Kind: unitypes.Integer},
		},
	}, nil))
	require.NoError(t, registry.Register(unitypes.CommandDefinition{Name: ".greet"}, nil))
	require.NoError(t, registry.Register(unitypes.CommandDefinition{
		Name:      "fmt",
		Namespace: ".text",
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "mode", Kind: unitypes.Enum("upper", "lower")},
			{Name: "quiet", Kind: unitypes.Boolean, Attributes: unitypes.ArgumentAttributes{Optional: true}},
		},
	}, nil))

	service := NewAutoCompleteService(registry, mapVariables{"name": "x", "nat": "y", "other": "z"})
	require.NoError(t, service.Initialize())
	return service
}

func suffixes(suggestions [][]rune) []string {
	result := make([]string, len(suggestions))
	for i, s := range suggestions {
		result[i] = string(s)
	}
	return result
}

func TestAutoCompleteService_Initialize(t *testing.T) {
	service := NewAutoCompleteService(nil, nil)
	assert.Equal(t, "autocomplete", service.Name())

	suggestions, offset := service.Do([]rune(".ma"), 3)
	assert.Nil(t, suggestions)
	assert.Equal(t, 0, offset)

	require.NoError(t, service.Initialize())
	assert.Same(t, commands.GlobalRegistry, service.catalog)
}

func TestAutoCompleteService_Do(t *testing.T) {
	service := newTestAutoComplete(t)

	tests := []struct {
		name           string
		line           string
		expected       []string
		expectedOffset int
	}{
		{"empty line lists commands", "", []string{".greet", ".math.add", ".math.sum", ".text.fmt"}, 0},
		{"dotted prefix", ".ma", []string{"th.add", "th.sum"}, 3},
		{"dotless prefix", "math.a", []string{"dd"}, 6},
		{"argument names", ".math.add ", []string{"a::", "b::", "first::"}, 0},
		{"skips supplied arguments", ".math.add a::1 ", []string{"b::"}, 0},
		{"argument alias", ".math.sum f", []string{"irst::"}, 1},
		{"dotless command arguments", "math.add b", []string{"::"}, 1},
		{"enum values", ".text.fmt mode::u", []string{"pper"}, 7},
		{"boolean values", ".text.fmt quiet::", []string{"false", "true"}, 7},
		{"after separator", ".greet ;; .te", []string{"xt.fmt"}, 3},
		{"variables", ".greet ${na", []string{"me}", "t}"}, 4},
		{"unicode before variable", `.greet "héllo ${o`, []string{"ther}"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := []rune(tt.line)
			suggestions, offset := service.Do(line, len(line))
			assert.Equal(t, tt.expected, suffixes(suggestions))
			assert.Equal(t, tt.expectedOffset, offset)
		})
	}
}

func TestAutoCompleteService_NoCompletions(t *testing.T) {
	service := newTestAutoComplete(t)

	for _, line := range []string{".nope ", ".math.add c", ".math.add a::", ".zzz"} {
		t.Run(line, func(t *testing.T) {
			suggestions, _ := service.Do([]rune(line), len([]rune(line)))
			assert.Empty(t, suggestions)
		})
	}
}

func TestAutoCompleteService_CursorInMiddle(t *testing.T) {
	service := newTestAutoComplete(t)

	suggestions, offset := service.Do([]rune(".math.add a::1"), 3)
	assert.Equal(t, []string{"th.add", "th.sum"}, suffixes(suggestions))
	assert.Equal(t, 3, offset)
}

func TestAutoCompleteService_WithoutVariables(t *testing.T) {
	service := newTestAutoComplete(t)
	service.SetVariables(nil)

	suggestions, offset := service.Do([]rune("${n"), 3)
	assert.Empty(t, suggestions)
	assert.Equal(t, 3, offset)
}

func TestAutoCompleteService_FindWordStart(t *testing.T) {
	service := NewAutoCompleteService(nil, nil)

	tests := []struct {
		before   string
		expected int
	}{
		{"", 0},
		{".math", 0},
		{".math.add a", 10},
		{".greet ${na", 7},
		{".greet ${a} b", 12},
	}

	for _, tt := range tests {
		t.Run(tt.before, func(t *testing.T) {
			assert.Equal(t, tt.expected, service.findWordStart(tt.before))
		})
	}
}
