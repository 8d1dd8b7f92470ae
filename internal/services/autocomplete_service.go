package services

import (
	"sort"
	"strings"

	"unilang/internal/commands"
	"unilang/pkg/unitypes"
)

// CompletionCatalog is a command catalog that can also list every name and alias.
type CompletionCatalog interface {
	CommandCatalog
	Names() []string
}

// VariableLister exposes the variables available for ${name} completion.
type VariableLister interface {
	GetAllVariables() map[string]string
}

// AutoCompleteService provides tab completion for command paths, argument names,
// argument values and variable references.
// It implements the readline.AutoCompleter interface to integrate with ishell.
type AutoCompleteService struct {
	initialized bool
	catalog     CompletionCatalog
	variables   VariableLister
}

// NewAutoCompleteService creates a new AutoCompleteService instance.
// A nil catalog selects the global command registry at initialization.
func NewAutoCompleteService(catalog CompletionCatalog, variables VariableLister) *AutoCompleteService {
	return &AutoCompleteService{
		catalog:   catalog,
		variables: variables,
	}
}

// Name returns the service name "autocomplete" for registration.
func (a *AutoCompleteService) Name() string {
	return "autocomplete"
}

// Initialize sets up the AutoCompleteService for operation.
func (a *AutoCompleteService) Initialize() error {
	if a.catalog == nil {
		a.catalog = commands.GlobalRegistry
	}
	a.initialized = true
	return nil
}

// SetVariables sets the variable source used for ${name} completion.
func (a *AutoCompleteService) SetVariables(variables VariableLister) {
	a.variables = variables
}

// Do implements the readline.AutoCompleter interface.
// Only the text before the cursor is considered; offsets are counted in runes.
func (a *AutoCompleteService) Do(line []rune, pos int) (newLine [][]rune, offset int) {
	if !a.initialized {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}
	if pos < 0 {
		pos = 0
	}

	before := string(line[:pos])
	wordStart := a.findWordStart(before)
	currentWord := before[wordStart:]

	var suggestions [][]rune
	for _, completion := range a.getCompletions(before, wordStart, currentWord) {
		if strings.HasPrefix(completion, currentWord) {
			suggestions = append(suggestions, []rune(strings.TrimPrefix(completion, currentWord)))
		}
	}

	return suggestions, len([]rune(currentWord))
}

// findWordStart returns the byte offset where the word ending at the cursor begins.
func (a *AutoCompleteService) findWordStart(before string) int {
	if a.isInVariableReference(before) {
		return strings.LastIndex(before, "${")
	}
	return strings.LastIndexAny(before, " \t") + 1
}

// isInVariableReference reports whether the text ends inside an unclosed ${...}.
func (a *AutoCompleteService) isInVariableReference(before string) bool {
	open := strings.LastIndex(before, "${")
	return open >= 0 && !strings.Contains(before[open:], "}")
}

// getCompletions returns the candidate words for the current cursor context.
func (a *AutoCompleteService) getCompletions(before string, wordStart int, currentWord string) []string {
	if a.isInVariableReference(before) || strings.HasPrefix(currentWord, "${") {
		return a.getVariableCompletions(currentWord)
	}

	segment := before[:wordStart]
	if i := strings.LastIndex(segment, ";;"); i >= 0 {
		segment = segment[i+2:]
	}
	fields := strings.Fields(segment)
	if len(fields) == 0 {
		return a.getCommandCompletions(currentWord)
	}

	def, ok := a.catalog.Lookup(normalizePath(fields[0]))
	if !ok {
		return []string{}
	}
	if strings.Contains(currentWord, "::") {
		return a.getValueCompletions(def, currentWord)
	}
	return a.getArgumentCompletions(def, fields[1:], currentWord)
}

// getCommandCompletions returns command paths and aliases starting with prefix.
// The leading dot is optional, so prefixes without it complete to dotless paths.
func (a *AutoCompleteService) getCommandCompletions(prefix string) []string {
	dotted := strings.HasPrefix(prefix, unitypes.PathPrefix)

	completions := make([]string, 0)
	for _, name := range a.catalog.Names() {
		candidate := name
		if !dotted && prefix != "" {
			candidate = strings.TrimPrefix(name, unitypes.PathPrefix)
		}
		if strings.HasPrefix(candidate, prefix) {
			completions = append(completions, candidate)
		}
	}

	sort.Strings(completions)
	return completions
}

// getArgumentCompletions offers name:: for every argument and alias not yet supplied.
func (a *AutoCompleteService) getArgumentCompletions(def *unitypes.CommandDefinition, given []string, prefix string) []string {
	used := make(map[string]bool)
	for _, field := range given {
		if name, _, found := strings.Cut(field, "::"); found {
			if arg, ok := def.Argument(name); ok && !arg.Attributes.Multiple {
				used[arg.Name] = true
			}
		}
	}

	completions := make([]string, 0)
	for _, arg := range def.Arguments {
		if used[arg.Name] {
			continue
		}
		for _, name := range append([]string{arg.Name}, arg.Aliases...) {
			if strings.HasPrefix(name, prefix) {
				completions = append(completions, name+"::")
			}
		}
	}

	sort.Strings(completions)
	return completions
}

// getValueCompletions completes the value of name::partial for Enum and Boolean arguments.
func (a *AutoCompleteService) getValueCompletions(def *unitypes.CommandDefinition, word string) []string {
	name, _, _ := strings.Cut(word, "::")
	arg, ok := def.Argument(name)
	if !ok {
		return []string{}
	}

	var choices []string
	switch arg.Kind.Type {
	case unitypes.KindEnum:
		choices = arg.Kind.Choices
	case unitypes.KindBoolean:
		choices = []string{"true", "false"}
	}

	completions := make([]string, 0, len(choices))
	for _, choice := range choices {
		completions = append(completions, name+"::"+choice)
	}
	sort.Strings(completions)
	return completions
}

// getVariableCompletions returns completions for variable references.
func (a *AutoCompleteService) getVariableCompletions(prefix string) []string {
	varStart := strings.LastIndex(prefix, "${")
	if varStart == -1 || a.variables == nil {
		return []string{}
	}

	varPrefix := prefix[varStart+2:]
	if closeBraceIdx := strings.Index(varPrefix, "}"); closeBraceIdx != -1 {
		varPrefix = varPrefix[:closeBraceIdx]
	}

	completions := make([]string, 0)
	for varName := range a.variables.GetAllVariables() {
		if strings.HasPrefix(varName, varPrefix) {
			completions = append(completions, prefix[:varStart]+"${"+varName+"}")
		}
	}

	sort.Strings(completions)
	return completions
}

// normalizePath adds the optional leading dot to a command path.
func normalizePath(path string) string {
	if strings.HasPrefix(path, unitypes.PathPrefix) {
		return path
	}
	return unitypes.PathPrefix + path
}

// GetGlobalAutoCompleteService returns the autocomplete service from the global registry.
func GetGlobalAutoCompleteService() (*AutoCompleteService, error) {
	return getTypedService[*AutoCompleteService]("autocomplete")
}

func init() {
	if err := GlobalRegistry.RegisterService(NewAutoCompleteService(nil, nil)); err != nil {
		panic(err)
	}
}
