// Package semantic binds parsed instructions against command definitions.
// It resolves command paths, assigns and coerces arguments, applies defaults and
// validation rules, and produces verified commands ready for execution.
package semantic

import (
	"sort"
	"strings"

	"unilang/internal/logger"
	"unilang/internal/parser"
	"unilang/pkg/unitypes"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/afero"
)

// maxSuggestionDistance is the largest edit distance offered as a "Did you mean" hint.
const maxSuggestionDistance = 2

// CommandRegistry is the read side of the command registry used during binding.
type CommandRegistry interface {
	Lookup(path string) (*unitypes.CommandDefinition, bool)
	Names() []string
}

// Analyzer turns GenericInstructions into VerifiedCommands.
type Analyzer struct {
	registry CommandRegistry
	coercer  *Coercer
	logger   *log.Logger
}

// NewAnalyzer creates an Analyzer. fs backs File and Directory checks; nil selects
// the OS filesystem.
func NewAnalyzer(registry CommandRegistry, fs afero.Fs) *Analyzer {
	return &Analyzer{
		registry: registry,
		coercer:  NewCoercer(fs),
		logger:   logger.NewStyledLogger("Analyzer"),
	}
}

// Analyze binds instructions against registry using the OS filesystem.
func Analyze(instructions []parser.GenericInstruction, registry CommandRegistry) ([]unitypes.VerifiedCommand, error) {
	return NewAnalyzer(registry, nil).Analyze(instructions)
}

// Analyze binds every instruction in order and stops at the first failure.
// No verified command is returned when any instruction fails.
func (a *Analyzer) Analyze(instructions []parser.GenericInstruction) ([]unitypes.VerifiedCommand, error) {
	verified := make([]unitypes.VerifiedCommand, 0, len(instructions))
	for _, instruction := range instructions {
		cmd, err := a.AnalyzeInstruction(instruction)
		if err != nil {
			return nil, err
		}
		verified = append(verified, cmd)
	}
	return verified, nil
}

// AnalyzeInstruction binds a single instruction.
func (a *Analyzer) AnalyzeInstruction(instruction parser.GenericInstruction) (unitypes.VerifiedCommand, error) {
	def, err := a.resolve(instruction)
	if err != nil {
		return unitypes.VerifiedCommand{}, err
	}
	if instruction.HelpRequested {
		return unitypes.VerifiedCommand{}, (&Error{
			Code:    unitypes.ErrCodeHelpRequested,
			Message: "Help requested for " + def.FullName(),
			Command: def.FullName(),
		}).at(instruction.OverallLocation)
	}

	arguments, err := a.bind(def, instruction)
	if err != nil {
		return unitypes.VerifiedCommand{}, err
	}

	verified := unitypes.VerifiedCommand{Definition: def, Arguments: arguments}
	a.logger.Debug("Verified command", "command", def.FullName(), "arguments", verified.Redacted())
	return verified, nil
}

// resolve maps the instruction path to a definition.
func (a *Analyzer) resolve(instruction parser.GenericInstruction) (*unitypes.CommandDefinition, error) {
	if len(instruction.CommandPathSlices) == 0 {
		if len(instruction.PositionalArguments) == 0 && len(instruction.NamedArguments) == 0 {
			return nil, (&Error{
				Code:    unitypes.ErrCodeHelpRequested,
				Message: "Help requested for the command listing",
			}).at(instruction.OverallLocation)
		}
		if len(instruction.PositionalArguments) == 0 {
			err := newError(unitypes.ErrCodeCommandNotFound,
				"Command Error: No command path was given before the arguments. Use '.' to see all available commands.")
			return nil, err.at(instruction.OverallLocation)
		}
		first := instruction.PositionalArguments[0]
		return nil, a.notFound(first.Value, first.ValueLocation)
	}

	path := instruction.CommandPath()
	def, ok := a.registry.Lookup(path)
	if !ok {
		return nil, a.notFound(path, instruction.OverallLocation)
	}
	return def, nil
}

func (a *Analyzer) notFound(path string, loc parser.SourceLocation) *Error {
	err := newError(unitypes.ErrCodeCommandNotFound,
		"Command Error: The command '%s' was not found. Use '.' to see all available commands or check for typos.", path).at(loc)
	err.Command = path
	if suggestion := suggestCommand(path, a.registry.Names()); suggestion != "" {
		err.Suggestion = suggestion
		err.Message += " Did you mean '" + suggestion + "'?"
	}
	a.logger.Debug("Command not found", "command", path, "suggestion", err.Suggestion)
	return err
}

// suggestCommand returns the closest registered name by edit distance, falling back
// to the best fuzzy subsequence match.
func suggestCommand(path string, names []string) string {
	if path == "" || len(names) == 0 {
		return ""
	}
	if best, ok := closest(path, names); ok {
		return best
	}
	ranks := fuzzy.RankFindFold(path, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// closest returns the candidate within maxSuggestionDistance of target, preferring the
// smallest distance and then lexical order.
func closest(target string, candidates []string) (string, bool) {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		d := fuzzy.LevenshteinDistance(strings.ToLower(target), strings.ToLower(candidate))
		if d < bestDistance || (d == bestDistance && candidate < best) {
			best, bestDistance = candidate, d
		}
	}
	return best, bestDistance <= maxSuggestionDistance
}

// rawValue is one raw occurrence of an argument.
type rawValue struct {
	text     string
	location parser.SourceLocation
}

func (a *Analyzer) bind(def *unitypes.CommandDefinition, instruction parser.GenericInstruction) (map[string]unitypes.Value, error) {
	fullName := def.FullName()
	raws := make(map[string][]rawValue, len(def.Arguments))

	var unknown []parser.Argument
	for _, name := range instruction.NamedArgumentNames() {
		occurrences := instruction.NamedArguments[name]
		arg, ok := def.Argument(name)
		if !ok {
			unknown = append(unknown, occurrences[0])
			continue
		}
		for _, occ := range occurrences {
			raws[arg.Name] = append(raws[arg.Name], rawValue{text: occ.Value, location: occ.ValueLocation})
		}
	}
	if len(unknown) > 0 {
		return nil, unknownParameters(def, unknown)
	}

	positionals := instruction.PositionalArguments
	for i := range def.Arguments {
		if len(positionals) == 0 {
			break
		}
		arg := &def.Arguments[i]
		if len(raws[arg.Name]) > 0 {
			continue
		}
		take := 1
		if arg.Attributes.Multiple {
			take = len(positionals)
		}
		for _, p := range positionals[:take] {
			raws[arg.Name] = append(raws[arg.Name], rawValue{text: p.Value, location: p.ValueLocation})
		}
		positionals = positionals[take:]
	}
	if len(positionals) > 0 {
		return nil, newError(unitypes.ErrCodeTooManyArguments,
			"Argument Error: Too many arguments provided for this command. Please check the command usage and remove extra arguments.").
			forArgument(fullName, "").at(positionals[0].ValueLocation)
	}

	arguments := make(map[string]unitypes.Value, len(def.Arguments))
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		value, present, err := a.bindArgument(fullName, arg, raws[arg.Name], instruction.OverallLocation)
		if err != nil {
			return nil, err
		}
		if present {
			arguments[arg.Name] = value
		}
	}
	return arguments, nil
}

// bindArgument produces the value of one parameter. present is false for an omitted
// optional parameter without a default.
func (a *Analyzer) bindArgument(command string, arg *unitypes.ArgumentDefinition, raws []rawValue, overall parser.SourceLocation) (unitypes.Value, bool, error) {
	if len(raws) == 0 {
		switch {
		case arg.Attributes.Default != nil:
			raws = []rawValue{{text: *arg.Attributes.Default, location: overall}}
		case arg.Attributes.Optional:
			return nil, false, nil
		case arg.Attributes.Interactive:
			return nil, false, newError(unitypes.ErrCodeArgumentInteractiveRequired,
				"Interactive Argument Required: The argument '%s' is marked as interactive and must be provided interactively. The application should prompt the user for this value.",
				arg.Name).forArgument(command, arg.Name).at(overall)
		default:
			return nil, false, newError(unitypes.ErrCodeArgumentMissing,
				"Argument Error: The required argument '%s' is missing. Please provide a value for this argument.",
				arg.Name).forArgument(command, arg.Name).at(overall)
		}
	}

	if len(raws) > 1 && !arg.Attributes.Multiple {
		return nil, false, newError(unitypes.ErrCodeArgumentAmbiguous,
			"Argument Error: The argument '%s' was provided %d times but accepts a single value.",
			arg.Name, len(raws)).forArgument(command, arg.Name).at(raws[1].location)
	}

	var value unitypes.Value
	if arg.Attributes.Multiple {
		list := unitypes.ListValue{}
		item := arg.Kind.ItemKind()
		for _, raw := range raws {
			if arg.Kind.IsList() {
				v, err := a.coerce(command, arg, raw, arg.Kind)
				if err != nil {
					return nil, false, err
				}
				list = append(list, v.(unitypes.ListValue)...)
				continue
			}
			v, err := a.coerce(command, arg, raw, item)
			if err != nil {
				return nil, false, err
			}
			list = append(list, v)
		}
		value = list
	} else {
		v, err := a.coerce(command, arg, raws[0], arg.Kind)
		if err != nil {
			return nil, false, err
		}
		value = v
	}

	if err := applyRules(arg.Name, value, arg.ValidationRules); err != nil {
		return nil, false, err.forArgument(command, arg.Name).at(raws[0].location)
	}
	return value, true, nil
}

func (a *Analyzer) coerce(command string, arg *unitypes.ArgumentDefinition, raw rawValue, kind unitypes.Kind) (unitypes.Value, error) {
	v, err := a.coercer.Coerce(raw.text, kind)
	if err != nil {
		shown := raw.text
		if arg.Attributes.Sensitive {
			shown = "****"
		}
		return nil, newError(unitypes.ErrCodeArgumentTypeMismatch,
			"Type Error: Argument '%s' expects %s but got '%s': %v. Please provide a valid value for this type.",
			arg.Name, kind, shown, redactError(arg, err)).forArgument(command, arg.Name).at(raw.location)
	}
	return v, nil
}

func unknownParameters(def *unitypes.CommandDefinition, unknown []parser.Argument) *Error {
	fullName := def.FullName()
	if len(unknown) == 1 {
		name := unknown[0].Name
		var candidates []string
		for _, arg := range def.Arguments {
			candidates = append(candidates, arg.Name)
			candidates = append(candidates, arg.Aliases...)
		}
		err := newError(unitypes.ErrCodeUnknownParameter,
			"Argument Error: Unknown parameter '%s'. Use '%s ??' to see valid parameters.", name, fullName)
		if suggestion, ok := closest(name, candidates); ok {
			err = newError(unitypes.ErrCodeUnknownParameter,
				"Argument Error: Unknown parameter '%s'. Did you mean '%s'? Use '%s ??' for help.", name, suggestion, fullName)
			err.Suggestion = suggestion
		}
		return err.forArgument(fullName, name).at(unknown[0].NameLocation)
	}

	quoted := make([]string, len(unknown))
	for i, u := range unknown {
		quoted[i] = "'" + u.Name + "'"
	}
	return newError(unitypes.ErrCodeUnknownParameter,
		"Argument Error: Unknown parameters: %s. Use '%s ??' to see valid parameters.", strings.Join(quoted, ", "), fullName).
		forArgument(fullName, unknown[0].Name).at(unknown[0].NameLocation)
}

func redactError(arg *unitypes.ArgumentDefinition, err error) string {
	if arg.Attributes.Sensitive {
		return "invalid value"
	}
	return err.Error()
}

