package parser

import (
	"sort"
	"strings"
)

// Argument is one raw argument value with the locations of its parts.
type Argument struct {
	Name          string
	Value         string
	NameLocation  SourceLocation
	ValueLocation SourceLocation
}

// IsNamed reports whether the argument was given as name::value.
func (a Argument) IsNamed() bool {
	return a.Name != ""
}

// GenericInstruction is one parsed command invocation before semantic binding.
type GenericInstruction struct {
	CommandPathSlices   []string
	PositionalArguments []Argument
	NamedArguments      map[string][]Argument
	HelpRequested       bool
	OverallLocation     SourceLocation
}

// CommandPath returns the dotted full name the instruction refers to, e.g. ".video.search".
// An empty path returns "".
func (g GenericInstruction) CommandPath() string {
	if len(g.CommandPathSlices) == 0 {
		return ""
	}
	return "." + strings.Join(g.CommandPathSlices, ".")
}

// NamedArgumentNames returns the named argument names in sorted order.
func (g GenericInstruction) NamedArgumentNames() []string {
	names := make([]string, 0, len(g.NamedArguments))
	for name := range g.NamedArguments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether the instruction has no path, arguments or help request.
func (g GenericInstruction) IsEmpty() bool {
	return len(g.CommandPathSlices) == 0 && len(g.PositionalArguments) == 0 &&
		len(g.NamedArguments) == 0 && !g.HelpRequested
}
