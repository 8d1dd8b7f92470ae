// Package output provides the console output layer of the unilang front ends.
// Styling is injected through StyleProvider so the printer has no service dependencies.
package output

import (
	"fmt"
	"strings"
)

// StyleProvider supplies styles for semantic output types.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the style provider is ready to provide styles.
	IsAvailable() bool
}

// TextStyle renders text with styling.
type TextStyle interface {
	Render(text string) string
}

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// Mode defines different output modes the printer can operate in.
type Mode int

const (
	// ModeAuto automatically detects the best output mode based on context
	ModeAuto Mode = iota

	// ModeStyled forces styled output (with colors, formatting)
	ModeStyled

	// ModePlain forces plain text output (no colors, minimal formatting)
	ModePlain

	// ModeJSON outputs structured JSON for machine consumption
	ModeJSON
)

var modeNames = map[Mode]string{
	ModeAuto:   "auto",
	ModeStyled: "styled",
	ModePlain:  "plain",
	ModeJSON:   "json",
}

// String returns the flag name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a --format value.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ModeAuto, nil
	}
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown output format '%s', expected auto, styled, plain or json", name)
}

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"

	// SemanticCommand represents a command path.
	SemanticCommand SemanticType = "command"
	// SemanticArgument represents an argument name.
	SemanticArgument SemanticType = "argument"
	// SemanticVariable represents a variable name.
	SemanticVariable SemanticType = "variable"

	// SemanticHint represents secondary guidance such as suggestions.
	SemanticHint SemanticType = "hint"
	// SemanticBold represents bold text styling.
	SemanticBold SemanticType = "bold"
)
