package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"unilang/internal/commands"
	"unilang/internal/logger"
	"unilang/pkg/unitypes"
)

// HelpVerbosityEnv overrides the default help verbosity.
const HelpVerbosityEnv = "UNILANG_HELP_VERBOSITY"

// Verbosity selects how much detail generated help contains.
type Verbosity int

const (
	// VerbosityMinimal prints the name and description only.
	VerbosityMinimal Verbosity = iota
	// VerbosityBasic adds the parameter list.
	VerbosityBasic
	// VerbosityStandard adds usage, status, aliases, argument details and examples.
	VerbosityStandard
	// VerbosityDetailed adds tags, argument hints and argument aliases.
	VerbosityDetailed
	// VerbosityComprehensive prints every section in long form.
	VerbosityComprehensive
)

var verbosityNames = []string{"minimal", "basic", "standard", "detailed", "comprehensive"}

// String returns the lowercase name of the verbosity level.
func (v Verbosity) String() string {
	if v >= 0 && int(v) < len(verbosityNames) {
		return verbosityNames[v]
	}
	return fmt.Sprintf("Verbosity(%d)", int(v))
}

// ParseVerbosity accepts a level number or name. Numbers above the highest level
// select VerbosityComprehensive.
func ParseVerbosity(text string) (Verbosity, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if n, err := strconv.Atoi(text); err == nil {
		if n < 0 {
			return VerbosityStandard, fmt.Errorf("invalid help verbosity %d", n)
		}
		if n > int(VerbosityComprehensive) {
			return VerbosityComprehensive, nil
		}
		return Verbosity(n), nil
	}
	for i, name := range verbosityNames {
		if name == text {
			return Verbosity(i), nil
		}
	}
	return VerbosityStandard, fmt.Errorf("invalid help verbosity '%s'", text)
}

// CommandCatalog is the read side of a command registry.
type CommandCatalog interface {
	Lookup(path string) (*unitypes.CommandDefinition, bool)
	GetAll() []*unitypes.CommandDefinition
}

// HelpService renders help text for registered commands.
type HelpService struct {
	initialized bool
	catalog     CommandCatalog
	verbosity   Verbosity
}

// NewHelpService creates a help service over catalog. A nil catalog selects the global command registry.
func NewHelpService(catalog CommandCatalog) *HelpService {
	return &HelpService{
		catalog:   catalog,
		verbosity: VerbosityStandard,
	}
}

// Name returns the service name "help" for registration.
func (h *HelpService) Name() string {
	return "help"
}

// Initialize picks up the catalog and the verbosity from the environment.
func (h *HelpService) Initialize() error {
	if h.catalog == nil {
		h.catalog = commands.GlobalRegistry
	}
	if env := os.Getenv(HelpVerbosityEnv); env != "" {
		v, err := ParseVerbosity(env)
		if err != nil {
			logger.Warn("Ignoring help verbosity from environment", "value", env, "error", err)
		} else {
			h.verbosity = v
		}
	}
	h.initialized = true
	logger.Debug("HelpService initialized", "verbosity", h.verbosity)
	return nil
}

// Verbosity returns the current verbosity level.
func (h *HelpService) Verbosity() Verbosity {
	return h.verbosity
}

// SetVerbosity changes the verbosity level.
func (h *HelpService) SetVerbosity(v Verbosity) {
	if v < VerbosityMinimal {
		v = VerbosityMinimal
	}
	if v > VerbosityComprehensive {
		v = VerbosityComprehensive
	}
	h.verbosity = v
}

// CommandHelp returns help for the command at path, given as full name or alias.
func (h *HelpService) CommandHelp(path string) (string, error) {
	if !h.initialized {
		return "", fmt.Errorf("help service not initialized")
	}
	def, ok := h.catalog.Lookup(path)
	if !ok {
		return "", fmt.Errorf("command %s not found", path)
	}
	return h.Format(def), nil
}

// Format renders def at the current verbosity.
func (h *HelpService) Format(def *unitypes.CommandDefinition) string {
	switch h.verbosity {
	case VerbosityMinimal:
		return formatMinimal(def)
	case VerbosityBasic:
		return formatBasic(def)
	case VerbosityComprehensive:
		return formatComprehensive(def)
	default:
		return formatStandard(def, h.verbosity >= VerbosityDetailed)
	}
}

// List renders every command whose full name starts with prefix, sorted by full name.
func (h *HelpService) List(prefix string) (string, error) {
	if !h.initialized {
		return "", fmt.Errorf("help service not initialized")
	}

	var b strings.Builder
	count := 0
	for _, def := range h.catalog.GetAll() {
		if !strings.HasPrefix(def.FullName(), prefix) {
			continue
		}
		if count == 0 {
			b.WriteString("Available commands:\n\n")
		}
		fmt.Fprintf(&b, "  %-20s %s\n", def.FullName(), summary(def))
		count++
	}

	if count == 0 {
		if prefix != "" {
			return fmt.Sprintf("No commands found matching prefix: %s", prefix), nil
		}
		return "No commands available.", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Markdown renders def as a markdown document for terminal rendering.
func (h *HelpService) Markdown(def *unitypes.CommandDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", def.FullName())
	if text := summary(def); text != "" {
		b.WriteString(text + "\n\n")
	}
	if def.IsDeprecated() {
		fmt.Fprintf(&b, "> **Deprecated.** %s\n\n", def.Deprecation)
	}

	fmt.Fprintf(&b, "**Usage:** `%s`\n\n", usageLine(def))

	if len(def.Arguments) > 0 {
		b.WriteString("## Arguments\n\n")
		b.WriteString("| Name | Kind | Required | Description |\n")
		b.WriteString("|------|------|----------|-------------|\n")
		for i := range def.Arguments {
			arg := &def.Arguments[i]
			required := "no"
			if arg.IsRequired() {
				required = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", arg.Name, kindLabel(arg.Kind), required, argumentText(arg))
		}
		b.WriteString("\n")
	}

	if len(def.Examples) > 0 {
		b.WriteString("## Examples\n\n")
		for _, example := range def.Examples {
			fmt.Fprintf(&b, "- `%s`\n", example)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatMinimal(def *unitypes.CommandDefinition) string {
	return fmt.Sprintf("%s - %s", def.FullName(), summary(def))
}

func formatBasic(def *unitypes.CommandDefinition) string {
	var b strings.Builder
	b.WriteString(formatMinimal(def))
	if len(def.Arguments) > 0 {
		b.WriteString("\n\nPARAMETERS:")
		for _, arg := range def.Arguments {
			fmt.Fprintf(&b, "\n  %s::%s", arg.Name, strings.ToLower(arg.Kind.Type.String()))
		}
	}
	return b.String()
}

func formatStandard(def *unitypes.CommandDefinition, detailed bool) string {
	var b strings.Builder

	b.WriteString("Usage: " + def.FullName())
	if def.Version != "" {
		fmt.Fprintf(&b, " (v%s)", def.Version)
	}
	b.WriteString("\n")
	if text := summary(def); text != "" {
		b.WriteString(text + "\n")
	}
	b.WriteString("\n")

	if def.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", def.Status)
	}
	if def.Deprecation != "" {
		fmt.Fprintf(&b, "Deprecated: %s\n", def.Deprecation)
	}
	if len(def.Aliases) > 0 {
		fmt.Fprintf(&b, "Aliases: %s\n", strings.Join(def.Aliases, ", "))
	}
	if detailed && len(def.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(def.Tags, ", "))
	}

	if len(def.Arguments) > 0 {
		b.WriteString("\nArguments:\n")
		for i := range def.Arguments {
			arg := &def.Arguments[i]
			fmt.Fprintf(&b, "  %s (Type: %s)", arg.Name, kindLabel(arg.Kind))
			if flags := attributeFlags(arg); len(flags) > 0 {
				b.WriteString(" - " + strings.Join(flags, ", "))
			}
			b.WriteString("\n")
			if desc := argumentText(arg); desc != "" {
				fmt.Fprintf(&b, "    %s\n", desc)
			}
			if detailed {
				if arg.Hint != "" && arg.Hint != argumentText(arg) {
					fmt.Fprintf(&b, "    Hint: %s\n", arg.Hint)
				}
				if len(arg.Aliases) > 0 {
					fmt.Fprintf(&b, "    Aliases: %s\n", strings.Join(arg.Aliases, ", "))
				}
			}
			if len(arg.ValidationRules) > 0 {
				fmt.Fprintf(&b, "    Rules: %s\n", ruleList(arg.ValidationRules))
			}
		}
	}

	if len(def.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for i, example := range def.Examples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, example)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatComprehensive(def *unitypes.CommandDefinition) string {
	var b strings.Builder

	b.WriteString("USAGE:\n  " + usageLine(def) + "\n")

	if text := summary(def); text != "" {
		b.WriteString("\nDESCRIPTION:\n  " + text + "\n")
	}
	if def.Hint != "" && def.Hint != def.Description {
		b.WriteString("  " + def.Hint + "\n")
	}

	b.WriteString("\nDETAILS:\n")
	if def.Version != "" {
		fmt.Fprintf(&b, "  Version: %s\n", def.Version)
	}
	if def.Status != "" {
		fmt.Fprintf(&b, "  Status: %s\n", def.Status)
	}
	if def.Deprecation != "" {
		fmt.Fprintf(&b, "  Deprecated: %s\n", def.Deprecation)
	}
	if len(def.Aliases) > 0 {
		fmt.Fprintf(&b, "  Aliases: %s\n", strings.Join(def.Aliases, ", "))
	}
	if len(def.Permissions) > 0 {
		fmt.Fprintf(&b, "  Permissions: %s\n", strings.Join(def.Permissions, ", "))
	}
	fmt.Fprintf(&b, "  Idempotent: %s\n", yesNo(def.Idempotent))

	if len(def.Arguments) > 0 {
		b.WriteString("\nPARAMETERS:\n")
		for i := range def.Arguments {
			arg := &def.Arguments[i]
			fmt.Fprintf(&b, "  %s\n", arg.Name)
			fmt.Fprintf(&b, "    Type: %s\n", kindLabel(arg.Kind))
			if desc := argumentText(arg); desc != "" {
				fmt.Fprintf(&b, "    %s\n", desc)
			}
			fmt.Fprintf(&b, "    Optional: %s\n", yesNo(!arg.IsRequired()))
			if arg.Attributes.Default != nil {
				fmt.Fprintf(&b, "    Default: %s\n", *arg.Attributes.Default)
			}
			if arg.Attributes.Multiple {
				b.WriteString("    Multiple values: yes\n")
			}
			if arg.Attributes.Interactive {
				b.WriteString("    Interactive: yes\n")
			}
			if arg.Attributes.Sensitive {
				b.WriteString("    Sensitive: yes\n")
			}
			if len(arg.Aliases) > 0 {
				fmt.Fprintf(&b, "    Aliases: %s\n", strings.Join(arg.Aliases, ", "))
			}
			if len(arg.ValidationRules) > 0 {
				fmt.Fprintf(&b, "    Validation: %s\n", ruleList(arg.ValidationRules))
			}
		}
	}

	if len(def.Examples) > 0 {
		b.WriteString("\nEXAMPLES:\n")
		for _, example := range def.Examples {
			b.WriteString("  " + example + "\n")
		}
	}

	if len(def.Tags) > 0 {
		b.WriteString("\nTAGS:\n  " + strings.Join(def.Tags, ", ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// usageLine lists required arguments bare and optional ones in brackets.
func usageLine(def *unitypes.CommandDefinition) string {
	parts := []string{def.FullName()}
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		part := fmt.Sprintf("%s::<%s>", arg.Name, strings.ToLower(arg.Kind.Type.String()))
		if arg.Attributes.Multiple {
			part += "..."
		}
		if !arg.IsRequired() {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// kindLabel renders a kind including its parameters, e.g. Enum(a,b) or List(Integer).
func kindLabel(kind unitypes.Kind) string {
	name := kind.Type.String()
	switch kind.Type {
	case unitypes.KindEnum:
		return fmt.Sprintf("%s(%s)", name, strings.Join(kind.Choices, ","))
	case unitypes.KindList:
		if kind.Item != nil {
			return fmt.Sprintf("%s(%s)", name, kindLabel(*kind.Item))
		}
	case unitypes.KindMap:
		if kind.Key != nil && kind.Item != nil {
			return fmt.Sprintf("%s(%s,%s)", name, kindLabel(*kind.Key), kindLabel(*kind.Item))
		}
	}
	return name
}

func attributeFlags(arg *unitypes.ArgumentDefinition) []string {
	var flags []string
	if !arg.IsRequired() {
		flags = append(flags, "Optional")
	}
	if arg.Attributes.Multiple {
		flags = append(flags, "Multiple")
	}
	if arg.Attributes.Interactive {
		flags = append(flags, "Interactive")
	}
	if arg.Attributes.Sensitive {
		flags = append(flags, "Sensitive")
	}
	return flags
}

func ruleList(rules []unitypes.ValidationRule) string {
	texts := make([]string, len(rules))
	for i, rule := range rules {
		texts[i] = rule.String()
	}
	return "[" + strings.Join(texts, ", ") + "]"
}

// summary prefers the description and falls back to the hint.
func summary(def *unitypes.CommandDefinition) string {
	if def.Description != "" {
		return def.Description
	}
	return def.Hint
}

func argumentText(arg *unitypes.ArgumentDefinition) string {
	if arg.Description != "" {
		return arg.Description
	}
	return arg.Hint
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// GetGlobalHelpService returns the help service from the global registry.
func GetGlobalHelpService() (*HelpService, error) {
	return getTypedService[*HelpService]("help")
}

func init() {
	if err := GlobalRegistry.RegisterService(NewHelpService(nil)); err != nil {
		panic(err)
	}
}
