package unitypes

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PathPrefix is the reserved first character of every command full name.
const PathPrefix = "."

// CommandStatus describes the lifecycle stage of a command.
type CommandStatus string

const (
	// StatusStable marks a command as stable.
	StatusStable CommandStatus = "stable"
	// StatusBeta marks a command as beta.
	StatusBeta CommandStatus = "beta"
	// StatusExperimental marks a command as experimental.
	StatusExperimental CommandStatus = "experimental"
	// StatusDeprecated marks a command as deprecated.
	StatusDeprecated CommandStatus = "deprecated"
)

// CommandDefinition describes a command that can be resolved and bound by the analyzer.
type CommandDefinition struct {
	Name        string               `yaml:"name" json:"name" validate:"required"`
	Namespace   string               `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Hint        string               `yaml:"hint,omitempty" json:"hint,omitempty"`
	Status      CommandStatus        `yaml:"status,omitempty" json:"status,omitempty" validate:"omitempty,oneof=stable beta experimental deprecated"`
	Version     string               `yaml:"version,omitempty" json:"version,omitempty"`
	Aliases     []string             `yaml:"aliases,omitempty" json:"aliases,omitempty" validate:"unique,dive,required"`
	Tags        []string             `yaml:"tags,omitempty" json:"tags,omitempty"`
	Examples    []string             `yaml:"examples,omitempty" json:"examples,omitempty"`
	Permissions []string             `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Idempotent  bool                 `yaml:"idempotent,omitempty" json:"idempotent,omitempty"`
	Deprecation string               `yaml:"deprecation_message,omitempty" json:"deprecation_message,omitempty"`
	RoutineLink string               `yaml:"routine_link,omitempty" json:"routine_link,omitempty"`
	Arguments   []ArgumentDefinition `yaml:"arguments,omitempty" json:"arguments,omitempty" validate:"unique=Name,dive"`
}

// FullName returns the registry identity of the command: namespace and name combined.
func (d *CommandDefinition) FullName() string {
	if d.Namespace == "" {
		return d.Name
	}
	if strings.HasPrefix(d.Name, PathPrefix) {
		return d.Namespace + d.Name
	}
	return d.Namespace + PathPrefix + d.Name
}

// RoutineKey returns the name under which the command's routine is registered.
func (d *CommandDefinition) RoutineKey() string {
	if d.RoutineLink != "" {
		return d.RoutineLink
	}
	return d.FullName()
}

// IsDeprecated reports whether the command is marked deprecated.
func (d *CommandDefinition) IsDeprecated() bool {
	return d.Status == StatusDeprecated || d.Deprecation != ""
}

// Argument returns the argument definition with the given name or alias.
func (d *CommandDefinition) Argument(name string) (*ArgumentDefinition, bool) {
	for i := range d.Arguments {
		if d.Arguments[i].Matches(name) {
			return &d.Arguments[i], true
		}
	}
	return nil, false
}

// ArgumentAttributes controls how a missing or supplied argument is treated.
type ArgumentAttributes struct {
	Optional    bool    `yaml:"optional,omitempty" json:"optional,omitempty"`
	Multiple    bool    `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Interactive bool    `yaml:"interactive,omitempty" json:"interactive,omitempty"`
	Sensitive   bool    `yaml:"sensitive,omitempty" json:"sensitive,omitempty"`
	Default     *string `yaml:"default,omitempty" json:"default,omitempty"`
}

// ArgumentDefinition describes one declared parameter of a command.
type ArgumentDefinition struct {
	Name            string             `yaml:"name" json:"name" validate:"required"`
	Description     string             `yaml:"description,omitempty" json:"description,omitempty"`
	Hint            string             `yaml:"hint,omitempty" json:"hint,omitempty"`
	Kind            Kind               `yaml:"kind" json:"kind"`
	Attributes      ArgumentAttributes `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	ValidationRules []ValidationRule   `yaml:"validation_rules,omitempty" json:"validation_rules,omitempty"`
	Aliases         []string           `yaml:"aliases,omitempty" json:"aliases,omitempty" validate:"unique,dive,required"`
	Tags            []string           `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Matches reports whether name is the argument's name or one of its aliases.
func (a *ArgumentDefinition) Matches(name string) bool {
	if a.Name == name {
		return true
	}
	for _, alias := range a.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// IsRequired reports whether the argument must be supplied.
func (a *ArgumentDefinition) IsRequired() bool {
	return !a.Attributes.Optional && a.Attributes.Default == nil
}

// StringPtr returns a pointer to s, for use with ArgumentAttributes.Default.
func StringPtr(s string) *string {
	return &s
}

// RuleType identifies a validation rule.
type RuleType string

const (
	// RuleMin requires a numeric value >= Number.
	RuleMin RuleType = "min"
	// RuleMax requires a numeric value <= Number.
	RuleMax RuleType = "max"
	// RuleMinLength requires a string or list length >= Count.
	RuleMinLength RuleType = "min_length"
	// RuleMaxLength requires a string or list length <= Count.
	RuleMaxLength RuleType = "max_length"
	// RulePattern requires a string value matching Pattern.
	RulePattern RuleType = "pattern"
	// RuleMinItems requires a list with at least Count items.
	RuleMinItems RuleType = "min_items"
)

// ValidationRule is a constraint applied to an argument after coercion.
type ValidationRule struct {
	Type    RuleType
	Number  float64
	Count   int
	Pattern string
}

// Min returns a minimum value rule.
func Min(n float64) ValidationRule { return ValidationRule{Type: RuleMin, Number: n} }

// Max returns a maximum value rule.
func Max(n float64) ValidationRule { return ValidationRule{Type: RuleMax, Number: n} }

// MinLength returns a minimum length rule.
func MinLength(n int) ValidationRule { return ValidationRule{Type: RuleMinLength, Count: n} }

// MaxLength returns a maximum length rule.
func MaxLength(n int) ValidationRule { return ValidationRule{Type: RuleMaxLength, Count: n} }

// MatchPattern returns a regular expression rule.
func MatchPattern(p string) ValidationRule { return ValidationRule{Type: RulePattern, Pattern: p} }

// MinItems returns a minimum item count rule.
func MinItems(n int) ValidationRule { return ValidationRule{Type: RuleMinItems, Count: n} }

// String renders the rule in the form ParseValidationRule accepts.
func (r ValidationRule) String() string {
	switch r.Type {
	case RuleMin, RuleMax:
		return fmt.Sprintf("%s:%s", r.Type, strconv.FormatFloat(r.Number, 'g', -1, 64))
	case RulePattern:
		return fmt.Sprintf("%s:%s", r.Type, r.Pattern)
	default:
		return fmt.Sprintf("%s:%d", r.Type, r.Count)
	}
}

// ParseValidationRule parses "min:1", "max:10", "min_length:2", "max_length:8",
// "pattern:^[a-z]+$" or "min_items:1".
func ParseValidationRule(text string) (ValidationRule, error) {
	name, arg, found := strings.Cut(strings.TrimSpace(text), ":")
	if !found {
		return ValidationRule{}, fmt.Errorf("validation rule '%s' must have the form name:value", text)
	}
	rule := ValidationRule{Type: RuleType(strings.TrimSpace(name))}
	switch rule.Type {
	case RuleMin, RuleMax:
		n, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return ValidationRule{}, fmt.Errorf("validation rule '%s': invalid number: %w", text, err)
		}
		rule.Number = n
	case RuleMinLength, RuleMaxLength, RuleMinItems:
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n < 0 {
			return ValidationRule{}, fmt.Errorf("validation rule '%s': invalid count", text)
		}
		rule.Count = n
	case RulePattern:
		rule.Pattern = arg
	default:
		return ValidationRule{}, fmt.Errorf("unknown validation rule '%s'", name)
	}
	return rule, nil
}

// UnmarshalYAML decodes a rule from its textual form.
func (r *ValidationRule) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("validation rule must be a string: %w", err)
	}
	parsed, err := ParseValidationRule(text)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML encodes a rule as its textual form.
func (r ValidationRule) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}
