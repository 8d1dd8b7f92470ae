package builtin

import (
	"fmt"

	"unilang/pkg/unitypes"
)

// ConfigSetCommand implements .config.set, storing a value in the run's variables.
// The value is interactive and sensitive: it is prompted for when omitted and never echoed.
type ConfigSetCommand struct{}

// Definition describes .config.set.
func (c *ConfigSetCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "set",
		Namespace:   ".config",
		Description: "Sets a configuration value.",
		Hint:        "Sets a configuration value.",
		Status:      unitypes.StatusExperimental,
		Version:     "0.1.0",
		Examples:    []string{`.config.set key::theme value::dark`},
		Arguments: []unitypes.ArgumentDefinition{
			{
				Name:            "key",
				Kind:            unitypes.String,
				Hint:            "Configuration key.",
				ValidationRules: []unitypes.ValidationRule{unitypes.MatchPattern(`^[A-Za-z][A-Za-z0-9_.-]*$`)},
			},
			{
				Name: "value",
				Kind: unitypes.String,
				Hint: "Configuration value.",
				Attributes: unitypes.ArgumentAttributes{
					Interactive: true,
					Sensitive:   true,
				},
			},
		},
	}
}

// Execute stores value under key.
func (c *ConfigSetCommand) Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
	key, err := cmd.String("key")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	value, err := cmd.String("value")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	if err := ctx.SetVariable(key, value); err != nil {
		return unitypes.OutputData{}, fmt.Errorf("failed to set %s: %w", key, err)
	}
	return unitypes.NewTextOutput(fmt.Sprintf("Setting config: %s = ****", key)), nil
}

// ConfigGetCommand implements .config.get.
type ConfigGetCommand struct{}

// Definition describes .config.get.
func (c *ConfigGetCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "get",
		Namespace:   ".config",
		Description: "Reads a configuration value.",
		Hint:        "Reads a configuration value.",
		Status:      unitypes.StatusExperimental,
		Version:     "0.1.0",
		Idempotent:  true,
		Examples:    []string{`.config.get key::theme`},
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "key", Kind: unitypes.String, Hint: "Configuration key."},
		},
	}
}

// Execute returns the value stored under key.
func (c *ConfigGetCommand) Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
	key, err := cmd.String("key")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	value, err := ctx.GetVariable(key)
	if err != nil {
		return unitypes.OutputData{}, unitypes.NewErrorData(unitypes.ErrCodeVariableNotFound,
			"Config Error: No value is set for '%s'. Use '.config.set key::%s' first.", key, key)
	}
	return unitypes.NewTextOutput(value), nil
}
