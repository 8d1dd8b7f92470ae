package builtin

import (
	"unilang/pkg/unitypes"
)

// GreetCommand implements .greet.
type GreetCommand struct{}

// Definition describes .greet with its optional name argument.
func (c *GreetCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        ".greet",
		Description: "Greets the specified person.",
		Hint:        "Greets the specified person.",
		Status:      unitypes.StatusStable,
		Version:     "1.0.0",
		Aliases:     []string{"hi"},
		Idempotent:  true,
		Examples:    []string{`.greet name::"John"`, ".greet"},
		Arguments: []unitypes.ArgumentDefinition{
			{
				Name: "name",
				Kind: unitypes.String,
				Hint: "Name of the person to greet.",
				Attributes: unitypes.ArgumentAttributes{
					Optional: true,
					Default:  unitypes.StringPtr("World"),
				},
			},
		},
	}
}

// Execute returns the greeting.
func (c *GreetCommand) Execute(cmd unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
	return unitypes.NewTextOutput("Hello, " + cmd.StringOr("name", "World") + "!"), nil
}
