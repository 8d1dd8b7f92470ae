package builtin

import (
	"fmt"

	"unilang/pkg/unitypes"
)

// EchoCommand implements .system.echo for outputting text.
// Variables are expanded unless raw is set, and the result can be stored in a variable.
type EchoCommand struct{}

// Definition describes .system.echo.
func (c *EchoCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "echo",
		Namespace:   ".system",
		Description: "Echoes a message",
		Hint:        "Echoes back the provided arguments.",
		Status:      unitypes.StatusStable,
		Version:     "1.0.0",
		Aliases:     []string{"e"},
		Tags:        []string{"utility"},
		Idempotent:  true,
		RoutineLink: ".system.echo",
		Examples: []string{
			`.system.echo "Hello"`,
			`.system.echo "Hello ${name}" to::greeting`,
			`.system.echo raw::true "${not_expanded}"`,
		},
		Arguments: []unitypes.ArgumentDefinition{
			{
				Name:       "text",
				Kind:       unitypes.String,
				Hint:       "Text to echo.",
				Aliases:    []string{"arg1"},
				Attributes: unitypes.ArgumentAttributes{Optional: true},
			},
			{
				Name:       "raw",
				Kind:       unitypes.Boolean,
				Hint:       "Do not expand ${variables}.",
				Attributes: unitypes.ArgumentAttributes{Optional: true, Default: unitypes.StringPtr("false")},
			},
			{
				Name:       "to",
				Kind:       unitypes.String,
				Hint:       "Variable that receives the echoed text.",
				Attributes: unitypes.ArgumentAttributes{Optional: true},
			},
		},
	}
}

// Execute echoes the text.
func (c *EchoCommand) Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
	text := cmd.StringOr("text", "")

	raw, err := cmd.Boolean("raw")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	if !raw {
		text = ctx.InterpolateVariables(text)
	}

	if target := cmd.StringOr("to", ""); target != "" {
		if err := ctx.SetVariable(target, text); err != nil {
			return unitypes.OutputData{}, fmt.Errorf("failed to store result in %s: %w", target, err)
		}
	}
	return unitypes.NewTextOutput(text), nil
}
