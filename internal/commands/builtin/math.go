package builtin

import (
	"fmt"

	"unilang/pkg/unitypes"
)

// AddCommand implements .math.add, the sum of two integers.
type AddCommand struct{}

// Definition describes .math.add and its aliases .math.sum and .math.plus.
func (c *AddCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "add",
		Namespace:   ".math",
		Description: "Adds two numbers.",
		Hint:        "Adds two numbers.",
		Status:      unitypes.StatusStable,
		Version:     "1.0.0",
		Aliases:     []string{"sum", "plus"},
		Tags:        []string{"math", "calculation"},
		Idempotent:  true,
		Examples:    []string{".math.add a::3 b::4", ".math.sum 10 20"},
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "a", Kind: unitypes.Integer, Hint: "First number."},
			{Name: "b", Kind: unitypes.Integer, Hint: "Second number."},
		},
	}
}

// Execute adds a and b.
func (c *AddCommand) Execute(cmd unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
	a, b, err := operands(cmd, "a", "b")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	return unitypes.NewTextOutput(fmt.Sprintf("Result: %d", a+b)), nil
}

// SubCommand implements .math.sub, the difference of two integers.
type SubCommand struct{}

// Definition describes .math.sub.
func (c *SubCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "sub",
		Namespace:   ".math",
		Description: "Subtracts two numbers.",
		Hint:        "Subtracts two numbers.",
		Status:      unitypes.StatusBeta,
		Version:     "0.9.0",
		Aliases:     []string{"minus"},
		Tags:        []string{"math", "calculation"},
		Idempotent:  true,
		Examples:    []string{".math.sub x::10 y::4"},
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "x", Kind: unitypes.Integer, Hint: "Minuend."},
			{Name: "y", Kind: unitypes.Integer, Hint: "Subtrahend."},
		},
	}
}

// Execute subtracts y from x.
func (c *SubCommand) Execute(cmd unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
	x, y, err := operands(cmd, "x", "y")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	return unitypes.NewTextOutput(fmt.Sprintf("Result: %d", x-y)), nil
}

func operands(cmd unitypes.VerifiedCommand, first, second string) (int64, int64, error) {
	a, err := cmd.Integer(first)
	if err != nil {
		return 0, 0, err
	}
	b, err := cmd.Integer(second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
