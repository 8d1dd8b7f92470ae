// Package builtin provides the unilang commands that are available by default.
// Every command registers itself into commands.GlobalRegistry from init.
package builtin

import (
	"fmt"

	"unilang/internal/commands"
)

// All returns a fresh instance of every builtin command.
func All() []commands.Command {
	return []commands.Command{
		&AddCommand{},
		&SubCommand{},
		&GreetCommand{},
		&ConfigSetCommand{},
		&ConfigGetCommand{},
		&EchoCommand{},
		&CatCommand{},
		&DiffCommand{},
		&VersionCommand{},
	}
}

// RegisterAll registers every builtin command into registry.
func RegisterAll(registry *commands.Registry) error {
	for _, cmd := range All() {
		if err := registry.RegisterCommand(cmd); err != nil {
			def := cmd.Definition()
			return fmt.Errorf("failed to register %s command: %w", def.FullName(), err)
		}
	}
	return nil
}

func init() {
	if err := RegisterAll(commands.GlobalRegistry); err != nil {
		panic(fmt.Sprintf("failed to register builtin commands: %v", err))
	}
}
