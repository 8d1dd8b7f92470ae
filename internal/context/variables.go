package context

import (
	"fmt"
	"strings"
)

// systemVariables lists the computed variables reported by GetAllVariables.
var systemVariables = []string{
	"@pwd", "@user", "@home", "@date", "@time", "@os",
	"#run_id", "#test_mode", "#command_count", "#last_command", "_output",
}

// VariableType classifies a variable by its name prefix.
type VariableType string

const (
	// TypeUser represents user-defined variables
	TypeUser VariableType = "user"
	// TypeSystem represents environment-derived variables (e.g., @pwd, @user)
	TypeSystem VariableType = "system"
	// TypeMetadata represents run metadata (e.g., #run_id, #command_count)
	TypeMetadata VariableType = "metadata"
	// TypeCommand represents command output variables (e.g., _output)
	TypeCommand VariableType = "command"
)

// VariableInfo describes a variable name for introspection.
type VariableInfo struct {
	Name        string
	Type        VariableType
	IsReadOnly  bool
	Description string
}

// IsSystemVariable reports whether name uses a reserved prefix.
func IsSystemVariable(name string) bool {
	return strings.HasPrefix(name, "@") || strings.HasPrefix(name, "#") || strings.HasPrefix(name, "_")
}

// ValidateVariableName checks that name can be set by a user.
func ValidateVariableName(name string) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("variable name cannot contain whitespace")
	}
	if strings.ContainsAny(name, "${}") {
		return fmt.Errorf("variable name cannot contain '$', '{' or '}'")
	}
	if IsSystemVariable(name) {
		return fmt.Errorf("variable name cannot start with system prefixes @, # or _")
	}
	return nil
}

// AnalyzeVariable classifies a variable name.
func AnalyzeVariable(name string) VariableInfo {
	info := VariableInfo{Name: name}
	switch {
	case strings.HasPrefix(name, "@"):
		info.Type = TypeSystem
		info.Description = "read-only system variable"
		info.IsReadOnly = true
	case strings.HasPrefix(name, "#"):
		info.Type = TypeMetadata
		info.Description = "read-only metadata variable"
		info.IsReadOnly = true
	case strings.HasPrefix(name, "_"):
		info.Type = TypeCommand
		info.Description = "read-only command output variable"
		info.IsReadOnly = true
	default:
		info.Type = TypeUser
		info.Description = "user-defined variable"
	}
	return info
}
