package builtin

import (
	"unilang/internal/logger"
	"unilang/internal/version"
	"unilang/pkg/unitypes"
)

// systemVariableSetter is implemented by contexts that accept #-prefixed variables.
type systemVariableSetter interface {
	SetSystemVariable(name string, value string) error
}

// VersionCommand implements .version, showing version information and storing its
// components in #version_* variables.
type VersionCommand struct{}

// Definition describes .version.
func (c *VersionCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        ".version",
		Description: "Show unilang version information and store details in system variables",
		Hint:        "Show version information.",
		Status:      unitypes.StatusStable,
		Version:     "1.0.0",
		Idempotent:  true,
		Examples:    []string{".version", ".version detailed::true"},
		Arguments: []unitypes.ArgumentDefinition{
			{
				Name:       "detailed",
				Kind:       unitypes.Boolean,
				Hint:       "Include commit, build date, Go version and platform.",
				Attributes: unitypes.ArgumentAttributes{Optional: true, Default: unitypes.StringPtr("false")},
			},
		},
	}
}

// Execute reports the version.
func (c *VersionCommand) Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
	info, err := version.GetInfo()
	if err != nil {
		return unitypes.OutputData{}, err
	}

	if setter, ok := ctx.(systemVariableSetter); ok {
		systemVars := map[string]string{
			"#version":            version.GetVersion(),
			"#version_base":       version.GetBaseVersion(),
			"#version_commit":     info.GitCommit,
			"#version_build_date": info.BuildDate,
			"#version_go_version": info.GoVersion,
			"#version_platform":   info.Platform,
		}
		for name, value := range systemVars {
			if err := setter.SetSystemVariable(name, value); err != nil {
				logger.Warn("Failed to store version variable", "variable", name, "error", err)
			}
		}
	}

	detailed, err := cmd.Boolean("detailed")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	if detailed {
		return unitypes.NewTextOutput(version.GetDetailedVersion()), nil
	}
	return unitypes.NewTextOutput(version.GetFormattedVersion()), nil
}
