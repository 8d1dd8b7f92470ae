package builtin

import (
	"bufio"
	"bytes"
	"strings"

	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
)

// fsProvider is implemented by contexts that carry a filesystem.
type fsProvider interface {
	Fs() afero.Fs
}

// CatCommand implements .files.cat, printing file contents with optional line limiting.
// Fs overrides the filesystem; when nil the context's filesystem is used, falling back to the OS.
type CatCommand struct {
	Fs afero.Fs
}

// Definition describes .files.cat.
func (c *CatCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "cat",
		Namespace:   ".files",
		Description: "Read and display file contents",
		Hint:        "Print file contents to stdout",
		Status:      unitypes.StatusStable,
		Version:     "1.0.0",
		Aliases:     []string{"type"},
		Tags:        []string{"filesystem"},
		Permissions: []string{"read_file"},
		Idempotent:  true,
		RoutineLink: ".files.cat",
		Examples:    []string{".files.cat path::/etc/hosts", ".files.cat /etc/hosts lines::5 start::2"},
		Arguments: []unitypes.ArgumentDefinition{
			{
				Name:        "path",
				Description: "The path to the file to read",
				Hint:        "File path",
				Kind:        unitypes.File,
				Aliases:     []string{"p"},
			},
			{
				Name:            "lines",
				Description:     "Maximum number of lines to print",
				Kind:            unitypes.Integer,
				Attributes:      unitypes.ArgumentAttributes{Optional: true},
				ValidationRules: []unitypes.ValidationRule{unitypes.Min(1)},
			},
			{
				Name:            "start",
				Description:     "First line to print (1-based)",
				Kind:            unitypes.Integer,
				Attributes:      unitypes.ArgumentAttributes{Optional: true, Default: unitypes.StringPtr("1")},
				ValidationRules: []unitypes.ValidationRule{unitypes.Min(1)},
			},
		},
	}
}

func (c *CatCommand) filesystem(ctx unitypes.Context) afero.Fs {
	if c.Fs != nil {
		return c.Fs
	}
	if p, ok := ctx.(fsProvider); ok && p.Fs() != nil {
		return p.Fs()
	}
	return afero.NewOsFs()
}

// Execute reads the file.
func (c *CatCommand) Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error) {
	path, err := cmd.Path("path")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	data, err := afero.ReadFile(c.filesystem(ctx), path)
	if err != nil {
		return unitypes.OutputData{}, &unitypes.ErrorData{
			Code:    unitypes.ErrCodeInternalError,
			Message: "Failed to read file: " + path,
			Cause:   err,
		}
	}

	start, err := cmd.Integer("start")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	limit := int64(-1)
	if cmd.Has("lines") {
		if limit, err = cmd.Integer("lines"); err != nil {
			return unitypes.OutputData{}, err
		}
	}
	if start == 1 && limit < 0 {
		return unitypes.NewTextOutput(string(data)), nil
	}
	return unitypes.NewTextOutput(selectLines(data, start, limit)), nil
}

// selectLines returns up to limit lines beginning at the 1-based line start.
// A negative limit selects every remaining line.
func selectLines(data []byte, start, limit int64) string {
	var selected []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	var line int64
	for scanner.Scan() {
		line++
		if line < start {
			continue
		}
		if limit >= 0 && int64(len(selected)) >= limit {
			break
		}
		selected = append(selected, scanner.Text())
	}
	return strings.Join(selected, "\n")
}
