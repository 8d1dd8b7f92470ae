// Package context provides the execution state handed to command routines.
// It holds variables, the run identifier, captured output and the output writer for one
// pipeline run or batch.
package context

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// testRunNamespace seeds the deterministic run ID used in test mode.
const testRunNamespace = "unilang-test-run"

// maxInterpolationPasses bounds nested ${var} expansion.
const maxInterpolationPasses = 10

// testModeTime is the fixed clock reading reported by @date and @time in test mode.
var testModeTime = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// ExecutionContext implements unitypes.Context. It is created per pipeline run or
// batch and is not safe for concurrent use.
type ExecutionContext struct {
	variables    map[string]string
	runID        string
	testMode     bool
	output       io.Writer
	fs           afero.Fs
	lastOutput   string
	lastCommand  string
	commandCount int
}

// New creates an ExecutionContext writing to stdout with a fresh run ID.
func New() *ExecutionContext {
	ctx := &ExecutionContext{
		variables: make(map[string]string),
		output:    os.Stdout,
		fs:        afero.NewOsFs(),
	}
	ctx.runID = ctx.generateRunID()
	return ctx
}

// NewTestContext creates a test-mode context writing to w.
func NewTestContext(w io.Writer) *ExecutionContext {
	ctx := New()
	ctx.SetTestMode(true)
	ctx.SetOutput(w)
	return ctx
}

// generateRunID creates a run ID, deterministic in test mode
func (ctx *ExecutionContext) generateRunID() string {
	if ctx.testMode {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(testRunNamespace)).String()
	}
	return uuid.NewString()
}

// RunID returns the identifier of this run.
func (ctx *ExecutionContext) RunID() string {
	return ctx.runID
}

// GetVariable retrieves a variable value by name, supporting both user and system variables.
func (ctx *ExecutionContext) GetVariable(name string) (string, error) {
	if value, ok := ctx.getSystemVariable(name); ok {
		return value, nil
	}
	if value, ok := ctx.variables[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("variable %s not found", name)
}

// SetVariable sets a user variable, preventing modification of system variables.
func (ctx *ExecutionContext) SetVariable(name string, value string) error {
	if info := AnalyzeVariable(name); info.IsReadOnly {
		return fmt.Errorf("cannot set system variable: %s (%s)", name, info.Description)
	}
	if err := ValidateVariableName(name); err != nil {
		return err
	}
	ctx.variables[name] = value
	return nil
}

// SetSystemVariable sets a system variable. It is for internal use by the application.
func (ctx *ExecutionContext) SetSystemVariable(name string, value string) error {
	if !IsSystemVariable(name) {
		return fmt.Errorf("SetSystemVariable can only set system variables (prefixed with @, #, or _), got: %s", name)
	}
	ctx.variables[name] = value
	return nil
}

func (ctx *ExecutionContext) getSystemVariable(name string) (string, bool) {
	switch name {
	case "@pwd":
		if pwd, err := os.Getwd(); err == nil {
			return pwd, true
		}
	case "@user":
		if u, err := user.Current(); err == nil {
			return u.Username, true
		}
	case "@home":
		if home, err := os.UserHomeDir(); err == nil {
			return home, true
		}
	case "@date":
		return ctx.now().Format("2006-01-02"), true
	case "@time":
		return ctx.now().Format("15:04:05"), true
	case "@os":
		return runtime.GOOS + "/" + runtime.GOARCH, true
	case "#run_id":
		return ctx.runID, true
	case "#test_mode":
		return strconv.FormatBool(ctx.testMode), true
	case "#command_count":
		return strconv.Itoa(ctx.commandCount), true
	case "#last_command":
		return ctx.lastCommand, true
	case "_output":
		return ctx.lastOutput, true
	}
	return "", false
}

func (ctx *ExecutionContext) now() time.Time {
	if ctx.testMode {
		return testModeTime
	}
	return time.Now()
}

// GetAllVariables returns user variables together with the computed system variables.
func (ctx *ExecutionContext) GetAllVariables() map[string]string {
	result := make(map[string]string, len(ctx.variables))
	for name, value := range ctx.variables {
		result[name] = value
	}
	for _, name := range systemVariables {
		if value, ok := ctx.getSystemVariable(name); ok {
			result[name] = value
		}
	}
	return result
}

// InterpolateVariables replaces ${variable} placeholders in text with their values.
// Unknown variables expand to the empty string.
func (ctx *ExecutionContext) InterpolateVariables(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}
	for i := 0; i < maxInterpolationPasses; i++ {
		before := text
		text = ctx.interpolateOnce(text)
		if text == before || !strings.Contains(text, "${") {
			break
		}
	}
	return text
}

// interpolateOnce performs a single pass of variable interpolation
func (ctx *ExecutionContext) interpolateOnce(text string) string {
	var result strings.Builder
	i := 0
	for i < len(text) {
		if i < len(text)-1 && text[i] == '$' && text[i+1] == '{' {
			depth := 1
			start := i + 2
			end := start
			for end < len(text) && depth > 0 {
				switch text[end] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					end++
				}
			}
			if depth != 0 {
				// unmatched brace, keep literally
				result.WriteByte(text[i])
				i++
				continue
			}
			name := text[start:end]
			if name == "" {
				result.WriteString("${}")
			} else if value, err := ctx.GetVariable(name); err == nil {
				result.WriteString(value)
			}
			i = end + 1
			continue
		}
		result.WriteByte(text[i])
		i++
	}
	return result.String()
}

// RecordOutput stores the output of the last executed command and bumps the command counter.
func (ctx *ExecutionContext) RecordOutput(command, content string) {
	ctx.lastCommand = command
	ctx.lastOutput = content
	ctx.commandCount++
}

// LastOutput returns the content recorded for the last executed command.
func (ctx *ExecutionContext) LastOutput() string {
	return ctx.lastOutput
}

// Output returns the writer routines print to.
func (ctx *ExecutionContext) Output() io.Writer {
	return ctx.output
}

// SetOutput replaces the output writer. A nil writer discards output.
func (ctx *ExecutionContext) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	ctx.output = w
}

// Fs returns the filesystem routines should use.
func (ctx *ExecutionContext) Fs() afero.Fs {
	return ctx.fs
}

// SetFs replaces the filesystem. A nil fs selects the OS filesystem.
func (ctx *ExecutionContext) SetFs(fs afero.Fs) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	ctx.fs = fs
}

// SetTestMode enables or disables test mode for deterministic behavior.
func (ctx *ExecutionContext) SetTestMode(testMode bool) {
	ctx.testMode = testMode
	ctx.runID = ctx.generateRunID()
}

// IsTestMode returns whether test mode is currently enabled.
func (ctx *ExecutionContext) IsTestMode() bool {
	return ctx.testMode
}
