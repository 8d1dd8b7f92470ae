// Package golden provides golden file testing functionality for unilang scripts.
package golden

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Default configuration values
const (
	DefaultTestDir     = "test/golden"
	DefaultUnilangCmd  = "unilang"
	DefaultTestTimeout = 30

	// ScriptExtension is the extension of test scripts.
	ScriptExtension = ".ul"
	// ExpectedExtension is the extension of golden files.
	ExpectedExtension = ".expected"
)

// Config holds the global configuration for unitest
type Config struct {
	TestDir     string
	UnilangCmd  string
	Verbose     bool
	TestTimeout int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		TestDir:     DefaultTestDir,
		UnilangCmd:  DefaultUnilangCmd,
		TestTimeout: DefaultTestTimeout,
	}
}

// ScriptPath returns the path of the script for testName.
func (c *Config) ScriptPath(testName string) string {
	return filepath.Join(c.TestDir, testName+ScriptExtension)
}

// ExpectedPath returns the path of the golden file for testName.
func (c *Config) ExpectedPath(testName string) string {
	return filepath.Join(c.TestDir, testName+ExpectedExtension)
}

// FindScript locates the script for testName and fails when it does not exist.
func (c *Config) FindScript(testName string) (string, error) {
	scriptPath := c.ScriptPath(testName)
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return "", fmt.Errorf("test script not found: %s", scriptPath)
	}
	return scriptPath, nil
}

// ResolveCommand finds the unilang binary, preferring a local build.
func ResolveCommand(unilangCmd string) (string, error) {
	if unilangCmd != DefaultUnilangCmd {
		if _, err := os.Stat(unilangCmd); err == nil {
			return unilangCmd, nil
		}
		if path, err := exec.LookPath(unilangCmd); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("unilang command not found: %s", unilangCmd)
	}

	candidates := []string{"./bin/unilang", "bin/unilang"}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(DefaultUnilangCmd); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("unilang command not found. Tried: %v", append(candidates, DefaultUnilangCmd))
}

// RunScript executes a script in deterministic batch mode and returns its combined output.
// A non-zero exit status is not an error: failing scripts are valid golden tests.
func RunScript(scriptPath string, config *Config) (string, error) {
	actualCmd, err := ResolveCommand(config.UnilangCmd)
	if err != nil {
		return "", err
	}

	timeout := time.Duration(config.TestTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Always use --log-level error to keep log lines out of the output
	cmd := exec.CommandContext(ctx, actualCmd, "--test-mode", "--log-level", "error", "--format", "plain", "batch", scriptPath)
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return string(output), fmt.Errorf("test timed out after %s", timeout)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return string(output), fmt.Errorf("failed to run %s: %w", actualCmd, err)
	}
	return string(output), nil
}

// CleanOutput removes trailing newlines while keeping trailing spaces within lines.
func CleanOutput(output string) string {
	return strings.TrimRight(output, "\n")
}

// FindAllTests returns the sorted names of every script in dir.
func FindAllTests(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ScriptExtension))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(match), ScriptExtension))
	}
	sort.Strings(names)
	return names, nil
}
