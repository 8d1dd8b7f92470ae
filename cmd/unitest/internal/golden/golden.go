package golden

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ScriptRunner executes a test script and returns its output.
type ScriptRunner func(scriptPath string, config *Config) (string, error)

// Suite records, runs and diffs golden file tests.
type Suite struct {
	config     *Config
	normalizer *Normalizer
	run        ScriptRunner
	out        io.Writer
}

// NewSuite creates a suite that runs scripts with the unilang binary.
func NewSuite(config *Config) *Suite {
	return &Suite{
		config:     config,
		normalizer: NewNormalizer(),
		run:        RunScript,
		out:        os.Stdout,
	}
}

// SetRunner replaces the script runner.
func (s *Suite) SetRunner(run ScriptRunner) {
	s.run = run
}

// SetOutput redirects progress and diff output.
func (s *Suite) SetOutput(w io.Writer) {
	s.out = w
}

func (s *Suite) actual(testName string) (string, error) {
	scriptPath, err := s.config.FindScript(testName)
	if err != nil {
		return "", err
	}
	output, err := s.run(scriptPath, s.config)
	if err != nil {
		return "", err
	}
	return s.normalizer.Normalize(CleanOutput(output)), nil
}

func (s *Suite) expected(testName string) (string, error) {
	expectedPath := s.config.ExpectedPath(testName)
	content, err := os.ReadFile(expectedPath)
	if err != nil {
		return "", fmt.Errorf("failed to read expected file %s: %w", expectedPath, err)
	}
	return strings.TrimRight(string(content), "\n"), nil
}

// RecordTest runs a script and saves its output as the golden file.
func (s *Suite) RecordTest(testName string) error {
	if s.config.Verbose {
		fmt.Fprintf(s.out, "Recording test: %s\n", testName)
	}

	output, err := s.actual(testName)
	if err != nil {
		return err
	}

	expectedPath := s.config.ExpectedPath(testName)
	if err := os.WriteFile(expectedPath, []byte(output+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write expected file: %w", err)
	}

	if s.config.Verbose {
		fmt.Fprintf(s.out, "Recorded expected output for test: %s\n", testName)
	}
	return nil
}

// RunTest runs a script and compares its output with the golden file.
func (s *Suite) RunTest(testName string) error {
	if s.config.Verbose {
		fmt.Fprintf(s.out, "Running test: %s\n", testName)
	}

	actual, err := s.actual(testName)
	if err != nil {
		return err
	}
	expected, err := s.expected(testName)
	if err != nil {
		return err
	}

	if !s.normalizer.Equal(expected, actual) {
		return fmt.Errorf("test failed: output doesn't match expected")
	}

	if s.config.Verbose {
		fmt.Fprintf(s.out, "Test passed: %s\n", testName)
	}
	return nil
}

// RunAllTests runs every test in the test directory and reports each result.
func (s *Suite) RunAllTests() error {
	tests, err := FindAllTests(s.config.TestDir)
	if err != nil {
		return fmt.Errorf("failed to find tests: %w", err)
	}

	var failed []string
	passed := 0
	for _, test := range tests {
		if err := s.RunTest(test); err != nil {
			failed = append(failed, test)
			fmt.Fprintf(s.out, "FAIL %s: %v\n", test, err)
			continue
		}
		passed++
		fmt.Fprintf(s.out, "PASS %s\n", test)
	}

	fmt.Fprintf(s.out, "\nResults: %d passed, %d failed\n", passed, len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("tests failed: %v", failed)
	}
	return nil
}

// ShowDiff prints the differences between the golden file and the current output.
func (s *Suite) ShowDiff(testName string) error {
	actual, err := s.actual(testName)
	if err != nil {
		return err
	}
	expected, err := s.expected(testName)
	if err != nil {
		return err
	}
	s.WriteDiff(expected, actual, testName)
	return nil
}

// WriteDiff writes a numbered listing of both outputs followed by a character diff.
func (s *Suite) WriteDiff(expected, actual, testName string) {
	fmt.Fprintf(s.out, "=== Test: %s ===\n", testName)

	if s.normalizer.Equal(expected, actual) {
		fmt.Fprintln(s.out, "No differences found - test passes!")
		return
	}

	fmt.Fprintln(s.out, "\n--- Expected ---")
	s.writeNumberedLines(expected)
	fmt.Fprintln(s.out, "\n--- Actual ---")
	s.writeNumberedLines(actual)

	fmt.Fprintln(s.out, "\n--- Diff ---")
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(s.out, "- %q\n", diff.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(s.out, "+ %q\n", diff.Text)
		case diffmatchpatch.DiffEqual:
			if len(diff.Text) > 50 {
				fmt.Fprintf(s.out, "  %q...\n", diff.Text[:47])
			} else {
				fmt.Fprintf(s.out, "  %q\n", diff.Text)
			}
		}
	}
}

func (s *Suite) writeNumberedLines(content string) {
	for i, line := range strings.Split(content, "\n") {
		fmt.Fprintf(s.out, "%4d| %s\n", i+1, line)
	}
}
