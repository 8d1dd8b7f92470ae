// Package testutils provides mocks and helpers shared by unilang tests.
package testutils

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"sync"
)

// MockRunID is the run identifier reported by MockContext.
const MockRunID = "00000000-0000-4000-8000-000000000001"

var variablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// MockContext implements unitypes.Context for testing
type MockContext struct {
	mu        sync.RWMutex
	variables map[string]string
	output    bytes.Buffer
	testMode  bool

	// For testing error scenarios
	getVariableError error
	setVariableError error
}

// NewMockContext creates a new mock context in test mode
func NewMockContext() *MockContext {
	return &MockContext{
		variables: make(map[string]string),
		testMode:  true,
	}
}

// NewMockContextWithVars creates a mock context with predefined variables
func NewMockContextWithVars(vars map[string]string) *MockContext {
	ctx := NewMockContext()
	for k, v := range vars {
		ctx.variables[k] = v
	}
	return ctx
}

// RunID implements Context.RunID
func (m *MockContext) RunID() string {
	return MockRunID
}

// GetVariable implements Context.GetVariable
func (m *MockContext) GetVariable(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getVariableError != nil {
		return "", m.getVariableError
	}
	if value, ok := m.variables[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("variable '%s' not found", name)
}

// SetVariable implements Context.SetVariable
func (m *MockContext) SetVariable(name string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setVariableError != nil {
		return m.setVariableError
	}
	m.variables[name] = value
	return nil
}

// InterpolateVariables replaces ${name} references with their values in a single pass.
// Unknown variables expand to the empty string.
func (m *MockContext) InterpolateVariables(text string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return variablePattern.ReplaceAllStringFunc(text, func(ref string) string {
		return m.variables[variablePattern.FindStringSubmatch(ref)[1]]
	})
}

// Output implements Context.Output
func (m *MockContext) Output() io.Writer {
	return &m.output
}

// Written returns everything routines wrote to Output.
func (m *MockContext) Written() string {
	return m.output.String()
}

// SetTestMode sets the test mode flag
func (m *MockContext) SetTestMode(testMode bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.testMode = testMode
}

// IsTestMode implements Context.IsTestMode
func (m *MockContext) IsTestMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.testMode
}

// GetAllVariables returns a copy of every variable.
func (m *MockContext) GetAllVariables() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.variables))
	for k, v := range m.variables {
		result[k] = v
	}
	return result
}

// VariableNames returns the sorted variable names.
func (m *MockContext) VariableNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.variables))
	for name := range m.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetGetVariableError makes GetVariable fail with err
func (m *MockContext) SetGetVariableError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getVariableError = err
}

// SetSetVariableError makes SetVariable fail with err
func (m *MockContext) SetSetVariableError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setVariableError = err
}

// ClearVariables removes every variable
func (m *MockContext) ClearVariables() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variables = make(map[string]string)
}
