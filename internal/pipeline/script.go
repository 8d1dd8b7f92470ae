package pipeline

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
)

// CommentPrefix starts a comment line in a script.
const CommentPrefix = "#"

// LoadScript reads a script file and returns its instructions, one per line.
// Blank lines and lines starting with # are skipped.
func LoadScript(fs afero.Fs, path string) ([]string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ScriptLines(data), nil
}

// ScriptLines splits script content into instruction lines.
func ScriptLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ExecuteScript loads path from fs and processes its lines as a batch.
func (p *Pipeline) ExecuteScript(fs afero.Fs, path string, ctx unitypes.Context) (BatchResult, error) {
	p.logger.Debug("Starting script execution", "script", path)

	lines, err := LoadScript(fs, path)
	if err != nil {
		return BatchResult{}, err
	}

	batch := p.ProcessBatch(lines, ctx)
	if batch.AllSucceeded() {
		p.logger.Debug("Script execution completed successfully", "script", path, "commands_executed", batch.Succeeded)
	} else {
		p.logger.Debug("Script execution finished with failures", "script", path, "failed", batch.Failed)
	}
	return batch, nil
}
