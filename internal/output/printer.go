package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"unilang/pkg/unitypes"

	"github.com/charmbracelet/x/ansi"
)

// Printer is the main output handler that supports plain, styled and JSON output.
type Printer struct {
	styleProvider StyleProvider
	markdown      MarkdownRenderer
	writer        io.Writer
	mode          Mode
	forcePlain    bool
	testMode      bool

	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes to os.Stdout with automatic mode detection.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text with info styling.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs success text with success styling (typically green).
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs warning text with warning styling (typically yellow).
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs error text with error styling (typically red).
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Hint outputs secondary guidance text.
func (p *Printer) Hint(text string) {
	p.output(SemanticHint, text, true)
}

// Command outputs a command path with command styling.
func (p *Printer) Command(text string) {
	p.output(SemanticCommand, text, false)
}

// PrintOutput writes the result of one routine invocation.
// Markdown outputs are rendered when styling is active and a renderer is configured.
func (p *Printer) PrintOutput(out unitypes.OutputData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModeJSON {
		record := map[string]interface{}{
			"type":    "output",
			"content": ansi.Strip(out.Content),
			"format":  out.Format,
		}
		if !p.testMode && out.ExecutionTime > 0 {
			record["execution_time_ms"] = float64(out.ExecutionTime.Microseconds()) / 1000
		}
		p.write(p.encodeJSON(record, out.Content))
		return
	}

	content := out.Content
	if out.Format == unitypes.FormatMarkdown && p.markdown != nil && p.stylable() {
		if rendered, err := p.markdown.Render(content); err == nil {
			content = rendered
		}
	}
	if content == "" {
		return
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	p.write(content)
}

// PrintError writes a pipeline error with its code.
func (p *Printer) PrintError(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModeJSON {
		record := map[string]interface{}{
			"type":    "error",
			"code":    unitypes.CodeOf(err),
			"message": err.Error(),
		}
		p.write(p.encodeJSON(record, err.Error()))
		return
	}
	p.write(p.renderText(SemanticError, FormatError(err), true))
}

// FormatError renders err as "[CODE] message". Messages that already carry a
// bracketed code are returned unchanged.
func FormatError(err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, "[") {
		return msg
	}
	return fmt.Sprintf("[%s] %s", unitypes.CodeOf(err), msg)
}

// output is the core output method that handles all rendering logic.
func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var finalText string
	switch p.mode {
	case ModeJSON:
		finalText = p.renderJSON(semantic, text)
	case ModeStyled:
		finalText = p.renderStyled(semantic, text, addNewline)
	default:
		finalText = p.renderText(semantic, text, addNewline)
	}

	p.write(finalText)
}

// write emits text. Callers hold the lock.
func (p *Printer) write(text string) {
	_, _ = fmt.Fprint(p.writer, text)
}

func (p *Printer) stylable() bool {
	return !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}

// renderText renders text in plain or auto mode.
func (p *Printer) renderText(semantic SemanticType, text string, addNewline bool) string {
	var style TextStyle
	if p.stylable() {
		style = p.styleProvider.GetStyle(string(semantic))
	} else {
		style = NewPlainStyleProvider().GetStyle(string(semantic))
	}

	result := style.Render(text)
	if addNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// renderStyled renders text with forced styling.
func (p *Printer) renderStyled(semantic SemanticType, text string, addNewline bool) string {
	if p.styleProvider != nil && p.styleProvider.IsAvailable() {
		result := p.styleProvider.GetStyle(string(semantic)).Render(text)
		if addNewline && !strings.HasSuffix(result, "\n") {
			result += "\n"
		}
		return result
	}

	return p.renderText(semantic, text, addNewline)
}

// renderJSON renders output as structured JSON.
func (p *Printer) renderJSON(semantic SemanticType, text string) string {
	return p.encodeJSON(map[string]interface{}{
		"type":    semantic,
		"message": ansi.Strip(text),
	}, text)
}

func (p *Printer) encodeJSON(record map[string]interface{}, fallback string) string {
	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return fallback + "\n"
	}
	return string(jsonBytes) + "\n"
}

// Writer returns the output writer.
func (p *Printer) Writer() io.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer
}

// Mode returns the output mode.
func (p *Printer) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stylable()
}

// String returns a string representation for debugging.
func (p *Printer) String() string {
	hasStyles := "no"
	if p.IsStylable() {
		hasStyles = "yes"
	}
	return fmt.Sprintf("Printer{mode: %v, styles: %s, writer: %T}", p.Mode(), hasStyles, p.Writer())
}
