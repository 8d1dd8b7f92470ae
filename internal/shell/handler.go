// Package shell provides the interactive shell interface and input processing for unilang.
// It connects the command pipeline to the ishell interactive environment, prompting for
// arguments that must be entered interactively.
package shell

import (
	"fmt"
	"strings"

	"unilang/internal/context"
	"unilang/internal/logger"
	"unilang/internal/output"
	"unilang/internal/pipeline"
	"unilang/internal/semantic"
	"unilang/internal/services"

	"github.com/abiosoft/ishell/v2"
	"github.com/charmbracelet/log"
)

// Prompt is the interactive shell prompt.
const Prompt = "unilang> "

// CommentPrefix starts an input line that is ignored.
const CommentPrefix = "#"

// maxInteractivePrompts bounds how many arguments are asked for in one input.
const maxInteractivePrompts = 16

// Prompter reads answers for interactive arguments. *ishell.Context satisfies it.
type Prompter interface {
	Print(val ...interface{})
	ReadLine() string
	ReadPassword() string
}

// Handler runs shell input through a pipeline and prints the results.
type Handler struct {
	pipeline *pipeline.Pipeline
	registry pipeline.Registry
	ctx      *context.ExecutionContext
	printer  *output.Printer
	logger   *log.Logger
}

// NewHandler creates a handler. A nil printer selects the global printer.
func NewHandler(p *pipeline.Pipeline, registry pipeline.Registry, ctx *context.ExecutionContext, printer *output.Printer) *Handler {
	if printer == nil {
		printer = output.GetGlobalPrinter()
	}
	return &Handler{
		pipeline: p,
		registry: registry,
		ctx:      ctx,
		printer:  printer,
		logger:   logger.NewStyledLogger("Shell"),
	}
}

// Context returns the execution context shared by every input of the session.
func (h *Handler) Context() *context.ExecutionContext {
	return h.ctx
}

// ProcessInput handles user input from the interactive shell and executes commands.
// ishell hands over the line split by strings.Fields, so runs of whitespace inside
// quoted values reach the parser as single spaces. Execute keeps them intact.
func (h *Handler) ProcessInput(c *ishell.Context) {
	if len(c.RawArgs) == 0 {
		return
	}
	h.Execute(strings.Join(c.RawArgs, " "), c)
}

// Execute processes one line of input, asking prompter for interactive arguments, and
// prints the outcome. Comment and blank lines yield a zero result.
func (h *Handler) Execute(input string, prompter Prompter) pipeline.CommandResult {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, CommentPrefix) {
		return pipeline.CommandResult{Input: input, Stage: pipeline.StageComplete}
	}

	result := h.pipeline.ProcessCommand(input, h.ctx)
	for attempt := 0; attempt < maxInteractivePrompts && prompter != nil; attempt++ {
		command, argument, ok := semantic.IsInteractiveRequired(result.Err)
		if !ok {
			break
		}
		value, answered := h.ask(command, argument, prompter)
		if !answered {
			h.printer.Warning("Cancelled: no value entered for " + argument)
			return result
		}
		input = AppendArgument(input, argument, value)
		result = h.pipeline.ProcessCommand(input, h.ctx)
	}

	h.report(result)
	return result
}

// ask prompts for one argument, hiding the input of sensitive arguments.
func (h *Handler) ask(command, argument string, prompter Prompter) (string, bool) {
	sensitive := false
	if def, ok := h.registry.Lookup(command); ok {
		if arg, found := def.Argument(argument); found {
			sensitive = arg.Attributes.Sensitive
		}
	}

	prompter.Print(fmt.Sprintf("%s: ", argument))
	var value string
	if sensitive {
		value = prompter.ReadPassword()
	} else {
		value = prompter.ReadLine()
	}
	h.logger.Debug("Interactive argument entered", "command", command, "argument", argument, "sensitive", sensitive)
	return value, value != ""
}

func (h *Handler) report(result pipeline.CommandResult) {
	for _, out := range result.Outputs {
		h.printer.PrintOutput(out)
	}
	if result.Err == nil {
		return
	}

	logger.Error("Command failed", "command", result.Input, "stage", result.Stage, "error", result.Err)
	h.printer.PrintError(result.Err)
	if !strings.Contains(result.Input, "?") {
		h.printer.Hint("Type ? for available commands")
	}
}

// AppendArgument adds a quoted name::"value" argument to input.
func AppendArgument(input, name, value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return fmt.Sprintf(`%s %s::"%s"`, input, name, escaped)
}

// InitializeServices initializes every registered service.
func InitializeServices(testMode bool) error {
	if err := services.GetGlobalRegistry().InitializeAll(); err != nil {
		return err
	}
	logger.Debug("Services initialized", "test_mode", testMode)
	return nil
}

// NewShell builds the interactive ishell instance around h.
func NewShell(h *Handler, banner string) *ishell.Shell {
	sh := ishell.New()
	sh.SetPrompt(Prompt)

	// "?" is the unilang help operator.
	sh.DeleteCmd("help")

	if completer, err := services.GetGlobalAutoCompleteService(); err == nil {
		completer.SetVariables(h.ctx)
		sh.CustomCompleter(completer)
	} else {
		logger.Warn("Autocomplete unavailable", "error", err)
	}

	if banner != "" {
		sh.Println(banner)
	}
	sh.Println("Type '?' for available commands or 'exit' to quit.")

	sh.NotFound(h.ProcessInput)
	return sh
}
