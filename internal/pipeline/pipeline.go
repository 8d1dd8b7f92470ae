// Package pipeline wires the parser, semantic analyzer and interpreter together.
// It processes one input line or a batch of lines and reports every outcome
// in a uniform CommandResult, answering help requests along the way.
package pipeline

import (
	"fmt"
	"strings"

	"unilang/internal/interpreter"
	"unilang/internal/logger"
	"unilang/internal/parser"
	"unilang/internal/semantic"
	"unilang/internal/services"
	"unilang/pkg/unitypes"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Registry is everything the pipeline needs from a command registry.
type Registry interface {
	semantic.CommandRegistry
	interpreter.RoutineRegistry
	services.CommandCatalog
}

// Stage identifies how far an input got through the pipeline.
type Stage int

const (
	// StageParse - tokenizing and parsing the input text
	StageParse Stage = iota
	// StageAnalyze - resolving commands and binding arguments
	StageAnalyze
	// StageExecute - running routines
	StageExecute
	// StageComplete - every instruction finished
	StageComplete
)

// String returns a human-readable representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageParse:
		return "Parse"
	case StageAnalyze:
		return "Analyze"
	case StageExecute:
		return "Execute"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Options configures a Pipeline.
type Options struct {
	// ContinueOnError keeps ProcessBatch going after a failed input.
	ContinueOnError bool
	// Parser holds the parser strictness options.
	Parser parser.Options
	// Fs backs File and Directory arguments; nil selects the OS filesystem.
	Fs afero.Fs
}

// DefaultOptions returns options that stop a batch at the first failure.
func DefaultOptions() Options {
	return Options{Parser: parser.DefaultOptions()}
}

// CommandResult is the outcome of processing one input.
type CommandResult struct {
	Input   string
	Outputs []unitypes.OutputData
	Err     error
	// Stage is the stage that failed, or StageComplete.
	Stage Stage
	// Help is set when Outputs hold generated help instead of command output.
	Help bool
}

// Success reports whether the input was processed without error.
func (r CommandResult) Success() bool {
	return r.Err == nil
}

// Code returns the error code of a failed result and "" on success.
func (r CommandResult) Code() unitypes.ErrorCode {
	return unitypes.CodeOf(r.Err)
}

// Content joins the content of every output with newlines.
func (r CommandResult) Content() string {
	parts := make([]string, 0, len(r.Outputs))
	for _, out := range r.Outputs {
		parts = append(parts, out.Content)
	}
	return strings.Join(parts, "\n")
}

// BatchResult is the outcome of processing several inputs.
type BatchResult struct {
	Results   []CommandResult
	Total     int
	Succeeded int
	Failed    int
}

// AllSucceeded reports whether every input was processed and succeeded.
func (b BatchResult) AllSucceeded() bool {
	return b.Failed == 0 && len(b.Results) == b.Total
}

// FirstError returns the error of the first failed result, if any.
func (b BatchResult) FirstError() error {
	for _, r := range b.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Pipeline processes unilang input against a registry.
type Pipeline struct {
	registry    Registry
	parser      *parser.Parser
	analyzer    *semantic.Analyzer
	interpreter *interpreter.Interpreter
	help        *services.HelpService
	options     Options
	logger      *log.Logger
}

// New creates a pipeline over registry.
func New(registry Registry, options Options) *Pipeline {
	help := services.NewHelpService(registry)
	if err := help.Initialize(); err != nil {
		logger.Warn("Help service initialization failed", "error", err)
	}
	return &Pipeline{
		registry:    registry,
		parser:      parser.New(options.Parser),
		analyzer:    semantic.NewAnalyzer(registry, options.Fs),
		interpreter: interpreter.New(registry),
		help:        help,
		options:     options,
		logger:      logger.NewStyledLogger("Pipeline"),
	}
}

// NewDefault creates a pipeline over registry with DefaultOptions.
func NewDefault(registry Registry) *Pipeline {
	return New(registry, DefaultOptions())
}

// Help returns the help service used to answer help requests.
func (p *Pipeline) Help() *services.HelpService {
	return p.help
}

// SetContinueOnError changes the batch failure policy.
func (p *Pipeline) SetContinueOnError(continueOnError bool) {
	p.options.ContinueOnError = continueOnError
}

// ProcessCommand parses, analyzes and executes input, which may hold several
// instructions separated by ";;". Nothing is executed unless every instruction binds.
func (p *Pipeline) ProcessCommand(input string, ctx unitypes.Context) CommandResult {
	instructions, err := p.parser.ParseSingleStr(input)
	if err != nil {
		p.logger.Debug("Parse failed", "input", input, "error", err)
		return CommandResult{Input: input, Err: err, Stage: StageParse}
	}
	return p.ProcessInstructions(input, instructions, ctx)
}

// ProcessArgs runs process arguments as received on a command line. Shell grouping is
// kept: each element is one token and never split again.
func (p *Pipeline) ProcessArgs(args []string, ctx unitypes.Context) CommandResult {
	input := strings.Join(args, " ")
	instructions, err := p.parser.ParseArgv(args)
	if err != nil {
		p.logger.Debug("Parse failed", "args", len(args), "error", err)
		return CommandResult{Input: input, Err: err, Stage: StageParse}
	}
	return p.ProcessInstructions(input, instructions, ctx)
}

// ProcessInstructions analyzes and executes already parsed instructions.
func (p *Pipeline) ProcessInstructions(input string, instructions []parser.GenericInstruction, ctx unitypes.Context) CommandResult {
	result := CommandResult{Input: input}

	verified, err := p.analyzer.Analyze(instructions)
	if err != nil {
		if command, ok := semantic.IsHelpRequest(err); ok {
			return p.helpResult(input, command)
		}
		p.logger.Debug("Analysis failed", "input", input, "error", err)
		result.Err = err
		result.Stage = StageAnalyze
		return result
	}

	outputs, err := p.interpreter.Run(verified, ctx)
	result.Outputs = outputs
	if err != nil {
		p.logger.Debug("Execution failed", "input", input, "error", err)
		result.Err = err
		result.Stage = StageExecute
		return result
	}

	result.Stage = StageComplete
	return result
}

// helpResult answers a help request as successful output.
func (p *Pipeline) helpResult(input, command string) CommandResult {
	var text string
	var err error
	if command == "" {
		text, err = p.help.List("")
	} else {
		text, err = p.help.CommandHelp(command)
	}
	if err != nil {
		return CommandResult{Input: input, Err: fmt.Errorf("failed to generate help: %w", err), Stage: StageAnalyze}
	}
	return CommandResult{
		Input:   input,
		Outputs: []unitypes.OutputData{unitypes.NewTextOutput(text)},
		Stage:   StageComplete,
		Help:    true,
	}
}

// ProcessBatch processes each input in order. Unless ContinueOnError is set,
// processing stops at the first failed input.
func (p *Pipeline) ProcessBatch(inputs []string, ctx unitypes.Context) BatchResult {
	batch := BatchResult{Total: len(inputs)}
	for i, input := range inputs {
		result := p.ProcessCommand(input, ctx)
		batch.Results = append(batch.Results, result)
		if result.Success() {
			batch.Succeeded++
			continue
		}

		batch.Failed++
		p.logger.Debug("Batch input failed", "number", i+1, "input", input, "error", result.Err)
		if !p.options.ContinueOnError {
			break
		}
	}

	p.logger.Debug("Batch finished", "total", batch.Total, "succeeded", batch.Succeeded, "failed", batch.Failed)
	return batch
}
