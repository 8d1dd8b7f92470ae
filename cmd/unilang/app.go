package main

import (
	"fmt"
	"io"
	"os"

	"unilang/internal/commands"
	_ "unilang/internal/commands/builtin" // Import for side effects (init functions)
	"unilang/internal/context"
	"unilang/internal/logger"
	"unilang/internal/output"
	"unilang/internal/pipeline"
	"unilang/internal/services"
	"unilang/internal/shell"
	"unilang/internal/version"
	"unilang/pkg/unitypes"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds everything one CLI invocation works with.
type app struct {
	registry *commands.Registry
	fs       afero.Fs
	pipeline *pipeline.Pipeline
	ctx      *context.ExecutionContext
	printer  *output.Printer
}

// settings are the resolved CLI settings an app is built from.
type settings struct {
	TestMode        bool
	Format          string
	Verbosity       string
	Manifests       []string
	ContinueOnError bool
	MarkdownStyle   string
	WordWrap        int
}

// currentSettings merges flags, environment and config file.
func currentSettings() settings {
	return settings{
		TestMode:        viper.GetBool("test-mode"),
		Format:          viper.GetString("format"),
		Verbosity:       viper.GetString("help.verbosity"),
		Manifests:       manifests,
		ContinueOnError: continueOnError,
		MarkdownStyle:   viper.GetString("markdown.style"),
		WordWrap:        viper.GetInt("markdown.word-wrap"),
	}
}

// newApp initializes services, loads manifests and builds the pipeline printing to w.
func newApp(s settings, registry *commands.Registry, fs afero.Fs, w io.Writer) (*app, error) {
	if err := shell.InitializeServices(s.TestMode); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	for _, path := range s.Manifests {
		count, err := registry.LoadManifestFile(fs, path)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded manifest", "path", path, "commands", count)
	}

	options := pipeline.DefaultOptions()
	options.ContinueOnError = s.ContinueOnError
	options.Fs = fs
	p := pipeline.New(registry, options)

	if s.Verbosity != "" {
		level, err := services.ParseVerbosity(s.Verbosity)
		if err != nil {
			return nil, err
		}
		p.Help().SetVerbosity(level)
	}

	var extra []output.Option
	if md, err := services.GetGlobalMarkdownService(); err == nil {
		if err := configureMarkdown(md, s); err != nil {
			return nil, err
		}
		extra = append(extra, output.WithMarkdown(md))
	}
	printer, err := output.NewPrinterForFormat(s.Format, w, s.TestMode, extra...)
	if err != nil {
		return nil, err
	}
	output.SetGlobalPrinter(printer)

	ctx := context.New()
	ctx.SetTestMode(s.TestMode)
	ctx.SetFs(fs)
	ctx.SetOutput(printer.Writer())

	return &app{
		registry: registry,
		fs:       fs,
		pipeline: p,
		ctx:      ctx,
		printer:  printer,
	}, nil
}

// configureMarkdown applies the configured help style and word wrap.
func configureMarkdown(md *services.MarkdownService, s settings) error {
	style := s.MarkdownStyle
	if style == "" {
		style = services.StyleForFormat(s.Format)
	}
	if err := md.SetStyle(style); err != nil {
		return err
	}
	if s.WordWrap > 0 {
		return md.SetWordWrap(s.WordWrap)
	}
	return nil
}

func defaultApp() (*app, error) {
	return newApp(currentSettings(), commands.GlobalRegistry, afero.NewOsFs(), os.Stdout)
}

// report prints a result and converts a failure into errCommandFailed.
func (a *app) report(result pipeline.CommandResult) error {
	for _, out := range result.Outputs {
		a.printer.PrintOutput(out)
	}
	if result.Err != nil {
		a.printer.PrintError(result.Err)
		return errCommandFailed
	}
	return nil
}

// reportBatch prints every result of a batch.
func (a *app) reportBatch(batch pipeline.BatchResult) error {
	for _, result := range batch.Results {
		for _, out := range result.Outputs {
			a.printer.PrintOutput(out)
		}
		if result.Err != nil {
			a.printer.PrintError(result.Err)
		}
	}
	if !batch.AllSucceeded() {
		logger.Debug("Batch failed", "total", batch.Total, "succeeded", batch.Succeeded, "failed", batch.Failed)
		return errCommandFailed
	}
	return nil
}

func runArgs(_ *cobra.Command, args []string) error {
	a, err := defaultApp()
	if err != nil {
		return err
	}
	return a.report(a.pipeline.ProcessArgs(args, a.ctx))
}

func runInstruction(_ *cobra.Command, args []string) error {
	a, err := defaultApp()
	if err != nil {
		return err
	}
	return a.report(a.pipeline.ProcessCommand(args[0], a.ctx))
}

func runBatch(_ *cobra.Command, args []string) error {
	scriptPath := args[0]
	logger.Info("Starting batch mode", "version", version.GetVersion(), "script", scriptPath)

	a, err := defaultApp()
	if err != nil {
		return err
	}
	batch, err := a.pipeline.ExecuteScript(a.fs, scriptPath, a.ctx)
	if err != nil {
		return err
	}
	return a.reportBatch(batch)
}

func runShell(_ *cobra.Command, _ []string) error {
	logger.Info("Starting unilang shell", "version", version.GetVersion())

	a, err := defaultApp()
	if err != nil {
		return err
	}
	handler := shell.NewHandler(a.pipeline, a.registry, a.ctx, a.printer)
	sh := shell.NewShell(handler, fmt.Sprintf("unilang %s", version.GetFormattedVersion()))
	sh.Run()
	output.Info("Goodbye!")
	return nil
}

func runList(_ *cobra.Command, args []string) error {
	a, err := defaultApp()
	if err != nil {
		return err
	}
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	return a.list(prefix)
}

func runHelp(_ *cobra.Command, args []string) error {
	a, err := defaultApp()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return a.list("")
	}
	out, err := a.helpOutput(args[0])
	if err != nil {
		return err
	}
	a.printer.PrintOutput(out)
	return nil
}

func (a *app) list(prefix string) error {
	text, err := a.pipeline.Help().List(prefix)
	if err != nil {
		return err
	}
	a.printer.PrintOutput(unitypes.NewTextOutput(text))
	return nil
}

// helpOutput renders help for path, as markdown when the printer can style it.
func (a *app) helpOutput(path string) (unitypes.OutputData, error) {
	if a.printer.IsStylable() {
		if def, ok := a.registry.Lookup(path); ok {
			return unitypes.OutputData{
				Content: a.pipeline.Help().Markdown(def),
				Format:  unitypes.FormatMarkdown,
			}, nil
		}
	}
	text, err := a.pipeline.Help().CommandHelp(path)
	if err != nil {
		return unitypes.OutputData{}, err
	}
	return unitypes.NewTextOutput(text), nil
}
