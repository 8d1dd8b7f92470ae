package output

import (
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

// Global printer instance for convenience functions
var (
	globalPrinter *Printer
	globalMu      sync.RWMutex
)

func init() {
	globalPrinter = NewPrinter()
}

// SetGlobalPrinter sets the global printer instance.
func SetGlobalPrinter(printer *Printer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalPrinter = printer
}

// GetGlobalPrinter returns the current global printer instance.
func GetGlobalPrinter() *Printer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalPrinter
}

// Println outputs text with newline using the global printer.
func Println(text string) {
	GetGlobalPrinter().Println(text)
}

// Info outputs informational text using the global printer.
func Info(text string) {
	GetGlobalPrinter().Info(text)
}

// IsTerminal checks if the output is going to a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) == os.ModeCharDevice
}

// SupportsColor reports whether stdout can show colors, honoring NO_COLOR and TERM.
func SupportsColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.NewOutput(os.Stdout).ColorProfile() != termenv.Ascii
}

// ResolveMode turns ModeAuto into ModeStyled or ModePlain depending on the terminal.
func ResolveMode(mode Mode, terminal, color bool) Mode {
	if mode != ModeAuto {
		return mode
	}
	if terminal && color {
		return ModeStyled
	}
	return ModePlain
}

// NewPrinterForFormat builds a printer for a --format value writing to w.
// Test mode forces deterministic plain output unless JSON is requested.
func NewPrinterForFormat(format string, w io.Writer, testMode bool, extra ...Option) (*Printer, error) {
	mode, err := ParseMode(format)
	if err != nil {
		return nil, err
	}
	mode = ResolveMode(mode, IsTerminal(), SupportsColor())

	options := []Option{WithWriter(w), WithMode(mode)}
	switch mode {
	case ModeStyled:
		provider := NewLipglossStyleProvider(w)
		if !IsTerminal() {
			// Explicitly requested styling keeps its colors when piped.
			provider = NewLipglossStyleProviderWithProfile(w, termenv.ANSI256)
		}
		options = append(options, WithStyles(provider))
	case ModePlain:
		options = append(options, PlainText())
	}
	if testMode {
		options = append(options, TestMode())
	}
	options = append(options, extra...)
	return NewPrinter(options...), nil
}
