package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"unilang/internal/logger"
)

// DefaultWordWrap is the column at which rendered markdown wraps.
const DefaultWordWrap = 80

// MarkdownService renders markdown help for terminals using Glamour.
type MarkdownService struct {
	initialized bool
	renderer    *glamour.TermRenderer
	style       string
	wordWrap    int
}

// NewMarkdownService creates a new MarkdownService instance using auto style detection.
func NewMarkdownService() *MarkdownService {
	return &MarkdownService{
		style:    "auto",
		wordWrap: DefaultWordWrap,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize builds the renderer for the configured style and word wrap.
func (m *MarkdownService) Initialize() error {
	renderer, err := newRenderer(m.style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized successfully", "style", m.style, "wrap", m.wordWrap)
	return nil
}

func newRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	if style == "" || style == "auto" {
		return glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrap),
		)
	}
	return glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wordWrap),
	)
}

// Render renders markdown content to ANSI terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return rendered, nil
}

// SetStyle changes the style used by Render. Unknown styles are rejected.
func (m *MarkdownService) SetStyle(style string) error {
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}
	if !m.isKnownStyle(style) {
		return fmt.Errorf("unknown markdown style '%s', expected one of %s", style, strings.Join(m.GetAvailableStyles(), ", "))
	}

	renderer, err := newRenderer(style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create renderer with style %s: %w", style, err)
	}
	m.renderer = renderer
	m.style = style
	return nil
}

// SetWordWrap sets the word wrap width for markdown rendering.
func (m *MarkdownService) SetWordWrap(width int) error {
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}

	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	renderer, err := newRenderer(m.style, width)
	if err != nil {
		return fmt.Errorf("failed to create renderer with word wrap %d: %w", width, err)
	}

	m.renderer = renderer
	m.wordWrap = width
	logger.Debug("MarkdownService word wrap updated", "width", width)
	return nil
}

// StyleForFormat maps an output format name to a Glamour style.
func StyleForFormat(format string) string {
	switch strings.ToLower(format) {
	case "plain", "json":
		return "notty"
	case "dark":
		return "dark"
	case "light":
		return "light"
	default:
		return "auto"
	}
}

// GetAvailableStyles returns a list of available Glamour styles.
func (m *MarkdownService) GetAvailableStyles() []string {
	return []string{"auto", "dark", "light", "notty", "ascii"}
}

func (m *MarkdownService) isKnownStyle(style string) bool {
	for _, s := range m.GetAvailableStyles() {
		if s == style {
			return true
		}
	}
	return false
}

// GetGlobalMarkdownService returns the markdown service from the global registry.
func GetGlobalMarkdownService() (*MarkdownService, error) {
	return getTypedService[*MarkdownService]("markdown")
}

func init() {
	if err := GlobalRegistry.RegisterService(NewMarkdownService()); err != nil {
		panic(err)
	}
}
