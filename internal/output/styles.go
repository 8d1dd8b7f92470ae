package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// lipglossTextStyle adapts a lipgloss.Style to TextStyle.
type lipglossTextStyle struct {
	style lipgloss.Style
}

// Render implements TextStyle.Render.
func (l lipglossTextStyle) Render(text string) string {
	return l.style.Render(text)
}

// LipglossStyleProvider styles semantic output with lipgloss colors. The color
// profile comes from the writer unless one is given explicitly.
type LipglossStyleProvider struct {
	renderer *lipgloss.Renderer
	styles   map[SemanticType]lipgloss.Style
}

// NewLipglossStyleProvider creates a provider whose profile is detected from w.
func NewLipglossStyleProvider(w io.Writer) *LipglossStyleProvider {
	return newLipglossStyleProvider(lipgloss.NewRenderer(w))
}

// NewLipglossStyleProviderWithProfile creates a provider with a fixed color profile.
func NewLipglossStyleProviderWithProfile(w io.Writer, profile termenv.Profile) *LipglossStyleProvider {
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return newLipglossStyleProvider(renderer)
}

func newLipglossStyleProvider(renderer *lipgloss.Renderer) *LipglossStyleProvider {
	return &LipglossStyleProvider{
		renderer: renderer,
		styles: map[SemanticType]lipgloss.Style{
			SemanticInfo:     renderer.NewStyle().Foreground(lipgloss.Color("39")),
			SemanticSuccess:  renderer.NewStyle().Foreground(lipgloss.Color("42")),
			SemanticWarning:  renderer.NewStyle().Foreground(lipgloss.Color("214")),
			SemanticError:    renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			SemanticCommand:  renderer.NewStyle().Foreground(lipgloss.Color("45")).Bold(true),
			SemanticArgument: renderer.NewStyle().Foreground(lipgloss.Color("141")),
			SemanticVariable: renderer.NewStyle().Foreground(lipgloss.Color("178")),
			SemanticHint:     renderer.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
			SemanticBold:     renderer.NewStyle().Bold(true),
		},
	}
}

// GetStyle implements StyleProvider.GetStyle. Unknown semantics render unstyled.
func (l *LipglossStyleProvider) GetStyle(semantic string) TextStyle {
	if style, ok := l.styles[SemanticType(semantic)]; ok {
		return lipglossTextStyle{style: style}
	}
	return lipglossTextStyle{style: l.renderer.NewStyle()}
}

// IsAvailable implements StyleProvider.IsAvailable.
func (l *LipglossStyleProvider) IsAvailable() bool {
	return l.renderer != nil
}

// ColorProfile returns the color profile used for rendering.
func (l *LipglossStyleProvider) ColorProfile() termenv.Profile {
	return l.renderer.ColorProfile()
}
