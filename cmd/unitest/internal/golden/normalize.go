package golden

import (
	"os"
	"os/user"
	"regexp"
	"strings"
)

// NormalizationPattern replaces machine-specific text with a <Name> placeholder.
type NormalizationPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// Normalizer handles normalization of test output
type Normalizer struct {
	patterns []NormalizationPattern
}

// NewNormalizer creates a normalizer with the built-in patterns.
// Run IDs and dates are deterministic in test mode and are kept as-is.
func NewNormalizer() *Normalizer {
	n := &Normalizer{}

	if current, err := user.Current(); err == nil && current.Username != "" {
		n.AddLiteral("username", current.Username)
	} else if name := os.Getenv("USER"); name != "" {
		n.AddLiteral("username", name)
	}
	if wd, err := os.Getwd(); err == nil && len(wd) > 1 {
		n.AddLiteral("workdir", wd)
	}

	n.patterns = append(n.patterns,
		NormalizationPattern{Name: "memory_address", Pattern: regexp.MustCompile(`0x[a-fA-F0-9]{8,16}`)},
		NormalizationPattern{Name: "duration", Pattern: regexp.MustCompile(`\b\d+(?:\.\d+)?(?:ns|µs|us|ms|s)\b`)},
	)
	return n
}

// AddLiteral masks every whole-word occurrence of text. Short or generic names are ignored.
func (n *Normalizer) AddLiteral(name, text string) {
	if len(text) < 2 || isCommonUsername(text) {
		return
	}
	n.patterns = append([]NormalizationPattern{{
		Name:    name,
		Pattern: regexp.MustCompile(`(^|\W)` + regexp.QuoteMeta(text) + `($|\W)`),
	}}, n.patterns...)
}

func isCommonUsername(username string) bool {
	switch strings.ToLower(username) {
	case "runner", "ci", "github", "build", "admin", "user", "test", "root", "nobody", "ubuntu", "app", "dev":
		return true
	}
	return false
}

// Normalize replaces dynamic content with placeholders.
func (n *Normalizer) Normalize(output string) string {
	normalized := output
	for _, p := range n.patterns {
		normalized = p.Pattern.ReplaceAllStringFunc(normalized, func(match string) string {
			sub := p.Pattern.FindStringSubmatch(match)
			if len(sub) == 3 && p.Pattern.NumSubexp() == 2 {
				return sub[1] + "<" + p.Name + ">" + sub[2]
			}
			return "<" + p.Name + ">"
		})
	}
	return normalized
}

// Equal compares two outputs after normalizing both.
func (n *Normalizer) Equal(expected, actual string) bool {
	return n.Normalize(expected) == n.Normalize(actual)
}
