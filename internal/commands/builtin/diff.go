package builtin

import (
	"strings"

	"unilang/pkg/unitypes"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffCommand implements .text.diff, a character-level comparison of two strings.
// Deletions are shown as [-text-] and insertions as {+text+}.
type DiffCommand struct{}

// Definition describes .text.diff.
func (c *DiffCommand) Definition() unitypes.CommandDefinition {
	return unitypes.CommandDefinition{
		Name:        "diff",
		Namespace:   ".text",
		Description: "Shows the differences between two strings.",
		Hint:        "Compares two strings.",
		Status:      unitypes.StatusBeta,
		Version:     "0.2.0",
		Tags:        []string{"text"},
		Idempotent:  true,
		Examples:    []string{`.text.diff old::"hello world" new::"hello there"`},
		Arguments: []unitypes.ArgumentDefinition{
			{Name: "old", Kind: unitypes.String, Hint: "Original text."},
			{Name: "new", Kind: unitypes.String, Hint: "Changed text."},
			{
				Name:       "semantic",
				Kind:       unitypes.Boolean,
				Hint:       "Merge small edits into readable chunks.",
				Attributes: unitypes.ArgumentAttributes{Optional: true, Default: unitypes.StringPtr("true")},
			},
		},
	}
}

// Execute renders the diff.
func (c *DiffCommand) Execute(cmd unitypes.VerifiedCommand, _ unitypes.Context) (unitypes.OutputData, error) {
	oldText, err := cmd.String("old")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	newText, err := cmd.String("new")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	semantic, err := cmd.Boolean("semantic")
	if err != nil {
		return unitypes.OutputData{}, err
	}
	return unitypes.NewTextOutput(renderDiff(oldText, newText, semantic)), nil
}

func renderDiff(oldText, newText string, semantic bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	if semantic {
		diffs = dmp.DiffCleanupSemantic(diffs)
	}

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
