package refine

import (
	_ "embed"
	"strings"
)

//go:embed prompts/default.txt
var promptTemplate string

// LoadPrompt returns the refine prompt with the corner-mark behavior
// substituted in. The prompt is loaded once per run and shared by all pages.
func LoadPrompt(removeCornerMarks bool) string {
	cornerText := "Preserve any corner marks or page indices if present."
	if removeCornerMarks {
		cornerText = "Remove any corner marks or page indices if present."
	}
	return strings.ReplaceAll(promptTemplate, "{{REMOVE_CORNER_MARKS}}", cornerText)
}
