package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
)

// PreprocessAssistantText normalizes completion output.
// Performs basic text cleanup for better readability.
func PreprocessAssistantText(text string) string {
	if text == "" {
		return text
	}

	// Replace curly quotes (helps readability)
	text = strings.NewReplacer(
		"“", "\"", // "
		"”", "\"", // "
		"‘", "'", // '
		"’", "'", // '
	).Replace(text)

	return text
}

// RenderHTML converts an answer to HTML for storage and display. This runs
// only when a turn is saved, not on the routing hot path.
func RenderHTML(answer string) string {
	cleaned := PreprocessAssistantText(answer)
	return string(markdown.ToHTML([]byte(cleaned), nil, nil))
}
