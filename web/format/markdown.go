package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
)

// PreprocessText normalizes LLM output before rendering.
func PreprocessText(text string) string {
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

// RenderHTML converts markdown answer text to HTML.
func RenderHTML(text string) string {
	return string(markdown.ToHTML([]byte(PreprocessText(text)), nil, nil))
}
