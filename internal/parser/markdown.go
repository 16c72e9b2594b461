package parser

import (
	"bytes"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

type markdownParser struct{}

func (markdownParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".md", ".markdown")
}

// Parse keeps the markdown source as document text with normalized line
// endings and at most one blank line in a row.
func (markdownParser) Parse(content []byte) (analysis.Input, error) {
	text := string(bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")))
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return analysis.Input{FileType: "markdown", Document: &analysis.Document{Text: text}}, nil
}
