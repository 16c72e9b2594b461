package parser

import (
	"bytes"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

type txtParser struct{}

func (txtParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".txt")
}

func (txtParser) Parse(content []byte) (analysis.Input, error) {
	text := string(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")))
	return analysis.Input{FileType: "text", Document: &analysis.Document{Text: text}}, nil
}
