package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".csv", ".tsv")
}

// Parse reads a header-first delimited table. The delimiter is sniffed from
// the header line: tab, then semicolon, then comma.
func (csvParser) Parse(content []byte) (analysis.Input, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var grid [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return analysis.Input{}, fmt.Errorf("read csv: %w", err)
		}
		grid = append(grid, rec)
	}
	rs := gridRecords(grid, rawCell)
	return analysis.Input{FileType: "csv", Records: &rs}, nil
}

func sniffDelimiter(content []byte) rune {
	line := string(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	switch {
	case strings.Contains(line, "\t"):
		return '\t'
	case strings.Count(line, ";") > strings.Count(line, ","):
		return ';'
	default:
		return ','
	}
}
