package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

// Parser turns raw file content into pipeline input.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) (analysis.Input, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// ParseFile selects a parser based on the file extension and returns the
// parsed input.
func ParseFile(path string) (analysis.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("read file: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse parses in-memory content, choosing the parser by name.
func Parse(name string, content []byte) (analysis.Input, error) {
	for _, p := range registry {
		if p.CanParse(name) {
			in, err := p.Parse(content)
			if err != nil {
				return analysis.Input{}, fmt.Errorf("parse %s: %w", name, err)
			}
			return in, nil
		}
	}
	return analysis.Input{}, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(name))
}

// Supported reports whether some registered parser accepts the name.
func Supported(name string) bool {
	for _, p := range registry {
		if p.CanParse(name) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
	Register(pdfParser{})
	Register(docxParser{})
	Register(markdownParser{})
	Register(txtParser{})
}

func hasSuffix(name string, exts ...string) bool {
	name = strings.ToLower(name)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// headerNames cleans a header row: blank cells become "Unnamed: i" and
// repeated names get a ".n" suffix.
func headerNames(cells []string) []string {
	out := make([]string, len(cells))
	seen := map[string]int{}
	for i, c := range cells {
		n := strings.TrimSpace(c)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		base := n
		for seen[n] > 0 {
			n = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[n]++
		out[i] = n
	}
	return out
}

// gridRecords builds a RecordSet from a header-first grid. cell converts one
// raw value; blank values stay absent.
func gridRecords(grid [][]string, cell func(col string, raw string) any) analysis.RecordSet {
	if len(grid) == 0 {
		return analysis.RecordSet{}
	}
	header := headerNames(grid[0])
	rs := analysis.RecordSet{Columns: header}
	for _, cells := range grid[1:] {
		row := make(analysis.Row, len(header))
		for i, name := range header {
			if i >= len(cells) || strings.TrimSpace(cells[i]) == "" {
				row[name] = nil
				continue
			}
			row[name] = cell(name, cells[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

func rawCell(_ string, raw string) any { return raw }
