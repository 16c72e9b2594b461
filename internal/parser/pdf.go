package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/ledongthuc/pdf"
)

type pdfParser struct{}

func (pdfParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".pdf")
}

// Parse extracts the plain text of every page plus the tables detected on it.
func (pdfParser) Parse(content []byte) (analysis.Input, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return analysis.Input{}, fmt.Errorf("open pdf: %w", err)
	}
	doc := &analysis.Document{}
	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err != nil {
			return analysis.Input{}, fmt.Errorf("page %d text: %w", i, err)
		}
		text.WriteString(s)

		rows, err := p.GetTextByRow()
		if err != nil {
			return analysis.Input{}, fmt.Errorf("page %d rows: %w", i, err)
		}
		lines := make([][]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, rowCells(row.Content))
		}
		doc.Tables = append(doc.Tables, detectTables(i, lines)...)
	}
	doc.Text = text.String()
	return analysis.Input{FileType: "pdf", Document: doc}, nil
}

// rowCells merges the text runs of one line into cells. A horizontal gap
// wider than the font size starts a new cell.
func rowCells(runs []pdf.Text) []string {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cur strings.Builder
	end := sorted[0].X
	for i, t := range sorted {
		gap := max(t.FontSize, 1)
		if i > 0 && t.X-end > gap {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
		cur.WriteString(t.S)
		end = max(end, t.X+t.W)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// detectTables groups consecutive lines with the same number of cells (at
// least two) into tables of at least two rows.
func detectTables(page int, lines [][]string) []analysis.TableExtract {
	var out []analysis.TableExtract
	var run [][]string
	flush := func() {
		if len(run) >= 2 {
			out = append(out, analysis.TableExtract{Page: page, Rows: run})
		}
		run = nil
	}
	for _, l := range lines {
		if len(l) < 2 {
			flush()
			continue
		}
		if len(run) > 0 && len(run[0]) != len(l) {
			flush()
		}
		run = append(run, l)
	}
	flush()
	return out
}
