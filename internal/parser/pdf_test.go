package parser

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func TestRowCellsSplitsOnGaps(t *testing.T) {
	runs := []pdf.Text{
		{X: 60, W: 5, FontSize: 10, S: "0"},
		{X: 10, W: 5, FontSize: 10, S: "a"},
		{X: 15, W: 5, FontSize: 10, S: "b"},
		{X: 55, W: 5, FontSize: 10, S: "1"},
	}
	assert.Equal(t, []string{"ab", "10"}, rowCells(runs))
	assert.Nil(t, rowCells(nil))
}

func TestDetectTables(t *testing.T) {
	lines := [][]string{
		{"Quarterly report"},
		{"item", "amount"},
		{"a", "10"},
		{"b", "20"},
		{"x", "y", "z"},
		{"lonely", "row"},
		{"footer"},
	}
	got := detectTables(3, lines)
	if len(got) != 1 {
		t.Fatalf("tables = %d, want 1: %+v", len(got), got)
	}
	assert.Equal(t, 3, got[0].Page)
	assert.Equal(t, [][]string{{"item", "amount"}, {"a", "10"}, {"b", "20"}}, got[0].Rows)
}

func TestPDFParserRejectsGarbage(t *testing.T) {
	_, err := pdfParser{}.Parse([]byte("definitely not a pdf"))
	assert.Error(t, err)
}
