package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".xlsx", ".xlsm")
}

// Parse reads every sheet of a workbook as a header-first table. Cells are
// read raw; serial numbers in date-named columns are converted to times.
func (xlsxParser) Parse(content []byte) (analysis.Input, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return analysis.Input{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	in := analysis.Input{FileType: "excel"}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return analysis.Input{}, fmt.Errorf("read sheet %q: %w", name, err)
		}
		in.Sheets = append(in.Sheets, analysis.Sheet{Name: name, Records: gridRecords(rows, excelCell)})
	}
	if len(in.Sheets) == 0 {
		return analysis.Input{}, fmt.Errorf("workbook has no sheets")
	}
	return in, nil
}

func excelCell(col, raw string) any {
	if !analysis.IsDateName(col) {
		return raw
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t
}
