package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	currencyPattern = regexp.MustCompile(`[\$€£¥₺]\s*\d+(?:,\d{3})*(?:\.\d{2})?`)
	percentPattern  = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	financePattern  = regexp.MustCompile(`(?i)revenue|profit|income`)
)

// TextAnalysis is the raw-text path used for document sources.
type TextAnalysis struct {
	WordCount   int       `json:"word_count"`
	Numbers     []float64 `json:"numeric_values"`
	Currency    []string  `json:"currency_values"`
	Percentages []string  `json:"percentages"`
	Financial   bool      `json:"has_financial_data"`
}

// AnalyzeText extracts word, number, currency and percentage signals from free text.
func AnalyzeText(text string) *TextAnalysis {
	ta := &TextAnalysis{WordCount: len(strings.Fields(text))}
	for _, m := range numberPattern.FindAllString(text, -1) {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			ta.Numbers = append(ta.Numbers, f)
		}
	}
	ta.Currency = currencyPattern.FindAllString(text, -1)
	ta.Percentages = percentPattern.FindAllString(text, -1)
	ta.Financial = len(ta.Currency) > 0 || financePattern.MatchString(text)
	return ta
}
