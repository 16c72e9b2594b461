package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AnswerSource tells which path produced an answer.
type AnswerSource string

const (
	SourceNarrator AnswerSource = "narrator"
	SourceFallback AnswerSource = "fallback"
)

// Answer is the reply to an ad-hoc question. NarratorErr carries the backend
// failure when the fallback was used after a narrator error.
type Answer struct {
	Text        string       `json:"text"`
	Source      AnswerSource `json:"source"`
	NarratorErr error        `json:"-"`
}

// Ask answers a question about an outcome. The narrator is used when it is
// available; otherwise, or when it fails, a deterministic answer is built
// from the outcome. Only an empty question or a cancelled context errors.
func (a *Analyzer) Ask(ctx context.Context, out *Outcome, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, errors.New("question is empty")
	}
	var narrErr error
	if a.narrator != nil && a.narrator.Available() {
		text, err := a.narrator.Narrate(ctx, NarrationRequest{Question: question, Digest: Digest(out)})
		if err == nil && strings.TrimSpace(text) != "" {
			return Answer{Text: text, Source: SourceNarrator}, nil
		}
		if err == nil {
			err = errors.New("narrator returned no content")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Answer{}, ctxErr
		}
		narrErr = err
		a.log.WarnContext(ctx, "narrator failed, answering from analysis", "error", err)
	}
	return Answer{Text: FallbackAnswer(out, question), Source: SourceFallback, NarratorErr: narrErr}, nil
}

type topic int

const (
	topicGeneral topic = iota
	topicFindings
	topicTrends
	topicActions
	topicExtremes
	topicKPIs
)

// Checked in order; the first topic with a matching keyword wins.
var topicKeywords = []struct {
	topic topic
	words []string
}{
	{topicFindings, []string{"finding", "result", "summary", "overview", "bulgu", "sonuç"}},
	{topicTrends, []string{"trend", "direction", "increase", "decrease", "growth", "decline", "change", "artış", "azalış", "değişim", "yön"}},
	{topicActions, []string{"action", "recommend", "should", "priority", "next step", "aksiyon", "eylem", "öncelik", "adım", "yapmalı"}},
	{topicExtremes, []string{"maximum", "minimum", "highest", "lowest", "max", "min", "peak", "maksimum", "en yüksek", "en düşük"}},
	{topicKPIs, []string{"kpi", "metric", "measure", "value", "metrik", "ölçüm", "değer"}},
}

func routeQuestion(q string) topic {
	q = strings.ToLower(q)
	tokens := strings.FieldsFunc(q, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	for _, tk := range topicKeywords {
		for _, w := range tk.words {
			if matchesKeyword(q, tokens, w) {
				return tk.topic
			}
		}
	}
	return topicGeneral
}

// matchesKeyword matches phrases as substrings, short words exactly (with a
// plural s) and longer words as token prefixes.
func matchesKeyword(q string, tokens []string, w string) bool {
	if strings.Contains(w, " ") {
		return strings.Contains(q, w)
	}
	for _, t := range tokens {
		if len([]rune(w)) <= 3 {
			if t == w || t == w+"s" {
				return true
			}
			continue
		}
		if strings.HasPrefix(t, w) {
			return true
		}
	}
	return false
}

// FallbackAnswer builds a keyword-routed answer from the outcome alone.
func FallbackAnswer(out *Outcome, question string) string {
	p := message.NewPrinter(language.English)
	f := collectFacts(out)
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteString("\n")
	}
	bullets := func(items []string, empty string) {
		if len(items) == 0 {
			line("%s", empty)
			return
		}
		for _, it := range items {
			line("• %s", it)
		}
	}

	switch routeQuestion(question) {
	case topicFindings:
		line("**Main Findings**")
		line("**File Type**: %s", strings.ToUpper(out.FileType))
		line("**Data Size**: %d rows", f.rows)
		line("**Numeric Columns**: %d", f.numericCols)
		line("**Key Statistics**:")
		bullets(f.mainStats, "No numeric columns to summarize.")
		line("**Data Quality**: %s", f.quality)
		if f.period != "" {
			line("**Time Period**: %s", f.period)
		}
		line("See the KPI, trend and action sections for details.")
	case topicTrends:
		line("**Trend Analysis**")
		var ts []string
		for _, t := range out.Result.Trends {
			ts = append(ts, p.Sprintf("%s: %s (%.1f%%, %s)", t.MetricName, t.Direction, t.ChangePercentage, t.TimeFrame))
		}
		bullets(ts, "No trends were identified.")
		line("**Suggestion**: Investigate the drivers behind these trends and build forward projections.")
	case topicActions:
		line("**Recommended Actions**")
		bullets(f.recommendations, "")
		for _, it := range out.Result.ActionItems {
			line("• [%s] %s", it.Priority, it.Title)
		}
		line("These recommendations are based on the current analysis.")
	case topicExtremes:
		line("**Extreme Values**")
		bullets(f.extremes, "No numeric columns to report extremes for.")
	case topicKPIs:
		line("**KPI Analysis**")
		bullets(f.kpiInfo, "No numeric KPIs could be computed.")
		line("These values are computed from the data in the uploaded file.")
	default:
		line("**Data Analysis Overview**")
		line("Results related to your question %q:", question)
		line("**File**: %s format", out.FileType)
		line("**Data Size**: %d rows", f.rows)
		line("**Analyses**: %d numeric columns analyzed", f.numericCols)
		if len(f.categorical) > 0 {
			bullets(f.categorical, "")
		}
		if len(f.insights) > 0 {
			line("%s", strings.Join(f.insights, " | "))
		}
		line("Ask a more specific question, for example:")
		line("• \"What are the main findings?\"")
		line("• \"Where are the highest values?\"")
		line("• \"Which trends exist?\"")
	}
	return strings.TrimRight(b.String(), "\n")
}

type facts struct {
	rows            int
	numericCols     int
	mainStats       []string
	kpiInfo         []string
	extremes        []string
	categorical     []string
	recommendations []string
	insights        []string
	quality         string
	period          string
}

func collectFacts(out *Outcome) facts {
	p := message.NewPrinter(language.English)
	f := facts{quality: "Excellent (minimal missing data)"}
	multi := len(out.Profiles) > 1
	var cells, nulls int
	var numeric []ColumnProfile
	var names []string
	hasDates, hasText := false, false
	for _, s := range out.Profiles {
		f.rows += s.Profile.Rows
		cells += s.Profile.Rows * s.Profile.Cols
		nulls += s.Profile.TotalNulls
		texts := 0
		for _, c := range s.Profile.Columns {
			switch {
			case c.Error != "":
			case c.Kind == KindNumeric && c.Numeric != nil && c.Numeric.Count > 0:
				numeric = append(numeric, c)
				names = append(names, metricName(s.Profile.Name, c.Name, multi))
			case c.Kind == KindDate && c.Dates != nil:
				hasDates = true
				if f.period == "" {
					f.period = c.Dates.Min.Format("2006-01-02") + " - " + c.Dates.Max.Format("2006-01-02")
				}
			case c.Kind == KindText:
				hasText = true
				if texts < 2 && c.Distinct() > 0 {
					texts++
					f.categorical = append(f.categorical, p.Sprintf("%s: %d distinct values, most common: %s",
						metricName(s.Profile.Name, c.Name, multi), c.Distinct(), c.Frequencies[0].Value))
				}
			}
		}
	}
	f.numericCols = len(numeric)

	for i, c := range numeric {
		st := c.Numeric
		if i < 3 {
			f.mainStats = append(f.mainStats, names[i]+": Avg. "+scaled(p, st.Mean))
			f.kpiInfo = append(f.kpiInfo, p.Sprintf("%s: Total %s, %d records", names[i], totalWithUnit(p, st.Sum, c.Name), st.Count))
		}
		if i < 2 {
			f.extremes = append(f.extremes, p.Sprintf("%s: Highest %.2f, Lowest %.2f", names[i], st.Max, st.Min))
		}
	}

	if nulls > 0 {
		f.recommendations = append(f.recommendations, p.Sprintf("**High Priority**: %d missing values detected, filling them in is recommended", nulls))
	}
	for i, c := range numeric {
		if i == 2 {
			break
		}
		st := c.Numeric
		if st.Count > 10 && float64(st.Outliers) > float64(st.Count)*0.05 {
			f.recommendations = append(f.recommendations, p.Sprintf("**Medium Priority**: %d outliers detected in %s", st.Outliers, names[i]))
			break
		}
	}
	if len(f.recommendations) == 0 {
		f.recommendations = append(f.recommendations, "**Data Quality Is Good**: no major data quality issue detected")
	}
	f.recommendations = append(f.recommendations, "**Suggestion**: Set up regular data analysis and reporting")

	if cells > 0 {
		ratio := float64(nulls) / float64(cells)
		switch {
		case ratio > 0.1:
			f.quality = p.Sprintf("Could be improved (%.1f%% missing data)", ratio*100)
		case ratio > 0.05:
			f.quality = p.Sprintf("Good (%.1f%% missing data)", ratio*100)
		}
	}

	if f.rows > 1000 {
		f.insights = append(f.insights, "Large dataset: statistical results are reliable")
	}
	if f.numericCols > 3 {
		f.insights = append(f.insights, "Many numeric columns: broad metric analysis is possible")
	}
	if hasDates {
		f.insights = append(f.insights, "Time series data: trend analysis is possible")
	}
	if hasText {
		f.insights = append(f.insights, "Categorical data: segmentation analysis is possible")
	}
	return f
}

func totalWithUnit(p *message.Printer, v float64, column string) string {
	s := p.Sprintf("%.0f", v)
	if strings.Contains(strings.ToLower(column), "mwh") {
		s += " MWh"
	}
	return s
}

// Digest renders an outcome as compact plain text for a narrative backend.
func Digest(out *Outcome) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString(out.Result.Summary)
	b.WriteString("\n\nKPIs:\n")
	for _, k := range out.Result.KPIs {
		b.WriteString(p.Sprintf("- %s: %.2f %s (%s)\n", k.Name, k.Value, k.Unit, k.Category))
	}
	b.WriteString("\nTrends:\n")
	for _, t := range out.Result.Trends {
		b.WriteString(p.Sprintf("- %s: %s %.2f%% (%s)\n", t.MetricName, t.Direction, t.ChangePercentage, t.TimeFrame))
	}
	b.WriteString("\nAction items:\n")
	for _, it := range out.Result.ActionItems {
		b.WriteString(p.Sprintf("- [%s] %s: %s\n", it.Priority, it.Title, it.Description))
	}
	return b.String()
}
