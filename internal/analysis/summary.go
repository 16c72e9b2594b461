package analysis

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summarize builds the deterministic narrative summary from already computed
// profiles, KPIs and trends.
func Summarize(out *Outcome) string {
	p := message.NewPrinter(language.English)
	var lines []string
	add := func(format string, args ...any) { lines = append(lines, p.Sprintf(format, args...)) }

	ft := strings.ToUpper(strings.TrimSpace(out.FileType))
	if ft == "" {
		ft = "UNKNOWN"
	}
	add("**%s File Analysis Completed**", ft)

	if len(out.Profiles) > 0 {
		rows, cols, numeric := 0, 0, 0
		for _, s := range out.Profiles {
			rows += s.Profile.Rows
			cols = max(cols, s.Profile.Cols)
			numeric += s.Profile.NumericColumns()
		}
		add("**Data Size**: %d rows, %d columns", rows, cols)
		add("**Numeric Columns**: %d detected", numeric)

		var metrics []string
		multi := len(out.Profiles) > 1
		for _, s := range out.Profiles {
			n := 0
			for _, c := range s.Profile.Columns {
				if n == 3 {
					break
				}
				if c.Error != "" || c.Numeric == nil || c.Numeric.Count == 0 {
					continue
				}
				n++
				metrics = append(metrics, "   • "+metricName(s.Profile.Name, c.Name, multi)+": Average "+scaled(p, c.Numeric.Mean))
			}
		}
		if len(metrics) > 0 {
			lines = append(lines, "**Key Metrics**:")
			lines = append(lines, metrics...)
		}

		missing, correlated := false, false
		for _, s := range out.Profiles {
			missing = missing || s.Profile.TotalNulls > 0
			correlated = correlated || s.Profile.Correlations != nil
		}
		if missing {
			add("**Missing data detected**: data quality improvement is needed")
		} else {
			add("**Data quality is good**: no missing values found")
		}
		if correlated {
			add("**Relationships between variables** were analyzed")
		}
	}

	if ta := out.Text; ta != nil {
		add("**Document Text**: %d words, %d numeric values, %d currency amounts, %d percentages",
			ta.WordCount, len(ta.Numbers), len(ta.Currency), len(ta.Percentages))
		if ta.Financial {
			add("**Financial content** detected")
		}
	}

	up, down, stable := tallyTrends(out.Result.Trends)
	add("**Trends**: %d up, %d down, %d stable", up, down, stable)
	cats := map[string]bool{}
	for _, k := range out.Result.KPIs {
		cats[k.Category] = true
	}
	add("**KPIs**: %d computed across %d categories", len(out.Result.KPIs), len(cats))

	lines = append(lines, "\n**Overall Assessment**: The analysis completed successfully. KPIs, trends and recommended actions are listed in their sections.")
	return strings.Join(lines, "\n")
}

// scaled shortens large values with K and M suffixes.
func scaled(p *message.Printer, v float64) string {
	switch {
	case v > 1_000_000:
		return p.Sprintf("%.1fM", v/1_000_000)
	case v > 1000:
		return p.Sprintf("%.1fK", v/1000)
	default:
		return p.Sprintf("%.2f", v)
	}
}

func tallyTrends(trends []Trend) (up, down, stable int) {
	for _, t := range trends {
		switch t.Direction {
		case Up:
			up++
		case Down:
			down++
		case Stable:
			stable++
		}
	}
	return up, down, stable
}
