package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Markdown renders an outcome as a standalone report.
func (o *Outcome) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUMMARY]\n")
	b.WriteString(o.Result.Summary)
	b.WriteString("\n\n[KPIS]\n")
	b.WriteString("| Name | Value | Unit | Category |\n| --- | --- | --- | --- |\n")
	for _, k := range o.Result.KPIs {
		b.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s |\n", safeVal(k.Name), k.Value, safeVal(k.Unit), k.Category))
	}
	b.WriteString("\n[TRENDS]\n")
	for _, t := range o.Result.Trends {
		b.WriteString(fmt.Sprintf("- %s: %s %.2f%% (%s)\n", t.MetricName, t.Direction, t.ChangePercentage, t.TimeFrame))
	}
	b.WriteString("\n[ACTION ITEMS]\n")
	for i, it := range o.Result.ActionItems {
		b.WriteString(fmt.Sprintf("%d. [%s] %s (%s): %s\n", i+1, it.Priority, it.Title, it.Category, it.Description))
	}
	for _, s := range o.Profiles {
		writeSchema(&b, s.Profile)
	}
	if ta := o.Text; ta != nil {
		b.WriteString("\n[DOCUMENT TEXT]\n")
		b.WriteString(fmt.Sprintf("Words: %d\nNumeric values: %d\n", ta.WordCount, len(ta.Numbers)))
		if len(ta.Currency) > 0 {
			b.WriteString(fmt.Sprintf("Currency amounts: %s\n", strings.Join(ta.Currency, ", ")))
		}
		if len(ta.Percentages) > 0 {
			b.WriteString(fmt.Sprintf("Percentages: %s\n", strings.Join(ta.Percentages, ", ")))
		}
		b.WriteString(fmt.Sprintf("Financial content: %t\n", ta.Financial))
	}
	return b.String()
}

func writeSchema(b *strings.Builder, p *DatasetProfile) {
	b.WriteString(fmt.Sprintf("\n[SCHEMA: %s]\n", safeName(p.Name)))
	b.WriteString(fmt.Sprintf("Rows: %d, Columns: %d\n", p.Rows, p.Cols))
	for _, c := range p.Columns {
		total := c.Count + c.Nulls
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Nulls) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.Count, missPct))
		switch {
		case c.Error != "":
			b.WriteString(" ! " + c.Error)
		case c.Numeric != nil && c.Numeric.Count > 0:
			st := c.Numeric
			b.WriteString(fmt.Sprintf(" | min %.4g, q25 %.4g, median %.4g, q75 %.4g, max %.4g, mean %.4g, std %.4g",
				st.Min, st.Q25, st.Median, st.Q75, st.Max, st.Mean, st.Std))
			if st.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d", st.Outliers))
			}
		case len(c.Frequencies) > 0:
			b.WriteString(" | top: ")
			lim := min(len(c.Frequencies), 8)
			for i, kv := range c.Frequencies[:lim] {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if len(c.Frequencies) > lim {
				b.WriteString(fmt.Sprintf("; unique=%d", len(c.Frequencies)))
			}
		case c.Dates != nil:
			b.WriteString(fmt.Sprintf(" | %s to %s", c.Dates.Min.Format("2006-01-02"), c.Dates.Max.Format("2006-01-02")))
		}
		b.WriteString("\n")
	}
	if m := p.Correlations; m != nil && len(m.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(m.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		for _, pc := range pairs[:min(len(pairs), 10)] {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pc.A, pc.B, pc.R))
		}
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
