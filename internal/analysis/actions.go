package analysis

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Priority ranks an action item.
type Priority string

const (
	High   Priority = "High"
	Medium Priority = "Medium"
	Low    Priority = "Low"
)

// ActionItem is a prioritized recommendation.
type ActionItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Category    string   `json:"category"`
}

var (
	defaultActions = []ActionItem{
		{
			Title:       "Review Analysis Findings",
			Description: "Review the analysis results and integrate them into your business processes. Set up regular reporting.",
			Priority:    Medium,
			Category:    "General Assessment",
		},
		{
			Title:       "Improve Data Collection",
			Description: "Review your data collection methods to enable higher quality and more comprehensive analysis.",
			Priority:    Low,
			Category:    "Process Improvement",
		},
	}
	errorActions = []ActionItem{
		{
			Title:       "Review Analysis Results",
			Description: "The data analysis is complete. Review the results in detail and build your action plans.",
			Priority:    Medium,
			Category:    "General",
		},
		{
			Title:       "Check Data Quality",
			Description: "Check data quality regularly for more accurate analyses and clean the data where needed.",
			Priority:    Low,
			Category:    "Quality Control",
		},
	}
)

// actionRule appends zero or more items to the items generated so far.
type actionRule func(items []ActionItem) []ActionItem

// SynthesizeActions runs the action rules in order and truncates the result
// to th.MaxActions. Generation order decides what survives the cap.
func SynthesizeActions(kpis []KPI, trends []Trend, th Thresholds, log *slog.Logger) []ActionItem {
	log = loggerOr(log).With("stage", "actions")
	var items []ActionItem
	err := guard(SynthesisError, "", func() error {
		if err := checkSignals(kpis, trends); err != nil {
			return err
		}
		for _, rule := range actionRules(kpis, trends, th) {
			items = rule(items)
		}
		return nil
	})
	if err != nil {
		log.Error("action synthesis failed", "error", err)
		return append([]ActionItem(nil), errorActions...)
	}
	if len(items) > th.MaxActions {
		items = items[:th.MaxActions]
	}
	log.Debug("actions synthesized", "count", len(items))
	return items
}

func checkSignals(kpis []KPI, trends []Trend) error {
	for _, k := range kpis {
		if !finite(k.Value) {
			return &StageError{Kind: SynthesisError, Subject: k.Name, Err: fmt.Errorf("kpi value %v: %w", k.Value, errNonFinite)}
		}
	}
	for _, t := range trends {
		if !finite(t.ChangePercentage) || t.ChangePercentage < 0 {
			return &StageError{Kind: SynthesisError, Subject: t.MetricName, Err: fmt.Errorf("invalid change percentage %v", t.ChangePercentage)}
		}
	}
	return nil
}

func actionRules(kpis []KPI, trends []Trend, th Thresholds) []actionRule {
	p := message.NewPrinter(language.English)
	return []actionRule{
		// high-value KPIs
		func(items []ActionItem) []ActionItem {
			n := 0
			for _, k := range kpis {
				if n == th.HighValueItems {
					break
				}
				if k.Value <= th.HighKPIValue {
					continue
				}
				n++
				items = append(items, ActionItem{
					Title:       k.Name + " Performance Tracking",
					Description: p.Sprintf("%s is running high (%s). Monitor this critical metric regularly and evaluate optimization opportunities.", k.Name, withUnit(p.Sprintf("%.0f", k.Value), k.Unit)),
					Priority:    High,
					Category:    "Performance Monitoring",
				})
			}
			return items
		},
		// low-value KPIs, dataset-level ones excluded
		func(items []ActionItem) []ActionItem {
			n := 0
			for _, k := range kpis {
				if n == th.LowValueItems {
					break
				}
				if k.Value >= th.LowKPIValue || k.Category == CategoryGeneral || k.Category == CategoryQuality {
					continue
				}
				n++
				items = append(items, ActionItem{
					Title:       k.Name + " Improvement Plan",
					Description: p.Sprintf("%s is at a low level (%s). Build strategic plans to raise this metric.", k.Name, withUnit(p.Sprintf("%.2f", k.Value), k.Unit)),
					Priority:    Medium,
					Category:    "Improvement",
				})
			}
			return items
		},
		// data quality
		func(items []ActionItem) []ActionItem {
			for _, k := range kpis {
				if k.Category != CategoryQuality || k.Value >= th.QualityFloor {
					continue
				}
				items = append(items, ActionItem{
					Title:       "Data Quality Improvement",
					Description: p.Sprintf("Data completeness is %.1f%%. Fill in the missing values and review the data collection process.", k.Value),
					Priority:    High,
					Category:    "Data Quality",
				})
			}
			return items
		},
		// growth
		func(items []ActionItem) []ActionItem {
			n := 0
			for _, t := range trends {
				if n == th.TrendItems {
					break
				}
				if t.Direction != Up || t.ChangePercentage <= th.GrowthMagnitude {
					continue
				}
				n++
				item := ActionItem{Title: t.MetricName + " Growth Strategy", Priority: Medium, Category: "Growth Strategy"}
				if t.ChangePercentage > th.GrowthHigh {
					item.Priority = High
					item.Description = p.Sprintf("%s shows a %.1f%% increase. Analyze what drives this positive trend and apply similar strategies in other areas.", t.MetricName, t.ChangePercentage)
				} else {
					item.Description = p.Sprintf("%s is trending up by %.1f%%. Identify the factors that support this development.", t.MetricName, t.ChangePercentage)
				}
				items = append(items, item)
			}
			return items
		},
		// decline
		func(items []ActionItem) []ActionItem {
			n := 0
			for _, t := range trends {
				if n == th.TrendItems {
					break
				}
				if t.Direction != Down || t.ChangePercentage <= th.DeclineMagnitude {
					continue
				}
				n++
				item := ActionItem{Title: t.MetricName + " Decline Intervention", Priority: Medium, Category: "Risk Management"}
				if t.ChangePercentage > th.DeclineHigh {
					item.Priority = High
					item.Category = "Urgent Intervention"
					item.Description = p.Sprintf("%s shows a %.1f%% decrease. Identify the causes urgently and take corrective action.", t.MetricName, t.ChangePercentage)
				} else {
					item.Description = p.Sprintf("%s is trending down by %.1f%%. Evaluate preventive measures.", t.MetricName, t.ChangePercentage)
				}
				items = append(items, item)
			}
			return items
		},
		// stability, only while the list is short
		func(items []ActionItem) []ActionItem {
			if len(items) >= th.StableMaxItems {
				return items
			}
			for _, t := range trends {
				if t.Direction != Stable {
					continue
				}
				return append(items, ActionItem{
					Title:       "Maintain " + t.MetricName + " Stability",
					Description: t.MetricName + " is performing steadily. Identify the factors behind this stability and build sustainability plans around them.",
					Priority:    Low,
					Category:    "Sustainability",
				})
			}
			return items
		},
		// overall review
		func(items []ActionItem) []ActionItem {
			if len(kpis) <= th.ReviewMinKPIs {
				return items
			}
			cats := map[string]bool{}
			for _, k := range kpis {
				cats[k.Category] = true
			}
			return append(items, ActionItem{
				Title:       "Comprehensive Performance Review",
				Description: p.Sprintf("%d KPIs across %d categories were analyzed. Evaluate all metrics together to support strategic decisions.", len(kpis), len(cats)),
				Priority:    Medium,
				Category:    "Strategic Planning",
			})
		},
		// energy domain
		func(items []ActionItem) []ActionItem {
			for _, k := range kpis {
				if isEnergyKPI(k) {
					return append(items, ActionItem{
						Title:       "Energy Efficiency Analysis",
						Description: "Energy consumption data was detected. Evaluate energy efficiency projects and investigate savings potential.",
						Priority:    Medium,
						Category:    "Energy Management",
					})
				}
			}
			return items
		},
		// fallback
		func(items []ActionItem) []ActionItem {
			if len(items) > 0 {
				return items
			}
			return append(items, defaultActions...)
		},
	}
}

func isEnergyKPI(k KPI) bool {
	name := strings.ToLower(k.Name)
	return strings.Contains(strings.ToLower(k.Unit), "mwh") ||
		strings.Contains(name, "energy") || strings.Contains(name, "enerji")
}

func withUnit(v, unit string) string {
	if unit == "" {
		return v
	}
	return v + " " + unit
}
