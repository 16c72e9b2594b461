package analysis

import (
	"fmt"
	"log/slog"
	"strings"
)

// KPI categories.
const (
	CategoryAverage   = "Average"
	CategoryTotal     = "Total"
	CategoryMaximum   = "Maximum"
	CategoryMinimum   = "Minimum"
	CategoryDiversity = "Diversity"
	CategoryGeneral   = "General"
	CategoryQuality   = "Quality"
	CategorySystem    = "System"
)

// KPI is a named aggregate with a unit and category. Value is finite and
// rounded to two decimals.
type KPI struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

var (
	defaultKPI = KPI{Name: "Analysis Completed", Value: 100.0, Unit: "%", Category: CategorySystem}
	errorKPI   = KPI{Name: "Analysis Error", Value: 0.0, Unit: "error", Category: CategorySystem}
)

// ExtractKPIs derives four aggregates per numeric column, a distinct-value
// count for the same leading text columns the categorical trends cover, and
// the record count and completeness over all datasets of the run.
func ExtractKPIs(sets []ProfiledDataset, th Thresholds, log *slog.Logger) []KPI {
	log = loggerOr(log).With("stage", "kpis")
	var kpis []KPI
	err := guard(ExtractionError, "", func() error {
		multi := len(sets) > 1
		var rows, cells, nulls int
		for _, s := range sets {
			kpis = append(kpis, datasetKPIs(s, multi, th.CategoricalColumns)...)
			rows += s.Dataset.Rows
			cells += s.Dataset.Cells()
			nulls += s.Profile.TotalNulls
		}
		if len(sets) > 0 {
			completeness := 100.0
			if cells > 0 {
				completeness = 100 - float64(nulls)/float64(cells)*100
			}
			kpis = append(kpis,
				KPI{Name: "Total Record Count", Value: float64(rows), Unit: "count", Category: CategoryGeneral},
				KPI{Name: "Data Completeness", Value: round2(completeness), Unit: "%", Category: CategoryQuality},
			)
		}
		for _, k := range kpis {
			if !finite(k.Value) {
				return &StageError{Kind: ExtractionError, Subject: k.Name, Err: fmt.Errorf("value %v: %w", k.Value, errNonFinite)}
			}
		}
		return nil
	})
	if err != nil {
		log.Error("kpi extraction failed", "error", err)
		return []KPI{errorKPI}
	}
	if len(kpis) == 0 {
		return []KPI{defaultKPI}
	}
	log.Debug("kpis extracted", "count", len(kpis))
	return kpis
}

func datasetKPIs(s ProfiledDataset, multi bool, categorical int) []KPI {
	var out []KPI
	for _, c := range s.Dataset.ColumnsOf(KindNumeric) {
		cp := s.Profile.Column(c.Name)
		if cp == nil || cp.Error != "" || cp.Numeric == nil || cp.Numeric.Count == 0 {
			continue
		}
		st := cp.Numeric
		name := metricName(s.Dataset.Name, c.Name, multi)
		unit := ""
		if strings.Contains(strings.ToLower(c.Name), "mwh") {
			unit = "MWh"
		}
		out = append(out,
			KPI{Name: name + " Average", Value: round2(st.Mean), Unit: unit, Category: CategoryAverage},
			KPI{Name: name + " Total", Value: round2(st.Sum), Unit: unit, Category: CategoryTotal},
			KPI{Name: name + " Maximum", Value: round2(st.Max), Unit: unit, Category: CategoryMaximum},
			KPI{Name: name + " Minimum", Value: round2(st.Min), Unit: unit, Category: CategoryMinimum},
		)
	}
	for _, c := range s.Dataset.LeadingText(categorical) {
		cp := s.Profile.Column(c.Name)
		if cp == nil || cp.Error != "" {
			continue
		}
		out = append(out, KPI{
			Name:     metricName(s.Dataset.Name, c.Name, multi) + " Distinct Values",
			Value:    float64(cp.Distinct()),
			Unit:     "count",
			Category: CategoryDiversity,
		})
	}
	return out
}
