package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Direction is the classified movement of a metric.
type Direction string

const (
	Up     Direction = "Up"
	Down   Direction = "Down"
	Stable Direction = "Stable"
)

// Trend is a classified direction and magnitude for one metric. For
// categorical metrics Up means a balanced distribution, not growth over time.
type Trend struct {
	MetricName       string    `json:"metric_name"`
	Direction        Direction `json:"direction"`
	ChangePercentage float64   `json:"change_percentage"`
	TimeFrame        string    `json:"time_frame"`
}

const (
	frameDataset  = "Dataset Period"
	frameAnalysis = "Analysis Period"
	frameCategory = "Category Analysis"
)

var (
	defaultTrend = Trend{MetricName: "Overall Data Trend", Direction: Stable, ChangePercentage: 10.0, TimeFrame: frameAnalysis}
	errorTrend   = Trend{MetricName: "Trend Analysis Error", Direction: Stable, ChangePercentage: 0.0, TimeFrame: "Error State"}
)

// ClassifyTrends assigns at most one trend per numeric column and per leading
// text column. With no trend it returns the default trend; on failure it
// returns the error trend alone.
func ClassifyTrends(sets []ProfiledDataset, th Thresholds, log *slog.Logger) []Trend {
	log = loggerOr(log).With("stage", "trends")
	var trends []Trend
	err := guard(ClassificationError, "", func() error {
		multi := len(sets) > 1
		for _, s := range sets {
			got, err := classifyDataset(s, th, multi, log)
			if err != nil {
				return err
			}
			trends = append(trends, got...)
		}
		return nil
	})
	if err != nil {
		log.Error("trend classification failed", "error", err)
		return []Trend{errorTrend}
	}
	if len(trends) == 0 {
		return []Trend{defaultTrend}
	}
	log.Debug("trends classified", "count", len(trends))
	return trends
}

func classifyDataset(s ProfiledDataset, th Thresholds, multi bool, log *slog.Logger) ([]Trend, error) {
	ds, prof := s.Dataset, s.Profile
	dateCol := ds.DateColumn()
	frame := frameAnalysis
	var order []int
	if dateCol != nil {
		frame = frameDataset
		order = dateOrder(dateCol)
	}

	var out []Trend
	for _, c := range ds.ColumnsOf(KindNumeric) {
		cp := prof.Column(c.Name)
		if cp == nil || cp.Error != "" || cp.Numeric == nil || cp.Numeric.Count < 2 {
			continue
		}
		st := cp.Numeric
		if st.Mean == 0 {
			log.Debug("zero mean, skipping column", "dataset", ds.Name, "column", c.Name)
			continue
		}
		name := metricName(ds.Name, c.Name, multi)

		dir, mag, ok := Direction(""), 0.0, false
		if dateCol != nil && st.Count > th.TimeSeriesMinValues {
			dir, mag, ok = timeSeriesTrend(c, order, th)
		}
		if !ok {
			dir, mag = distributionTrend(st, th)
		}
		mag = round2(math.Abs(mag))
		if !finite(mag) {
			return nil, &StageError{Kind: ClassificationError, Subject: name, Err: fmt.Errorf("magnitude %v: %w", mag, errNonFinite)}
		}
		out = append(out, Trend{MetricName: name, Direction: dir, ChangePercentage: mag, TimeFrame: frame})
	}

	for _, c := range ds.LeadingText(th.CategoricalColumns) {
		cp := prof.Column(c.Name)
		if cp == nil || cp.Error != "" || cp.Distinct() <= 1 || ds.Rows == 0 {
			continue
		}
		ratio := float64(cp.Frequencies[0].Count) / float64(ds.Rows) * 100
		var t Trend
		switch {
		case ratio > th.DominantHigh:
			t = Trend{Direction: Stable, ChangePercentage: round2(ratio)}
		case ratio < th.DominantLow:
			t = Trend{Direction: Down, ChangePercentage: round2(100 - ratio)}
		default:
			t = Trend{Direction: Up, ChangePercentage: round2(ratio)}
		}
		t.MetricName = metricName(ds.Name, c.Name, multi) + " Distribution"
		t.TimeFrame = frameCategory
		out = append(out, t)
	}
	return out, nil
}

// timeSeriesTrend compares the mean of the last quarter of values, in date
// order, with the first quarter. It reports ok=false when the quarters are
// empty or the first quarter averages to zero.
func timeSeriesTrend(c *Column, order []int, th Thresholds) (Direction, float64, bool) {
	vals := make([]float64, 0, len(order))
	for _, i := range order {
		if c.Valid[i] {
			vals = append(vals, c.Numbers[i])
		}
	}
	q := len(vals) / 4
	if q == 0 {
		return "", 0, false
	}
	first := mean(vals[:q])
	last := mean(vals[len(vals)-q:])
	if first == 0 {
		return "", 0, false
	}
	change := (last - first) / first * 100
	switch {
	case last > first*th.TimeSeriesUpRatio:
		return Up, change, true
	case last < first*th.TimeSeriesDownRatio:
		return Down, -change, true
	default:
		return Stable, change, true
	}
}

func distributionTrend(st *NumericStats, th Thresholds) (Direction, float64) {
	cv := st.Std / st.Mean * 100
	switch {
	case cv > th.HighCV:
		return Up, cv
	case cv < th.LowCV:
		return Stable, cv
	case st.Q75 > st.Median*th.UpperQuartileRatio:
		return Up, (st.Q75 - st.Median) / st.Median * 100
	case st.Q25 < st.Median*th.LowerQuartileRatio:
		return Down, (st.Median - st.Q25) / st.Median * 100
	default:
		return Stable, cv
	}
}

// dateOrder returns row indices sorted by date, rows without a date last.
func dateOrder(dateCol *Column) []int {
	order := make([]int, dateCol.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		va, vb := dateCol.Valid[ia], dateCol.Valid[ib]
		if va != vb {
			return va
		}
		if !va {
			return false
		}
		return dateCol.Times[ia].Before(dateCol.Times[ib])
	})
	return order
}

// metricName is the display name of a column, prefixed with its dataset when
// the run covers more than one dataset.
func metricName(dataset, column string, multi bool) string {
	if multi {
		return dataset + " - " + title(column)
	}
	return title(column)
}
