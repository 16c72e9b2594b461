package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// ValueCount is one distinct text value and its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DateRange spans the values of a date column.
type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// ColumnProfile is a read-only view of one column. Error is set when the
// column could not be profiled; the other statistics are then empty.
type ColumnProfile struct {
	Name        string        `json:"name"`
	Kind        ColumnKind    `json:"kind"`
	Count       int           `json:"count"`
	Nulls       int           `json:"nulls"`
	Numeric     *NumericStats `json:"numeric,omitempty"`
	Frequencies []ValueCount  `json:"frequencies,omitempty"`
	Dates       *DateRange    `json:"dates,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Distinct is the number of distinct text values.
func (c *ColumnProfile) Distinct() int { return len(c.Frequencies) }

// DatasetProfile is the profiler's output for one dataset.
type DatasetProfile struct {
	Name         string          `json:"name"`
	Rows         int             `json:"rows"`
	Cols         int             `json:"cols"`
	TotalNulls   int             `json:"total_nulls"`
	Columns      []ColumnProfile `json:"columns"`
	Correlations *CorrMatrix     `json:"correlations,omitempty"`
}

// Column looks a column profile up by name.
func (p *DatasetProfile) Column(name string) *ColumnProfile {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return &p.Columns[i]
		}
	}
	return nil
}

// NumericColumns counts profiled numeric columns.
func (p *DatasetProfile) NumericColumns() int {
	n := 0
	for _, c := range p.Columns {
		if c.Kind == KindNumeric && c.Error == "" {
			n++
		}
	}
	return n
}

// ProfiledDataset pairs a dataset with its profile.
type ProfiledDataset struct {
	Dataset *Dataset        `json:"-"`
	Profile *DatasetProfile `json:"profile"`
}

// Profile computes per-column statistics and, with more than one numeric
// column, the pairwise correlation matrix. A failure in one column is recorded
// on that column and does not stop the others.
func Profile(ds *Dataset, log *slog.Logger) *DatasetProfile {
	log = loggerOr(log).With("stage", "profile", "dataset", ds.Name)
	p := &DatasetProfile{Name: ds.Name, Rows: ds.Rows, Cols: len(ds.Columns)}
	var numeric []*Column
	for _, c := range ds.Columns {
		cp := ColumnProfile{Name: c.Name, Kind: c.Kind, Count: c.NonNull()}
		cp.Nulls = c.Len() - cp.Count
		p.TotalNulls += cp.Nulls
		if err := guard(ColumnProfilingError, c.Name, func() error { return profileColumn(c, &cp) }); err != nil {
			log.Warn("column profiling failed", "column", c.Name, "error", err)
			cp.Numeric, cp.Frequencies, cp.Dates = nil, nil, nil
			cp.Error = err.Error()
		} else if c.Kind == KindNumeric {
			numeric = append(numeric, c)
		}
		p.Columns = append(p.Columns, cp)
	}
	if len(numeric) > 1 {
		p.Correlations = correlate(numeric)
	}
	log.Debug("dataset profiled", "columns", len(p.Columns), "nulls", p.TotalNulls)
	return p
}

func profileColumn(c *Column, cp *ColumnProfile) error {
	switch c.Kind {
	case KindNumeric:
		st := describe(c.NumericValues())
		if st.Count > 0 && (!finite(st.Mean) || !finite(st.Std)) {
			return fmt.Errorf("mean=%v std=%v: %w", st.Mean, st.Std, errNonFinite)
		}
		cp.Numeric = &st
	case KindText:
		cp.Frequencies = frequencies(c)
	case KindDate:
		var dr *DateRange
		for i, ok := range c.Valid {
			if !ok {
				continue
			}
			t := c.Times[i]
			if dr == nil {
				dr = &DateRange{Min: t, Max: t}
				continue
			}
			if t.Before(dr.Min) {
				dr.Min = t
			}
			if t.After(dr.Max) {
				dr.Max = t
			}
		}
		cp.Dates = dr
	default:
		return fmt.Errorf("unknown column kind %q", c.Kind)
	}
	return nil
}

// frequencies counts distinct values, most frequent first, ties in order of
// first appearance.
func frequencies(c *Column) []ValueCount {
	idx := map[string]int{}
	var out []ValueCount
	for i, ok := range c.Valid {
		if !ok {
			continue
		}
		v := c.Texts[i]
		if j, seen := idx[v]; seen {
			out[j].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
