package analysis

import (
	"math"
	"sort"
)

// NumericStats is the descriptive set for one numeric column.
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
	Sum    float64 `json:"sum"`
	// Outliers counts values outside the 1.5*IQR fences.
	Outliers int `json:"outliers"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// describe computes count, Welford mean and sample std, quartiles and sum.
func describe(vals []float64) NumericStats {
	st := NumericStats{Count: len(vals)}
	if len(vals) == 0 {
		return st
	}
	st.Min, st.Max = math.Inf(1), math.Inf(-1)
	var m2 float64
	for i, x := range vals {
		if x < st.Min {
			st.Min = x
		}
		if x > st.Max {
			st.Max = x
		}
		delta := x - st.Mean
		st.Mean += delta / float64(i+1)
		m2 += delta * (x - st.Mean)
		st.Sum += x
	}
	if len(vals) > 1 {
		st.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	st.Q25 = quantile(sorted, 0.25)
	st.Median = quantile(sorted, 0.5)
	st.Q75 = quantile(sorted, 0.75)
	iqr := st.Q75 - st.Q25
	lo, hi := st.Q25-1.5*iqr, st.Q75+1.5*iqr
	for _, x := range sorted {
		if x < lo || x > hi {
			st.Outliers++
		}
	}
	return st
}

// quantile interpolates linearly between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// Exact pairwise correlation accumulator over rows where both values exist.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	pa.sumX += x
	pa.sumY += y
	pa.sumXX += x * x
	pa.sumYY += y * y
	pa.sumXY += x * y
}

// r returns the Pearson coefficient, 0 when undefined.
func (pa *pairAcc) r() float64 {
	if pa.n < 2 {
		return 0
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	var r float64
	if denom != 0 {
		r = (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		r = 0
	}
	return r
}

func correlate(cols []*Column) *CorrMatrix {
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i := range cols {
		m.Columns[i] = cols[i].Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var pa pairAcc
			ca, cb := cols[a], cols[b]
			for i := range ca.Valid {
				if ca.Valid[i] && cb.Valid[i] {
					pa.add(ca.Numbers[i], cb.Numbers[i])
				}
			}
			r := pa.r()
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	return m
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// round2 rounds to two decimals, ties to even. Magnitudes beyond the float64
// integer range carry no fractional digits and are returned as is.
func round2(x float64) float64 {
	if !finite(x) || math.Abs(x) > 1e15 {
		return x
	}
	return math.RoundToEven(x*100) / 100
}
