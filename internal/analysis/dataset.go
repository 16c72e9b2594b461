package analysis

import "time"

// ColumnKind is the semantic type resolved for a column during normalization.
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
	KindDate    ColumnKind = "date"
)

// SourceKind discriminates the shape a normalized input came from.
type SourceKind string

const (
	SourceTabularSingle SourceKind = "tabular-single"
	SourceTabularMulti  SourceKind = "tabular-multi"
	SourceDocumentText  SourceKind = "document-text"
)

// Column is one typed column of a Dataset. Only the slice matching Kind is
// populated; Valid marks the rows that hold a value.
type Column struct {
	Name    string
	Kind    ColumnKind
	Valid   []bool
	Numbers []float64
	Texts   []string
	Times   []time.Time
}

// Len returns the row count of the column, nulls included.
func (c *Column) Len() int { return len(c.Valid) }

// NonNull counts rows holding a value.
func (c *Column) NonNull() int {
	n := 0
	for _, ok := range c.Valid {
		if ok {
			n++
		}
	}
	return n
}

// NumericValues returns the non-null numbers in row order.
func (c *Column) NumericValues() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Numbers))
	for i, ok := range c.Valid {
		if ok {
			out = append(out, c.Numbers[i])
		}
	}
	return out
}

// Dataset is the canonical tabular unit handed to the profiler. All columns
// share the same length. A Dataset is not modified once normalization returns.
type Dataset struct {
	Name    string
	Rows    int
	Columns []*Column
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// DateColumn returns the first date column, or nil.
func (d *Dataset) DateColumn() *Column {
	for _, c := range d.Columns {
		if c.Kind == KindDate {
			return c
		}
	}
	return nil
}

// ColumnsOf returns the columns of the given kind in dataset order.
func (d *Dataset) ColumnsOf(kind ColumnKind) []*Column {
	var out []*Column
	for _, c := range d.Columns {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// LeadingText returns at most n text columns in dataset order.
func (d *Dataset) LeadingText(n int) []*Column {
	texts := d.ColumnsOf(KindText)
	if len(texts) > n {
		texts = texts[:n]
	}
	return texts
}

// Cells is rows times columns.
func (d *Dataset) Cells() int { return d.Rows * len(d.Columns) }

// Nulls counts absent values across all columns.
func (d *Dataset) Nulls() int {
	n := 0
	for _, c := range d.Columns {
		n += c.Len() - c.NonNull()
	}
	return n
}
