package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Normalized is the canonical form of one input: the datasets to profile and,
// for documents, the raw-text analysis.
type Normalized struct {
	Kind     SourceKind
	Datasets []*Dataset
	Text     *TextAnalysis
}

// Normalize converts parsed input into datasets. It fails only with
// ErrMalformedInput; empty and all-null datasets are valid.
func Normalize(in Input, log *slog.Logger) (*Normalized, error) {
	log = loggerOr(log).With("stage", "normalize")
	shapes := 0
	if in.Records != nil {
		shapes++
	}
	if len(in.Sheets) > 0 {
		shapes++
	}
	if in.Document != nil {
		shapes++
	}
	switch {
	case shapes == 0:
		return nil, fmt.Errorf("%w: no records, sheets or document in input", ErrMalformedInput)
	case shapes > 1:
		return nil, fmt.Errorf("%w: input carries %d shapes, want exactly one", ErrMalformedInput, shapes)
	}

	out := &Normalized{}
	switch {
	case in.Records != nil:
		out.Kind = SourceTabularSingle
		out.Datasets = []*Dataset{buildDataset("main", *in.Records)}
	case len(in.Sheets) > 0:
		out.Kind = SourceTabularMulti
		seen := map[string]bool{}
		for i, sh := range in.Sheets {
			name := strings.TrimSpace(sh.Name)
			if name == "" {
				name = fmt.Sprintf("Sheet%d", i+1)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: duplicate sheet name %q", ErrMalformedInput, name)
			}
			seen[name] = true
			out.Datasets = append(out.Datasets, buildDataset(name, sh.Records))
		}
	default:
		out.Kind = SourceDocumentText
		out.Text = AnalyzeText(in.Document.Text)
		for i, tb := range in.Document.Tables {
			if len(tb.Rows) == 0 {
				continue
			}
			name := fmt.Sprintf("Page %d Table %d", tb.Page, i+1)
			out.Datasets = append(out.Datasets, buildDataset(name, tableRecords(tb)))
		}
	}
	for _, ds := range out.Datasets {
		log.Debug("dataset normalized", "dataset", ds.Name, "rows", ds.Rows, "cols", len(ds.Columns))
	}
	return out, nil
}

func buildDataset(name string, rs RecordSet) *Dataset {
	cols := columnOrder(rs)
	ds := &Dataset{Name: name, Rows: len(rs.Rows)}
	for _, col := range cols {
		raw := make([]any, len(rs.Rows))
		for i, r := range rs.Rows {
			raw[i] = r[col]
		}
		ds.Columns = append(ds.Columns, inferColumn(col, raw))
	}
	return ds
}

// columnOrder keeps the declared order and appends row-only keys sorted.
func columnOrder(rs RecordSet) []string {
	seen := make(map[string]bool, len(rs.Columns))
	cols := make([]string, 0, len(rs.Columns))
	for _, c := range rs.Columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	var extra []string
	for _, r := range rs.Rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// tableRecords turns a header-first table into a RecordSet. Blank or repeated
// header cells get positional names; short rows are padded with nulls.
func tableRecords(tb TableExtract) RecordSet {
	header := tb.Rows[0]
	names := make([]string, len(header))
	used := map[string]bool{}
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" || used[n] {
			n = fmt.Sprintf("column_%d", i+1)
		}
		used[n] = true
		names[i] = n
	}
	rs := RecordSet{Columns: names}
	for _, cells := range tb.Rows[1:] {
		row := make(Row, len(names))
		for i, n := range names {
			if i < len(cells) {
				row[n] = cells[i]
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}
