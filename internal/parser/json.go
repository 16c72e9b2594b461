package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".json")
}

// Parse accepts three layouts: an array of objects, an object whose "data"
// member is such an array, or an object of named arrays (one sheet each).
// Any other object is read as a single record. Key order is preserved.
func (jsonParser) Parse(content []byte) (analysis.Input, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return analysis.Input{}, fmt.Errorf("decode json: trailing data after top-level value")
	}

	in := analysis.Input{FileType: "json"}
	switch top := v.(type) {
	case []any:
		rs, err := objectRecords(top)
		if err != nil {
			return analysis.Input{}, err
		}
		in.Records = &rs
	case *object:
		if data, ok := top.vals["data"].([]any); ok {
			rs, err := objectRecords(data)
			if err != nil {
				return analysis.Input{}, err
			}
			in.Records = &rs
			return in, nil
		}
		if sheets, ok := namedTables(top); ok {
			in.Sheets = sheets
			return in, nil
		}
		rs := analysis.RecordSet{Columns: top.keys, Rows: []analysis.Row{top.row()}}
		in.Records = &rs
	default:
		return analysis.Input{}, fmt.Errorf("%w: top-level json value must be an array or object", analysis.ErrMalformedInput)
	}
	return in, nil
}

// object is a JSON object with its key order.
type object struct {
	keys []string
	vals map[string]any
}

func (o *object) row() analysis.Row {
	r := make(analysis.Row, len(o.keys))
	for _, k := range o.keys {
		r[k] = plain(o.vals[k])
	}
	return r
}

// plain turns nested ordered objects back into maps for use as cell values.
func plain(v any) any {
	switch x := v.(type) {
	case *object:
		m := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			m[k] = plain(x.vals[k])
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		obj := &object{vals: map[string]any{}}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			if _, dup := obj.vals[key]; !dup {
				obj.keys = append(obj.keys, key)
			}
			obj.vals[key] = v
		}
		_, err := dec.Token()
		return obj, err
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		_, err := dec.Token()
		return arr, err
	}
	return nil, fmt.Errorf("unexpected delimiter %v", d)
}

// objectRecords converts an array of objects into a RecordSet whose column
// order follows first appearance.
func objectRecords(arr []any) (analysis.RecordSet, error) {
	var rs analysis.RecordSet
	seen := map[string]bool{}
	for i, e := range arr {
		obj, ok := e.(*object)
		if !ok {
			return analysis.RecordSet{}, fmt.Errorf("%w: element %d is not an object", analysis.ErrMalformedInput, i)
		}
		for _, k := range obj.keys {
			if !seen[k] {
				seen[k] = true
				rs.Columns = append(rs.Columns, k)
			}
		}
		rs.Rows = append(rs.Rows, obj.row())
	}
	return rs, nil
}

func namedTables(top *object) ([]analysis.Sheet, bool) {
	if len(top.keys) == 0 {
		return nil, false
	}
	var sheets []analysis.Sheet
	for _, k := range top.keys {
		arr, ok := top.vals[k].([]any)
		if !ok {
			return nil, false
		}
		rs, err := objectRecords(arr)
		if err != nil {
			return nil, false
		}
		sheets = append(sheets, analysis.Sheet{Name: k, Records: rs})
	}
	return sheets, true
}
