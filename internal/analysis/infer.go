package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column names containing one of these are date candidates.
var dateKeywords = []string{"date", "time", "tarih", "zaman"}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "02.01.2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/06", "2006-01",
}

// IsDateName reports whether a column name marks a date candidate.
func IsDateName(name string) bool {
	n := strings.ToLower(name)
	for _, k := range dateKeywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// toNumber coerces one cell. Strings get a decimal comma replaced by a point
// before parsing; booleans and times never count as numbers.
func toNumber(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case bool, time.Time:
		return 0, false
	case string:
		f, err = cast.ToFloat64E(strings.ReplaceAll(strings.TrimSpace(x), ",", "."))
	default:
		f, err = cast.ToFloat64E(v)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		return parseTimeMaybe(strings.TrimSpace(x))
	}
	return time.Time{}, false
}

func toText(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		b, jerr := json.Marshal(v)
		if jerr != nil {
			return ""
		}
		return string(b)
	}
	return strings.TrimSpace(s)
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inferColumn resolves the kind of one column from its raw cells and folds the
// coerced values into a typed Column. Order of attempts: date (only for
// date-named columns), numeric, text. An all-null column is numeric with no
// values so it contributes nothing downstream.
func inferColumn(name string, raw []any) *Column {
	c := &Column{Name: name, Valid: make([]bool, len(raw))}
	nonNull := 0
	for _, v := range raw {
		if !isNull(v) {
			nonNull++
		}
	}
	if nonNull == 0 {
		c.Kind = KindNumeric
		c.Numbers = make([]float64, len(raw))
		return c
	}

	if IsDateName(name) {
		times := make([]time.Time, len(raw))
		hits := 0
		for i, v := range raw {
			if isNull(v) {
				continue
			}
			if t, ok := toTime(v); ok {
				times[i] = t
				c.Valid[i] = true
				hits++
			}
		}
		if hits > 0 {
			c.Kind = KindDate
			c.Times = times
			return c
		}
	}

	nums := make([]float64, len(raw))
	hits := 0
	for i, v := range raw {
		c.Valid[i] = false
		if isNull(v) {
			continue
		}
		if f, ok := toNumber(v); ok {
			nums[i] = f
			c.Valid[i] = true
			hits++
		}
	}
	if hits > 0 {
		c.Kind = KindNumeric
		c.Numbers = nums
		return c
	}

	c.Kind = KindText
	c.Texts = make([]string, len(raw))
	for i, v := range raw {
		if isNull(v) {
			continue
		}
		c.Texts[i] = toText(v)
		c.Valid[i] = true
	}
	return c
}

// title turns a column name into a display name: underscores become spaces
// and each word is title-cased.
func title(name string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}
