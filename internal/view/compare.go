package view

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/dataview/internal/core"
)

var (
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// generalDateLayouts are tried, in order, for text that is neither
// YYYY-MM-DD nor D/M/YYYY. Times without a zone are read as UTC.
var generalDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 02 2006",
}

// InferColumnType decides a column's type from its first present value in
// rs: a number makes it numeric, text that reads as a date makes it a date
// column, anything else leaves it untyped.
func InferColumnType(rs core.RecordSet, key string) ColumnType {
	for _, rec := range rs {
		v, ok := rec.Get(key)
		if !ok || v.IsAbsent() {
			continue
		}
		if v.IsNumber() {
			return NumberColumn
		}
		if _, ok := ParseDate(v.AsText()); ok {
			return DateColumn
		}
		return Untyped
	}
	return Untyped
}

// ParseDate parses s as a calendar date and returns it in UTC.
//
// YYYY-MM-DD and day-first D/M/YYYY roll over like a calendar computation:
// "2024-02-30" is 1 March 2024 and "31/4/2024" is 1 May 2024. Other text is
// tried against a list of common layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return civilDate(m[1], m[2], m[3]), true
	}
	if m := dmyDatePattern.FindStringSubmatch(s); m != nil {
		return civilDate(m[3], m[2], m[1]), true
	}

	for _, layout := range generalDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// civilDate builds a UTC midnight from matched digits, normalizing
// out-of-range days and months.
func civilDate(year, month, day string) time.Time {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// sortKey returns the sort key of v for a column of type typ, or false
// when v has none. Values without a key always sort last.
func sortKey(v core.Value, ok bool, typ ColumnType) (float64, bool) {
	if !ok || v.IsAbsent() {
		return 0, false
	}

	switch typ {
	case NumberColumn:
		if v.IsNumber() {
			return v.Float(), true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.AsText()), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true

	case DateColumn:
		t, ok := ParseDate(v.String())
		if !ok {
			return 0, false
		}
		return float64(t.UnixMilli()), true

	default:
		return 0, false
	}
}
