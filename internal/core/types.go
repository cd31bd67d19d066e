package core

import (
	"encoding/json"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Format identifies how an input file is tokenized.
type Format string

const (
	FormatUnknown Format = ""
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatJSON    Format = "json"
	FormatXML     Format = "xml"
)

// DetectFormat maps a file name to its Format by extension, case-insensitively.
// ".csv" is comma delimited and ".txt" is tab delimited.
func DetectFormat(name string) Format {
	switch Extension(name) {
	case "csv":
		return FormatCSV
	case "txt":
		return FormatTSV
	case "json":
		return FormatJSON
	case "xml":
		return FormatXML
	default:
		return FormatUnknown
	}
}

// Extension returns the lowercased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// RawKind tags the variant held by a RawValue.
type RawKind int

const (
	RawAbsent RawKind = iota
	RawText
	RawNumber
	RawOther
)

// RawValue is a field value as produced by a parser, before normalization.
// Other carries JSON-native booleans, objects and arrays.
type RawValue struct {
	Kind   RawKind
	Text   string
	Number float64
	Other  any
}

// TextRaw wraps a string.
func TextRaw(s string) RawValue { return RawValue{Kind: RawText, Text: s} }

// NumberRaw wraps a number.
func NumberRaw(f float64) RawValue { return RawValue{Kind: RawNumber, Number: f} }

// OtherRaw wraps any other JSON-native value.
func OtherRaw(v any) RawValue { return RawValue{Kind: RawOther, Other: v} }

// RawField is one labelled value of a RawRecord.
type RawField struct {
	Label string
	Value RawValue
}

// RawRecord is an ordered list of fields in source order.
type RawRecord []RawField

// Kind tags the variant held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "absent"
	}
}

// Value is a normalized field value. The zero Value is absent.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a text Value. An empty string yields an absent Value.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

// Absent returns the absent Value.
func Absent() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the number held by a numeric Value, or 0.
func (v Value) Float() float64 { return v.num }

// AsText returns the string held by a text Value, or "".
func (v Value) AsText() string { return v.text }

// String renders the value for display and filtering. Absent renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Interface returns the value as float64, string or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	default:
		return nil
	}
}

// MarshalJSON encodes numbers as JSON numbers and text as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// FormatNumber renders f the shortest way that round-trips, switching to
// exponent notation for very large and very small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Record is a normalized record: canonical keys in first-insertion order,
// each mapped to a present Value. Records are not modified after mapping.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores v under key. Absent values and empty keys are ignored.
// Overwriting an existing key keeps its first position.
func (r *Record) Set(key string, v Value) {
	if key == "" || v.IsAbsent() {
		return
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record's keys in order. Callers must not modify the slice.
func (r *Record) Keys() []string { return r.keys }

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON encodes the record as an object with keys in record order.
func (r *Record) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()
	for _, k := range r.keys {
		om.Set(k, r.values[k].Interface())
	}
	return json.Marshal(om)
}

// RecordSet is an ordered collection of records. Parse order unless sorted.
type RecordSet []*Record

// Columns returns the union of keys across the set in first-seen order.
func (rs RecordSet) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, rec := range rs {
		for _, k := range rec.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// Clone returns a new slice holding the same records.
func (rs RecordSet) Clone() RecordSet {
	if rs == nil {
		return nil
	}
	out := make(RecordSet, len(rs))
	copy(out, rs)
	return out
}
