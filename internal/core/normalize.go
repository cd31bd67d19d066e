package core

// normalize.go converts raw parser values into typed Values.
//
// Numbers are read the way Brazilian and European spreadsheets write them:
// "." groups thousands and "," marks decimals, so "1.234,56" is 1234.56.
// The cost is that "3.14" reads as 314 and identifiers such as "00123"
// become 123. NormalizeOptions.PreserveLeadingZeros opts out of the latter.

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates a number after separator cleanup.
// Matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var leadingZeroDigits = regexp.MustCompile(`^0\d+$`)

// NormalizeOptions tunes value normalization.
type NormalizeOptions struct {
	// PreserveLeadingZeros keeps digit-only strings with a leading zero
	// (e.g. "00123") as text.
	PreserveLeadingZeros bool
}

// Normalizer converts RawValues to Values.
type Normalizer struct {
	opts NormalizeOptions
}

// NewNormalizer returns a Normalizer using opts.
func NewNormalizer(opts NormalizeOptions) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize converts raw using the default options.
func Normalize(raw RawValue) Value {
	return (&Normalizer{}).Normalize(raw)
}

// Normalize converts one raw value:
//
//   - numbers pass through
//   - text that reads as a number after separator cleanup becomes a number
//   - blank text and absent values become absent
//   - other text is kept trimmed
//   - booleans, objects and arrays become compact JSON text
func (n *Normalizer) Normalize(raw RawValue) Value {
	switch raw.Kind {
	case RawNumber:
		return Number(raw.Number)

	case RawText:
		s := strings.TrimSpace(raw.Text)
		if s == "" {
			return Absent()
		}
		if n.opts.PreserveLeadingZeros && leadingZeroDigits.MatchString(s) {
			return Text(s)
		}
		if f, ok := ParseLocaleNumber(s); ok {
			return Number(f)
		}
		return Text(s)

	case RawOther:
		return Text(stringifyOther(raw.Other))

	default:
		return Absent()
	}
}

// ParseLocaleNumber strips "." thousands separators, turns the first ","
// into the decimal point and parses the result. Out-of-range values are
// rejected.
func ParseLocaleNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && f == 0 {
			// underflow to zero is still a number
			return 0, true
		}
		return 0, false
	}
	return f, true
}

func stringifyOther(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
