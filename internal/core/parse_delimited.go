package core

import (
	"encoding/csv"
	"strings"
)

// parseDelimited reads header-keyed rows separated by comma.
//
// The first record is the header. Rows may be ragged: cells beyond the
// header are ignored and missing cells are left absent. Blank lines are
// skipped by the reader; a row of blank cells is kept and left for the
// mapper to drop.
func parseDelimited(content string, comma rune, format Format) ([]RawRecord, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, parseError(format, "unreadable rows", err)
	}
	if len(rows) == 0 {
		return nil, parseError(format, "missing header", nil)
	}

	headers := NormalizeHeaders(rows[0])

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(RawRecord, 0, len(headers))
		for i, h := range headers {
			if i >= len(row) {
				break
			}
			rec = append(rec, RawField{Label: h, Value: TextRaw(row[i])})
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, parseError(format, "no data rows", nil)
	}
	return records, nil
}

// NormalizeHeaders names blank header cells Unnamed_A, Unnamed_B, ... in
// order of appearance. Other headers are returned untouched.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	unnamed := 0
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			out[i] = "Unnamed_" + columnLetters(unnamed)
			unnamed++
			continue
		}
		out[i] = h
	}
	return out
}

// columnLetters converts 0, 1, ..., 25, 26 to A, B, ..., Z, AA.
func columnLetters(n int) string {
	var b []byte
	for n >= 0 {
		b = append([]byte{byte('A' + n%26)}, b...)
		n = n/26 - 1
	}
	return string(b)
}
