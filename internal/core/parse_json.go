package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// parseJSON reads a JSON array of objects or a single object.
//
// Key order within each object is preserved. Array elements that are not
// objects yield empty records, which the mapper later drops.
func parseJSON(content string) ([]RawRecord, error) {
	data := bytes.TrimSpace([]byte(content))
	if !json.Valid(data) {
		return nil, parseError(FormatJSON, "invalid JSON", jsonSyntaxError(data))
	}

	switch data[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, parseError(FormatJSON, "invalid JSON", err)
		}
		records := make([]RawRecord, 0, len(elems))
		for i, elem := range elems {
			rec, err := decodeObject(elem)
			if err != nil {
				return nil, parseError(FormatJSON, fmt.Sprintf("element %d", i), err)
			}
			records = append(records, rec)
		}
		return records, nil

	case '{':
		rec, err := decodeObject(data)
		if err != nil {
			return nil, parseError(FormatJSON, "invalid JSON", err)
		}
		return []RawRecord{rec}, nil

	default:
		return nil, parseError(FormatJSON, "top-level value must be an object or an array", nil)
	}
}

// jsonSyntaxError recovers the decoder's error for invalid input.
func jsonSyntaxError(data []byte) error {
	var v any
	return json.Unmarshal(data, &v)
}

// decodeObject converts one JSON object to a RawRecord in key order.
func decodeObject(raw []byte) (RawRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return RawRecord{}, nil
	}

	om := orderedmap.New[string, any]()
	if err := json.Unmarshal(raw, om); err != nil {
		return nil, err
	}

	rec := make(RawRecord, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		rec = append(rec, RawField{Label: pair.Key, Value: rawFromJSON(pair.Value)})
	}
	return rec, nil
}

func rawFromJSON(v any) RawValue {
	switch x := v.(type) {
	case nil:
		return RawValue{}
	case string:
		return TextRaw(x)
	case float64:
		return NumberRaw(x)
	default:
		return OtherRaw(x)
	}
}
