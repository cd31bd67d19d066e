package core

import (
	"encoding/json"
	"io"
)

// ExportFileName is the download name for exported datasets.
const ExportFileName = "dados_processados.json"

// ExportJSON serializes rs as a JSON array indented with two spaces.
// Each record's keys appear in record order. A nil set encodes as [].
func ExportJSON(rs RecordSet) ([]byte, error) {
	if rs == nil {
		rs = RecordSet{}
	}
	return json.MarshalIndent(rs, "", "  ")
}

// WriteJSON writes ExportJSON(rs) to w.
func WriteJSON(w io.Writer, rs RecordSet) error {
	data, err := ExportJSON(rs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
