package core

import (
	"errors"
	"reflect"
	"testing"
)

// labels returns the field labels of rec in order.
func labels(rec RawRecord) []string {
	out := make([]string, len(rec))
	for i, f := range rec {
		out[i] = f.Label
	}
	return out
}

func rawText(t *testing.T, rec RawRecord, label string) (string, bool) {
	t.Helper()
	for _, f := range rec {
		if f.Label == label {
			return f.Value.Text, f.Value.Kind == RawText
		}
	}
	return "", false
}

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		format     Format
		wantRows   int
		wantLabels []string
	}{
		{
			name:       "simple comma",
			content:    "Data,Metrica A\n2024-01-01,10\n2024-01-02,20\n",
			format:     FormatCSV,
			wantRows:   2,
			wantLabels: []string{"Data", "Metrica A"},
		},
		{
			name:       "tab separated",
			content:    "a\tb\n1\t2\n",
			format:     FormatTSV,
			wantRows:   1,
			wantLabels: []string{"a", "b"},
		},
		{
			name:       "blank lines skipped",
			content:    "a,b\n\n1,2\n\n\n3,4",
			format:     FormatCSV,
			wantRows:   2,
			wantLabels: []string{"a", "b"},
		},
		{
			name:       "rows of blank cells kept",
			content:    "a,b\n,\n1,2\n , \n",
			format:     FormatCSV,
			wantRows:   3,
			wantLabels: []string{"a", "b"},
		},
		{
			name:       "quoted comma",
			content:    "name,note\n\"Silva, J\",\"ok\"\n",
			format:     FormatCSV,
			wantRows:   1,
			wantLabels: []string{"name", "note"},
		},
		{
			name:       "short row leaves fields absent",
			content:    "a,b,c\n1\n",
			format:     FormatCSV,
			wantRows:   1,
			wantLabels: []string{"a"},
		},
		{
			name:       "long row ignores extras",
			content:    "a,b\n1,2,3,4\n",
			format:     FormatCSV,
			wantRows:   1,
			wantLabels: []string{"a", "b"},
		},
		{
			name:       "blank headers named",
			content:    "a,,\n1,2,3\n",
			format:     FormatCSV,
			wantRows:   1,
			wantLabels: []string{"a", "Unnamed_A", "Unnamed_B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Parse(tt.content, tt.format)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(recs) != tt.wantRows {
				t.Fatalf("got %d rows, want %d", len(recs), tt.wantRows)
			}
			if got := labels(recs[0]); !reflect.DeepEqual(got, tt.wantLabels) {
				t.Errorf("labels = %v, want %v", got, tt.wantLabels)
			}
		})
	}
}

func TestParseDelimited_Values(t *testing.T) {
	recs, err := Parse("name,note\n\"Silva, J\",  spaced  \n", FormatCSV)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got, _ := rawText(t, recs[0], "name"); got != "Silva, J" {
		t.Errorf("name = %q, want %q", got, "Silva, J")
	}
	if got, _ := rawText(t, recs[0], "note"); got != "  spaced  " {
		t.Errorf("note = %q, parser must not trim", got)
	}
}

func TestParseDelimited_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"header only", "a,b,c\n"},
		{"header and blank lines", "a,b\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, FormatCSV)
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("array preserves key order", func(t *testing.T) {
		recs, err := Parse(`[{"z": 1, "a": "x", "m": null}, {"b": true}]`, FormatJSON)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("got %d records, want 2", len(recs))
		}
		if got := labels(recs[0]); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
			t.Errorf("labels = %v, want [z a m]", got)
		}
		if recs[0][0].Value.Kind != RawNumber || recs[0][0].Value.Number != 1 {
			t.Errorf("z = %+v, want number 1", recs[0][0].Value)
		}
		if recs[0][2].Value.Kind != RawAbsent {
			t.Errorf("null should be absent, got %+v", recs[0][2].Value)
		}
		if recs[1][0].Value.Kind != RawOther {
			t.Errorf("bool should be Other, got %+v", recs[1][0].Value)
		}
	})

	t.Run("single object", func(t *testing.T) {
		recs, err := Parse(`{"Data": "2024-01-01", "Metrica A": "1,5"}`, FormatJSON)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("got %d records, want 1", len(recs))
		}
	})

	t.Run("non-object elements become empty records", func(t *testing.T) {
		recs, err := Parse(`[1, "two", {"a": 1}, [3]]`, FormatJSON)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 4 {
			t.Fatalf("got %d records, want 4", len(recs))
		}
		if len(recs[0]) != 0 || len(recs[1]) != 0 || len(recs[3]) != 0 {
			t.Errorf("non-object elements should be empty: %v", recs)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		recs, err := Parse(`[]`, FormatJSON)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d records, want 0", len(recs))
		}
	})

	for _, bad := range []string{`[{"a": 1}`, `{"a": }`, `42`, `"text"`, `nope`} {
		t.Run("rejects "+bad, func(t *testing.T) {
			if _, err := Parse(bad, FormatJSON); !errors.Is(err, ErrParse) {
				t.Errorf("Parse(%q) error = %v, want ErrParse", bad, err)
			}
		})
	}
}

func TestParseXML(t *testing.T) {
	t.Run("row containers", func(t *testing.T) {
		doc := `<?xml version="1.0"?>
<dataset>
  <row><Data>2024-01-01</Data><Metrica_A> 10 </Metrica_A></row>
  <row><Data>2024-01-02</Data></row>
</dataset>`
		recs, err := Parse(doc, FormatXML)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("got %d records, want 2", len(recs))
		}
		if got, _ := rawText(t, recs[0], "Metrica_A"); got != "10" {
			t.Errorf("Metrica_A = %q, want trimmed %q", got, "10")
		}
	})

	t.Run("spaced tag names rewritten", func(t *testing.T) {
		doc := `<rows><record><Metrica A>5</Metrica A><Indicador  X>7</Indicador  X></record></rows>`
		recs, err := Parse(doc, FormatXML)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got := labels(recs[0]); !reflect.DeepEqual(got, []string{"Metrica_A", "Indicador_X"}) {
			t.Errorf("labels = %v", got)
		}
	})

	t.Run("priority row over item", func(t *testing.T) {
		doc := `<root><item><a>1</a></item><row><b>2</b></row></root>`
		recs, err := Parse(doc, FormatXML)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 1 || recs[0][0].Label != "b" {
			t.Errorf("expected the row container to win, got %v", recs)
		}
	})

	t.Run("data fallback", func(t *testing.T) {
		doc := `<root><data><a>1</a><b>x</b></data><data><a>2</a></data></root>`
		recs, err := Parse(doc, FormatXML)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(recs) != 2 {
			t.Errorf("got %d records, want 2", len(recs))
		}
	})

	t.Run("nested text content", func(t *testing.T) {
		doc := `<root><row><name><first>Ana</first> <last>Lima</last></name></row></root>`
		recs, err := Parse(doc, FormatXML)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got, _ := rawText(t, recs[0], "name"); got != "Ana Lima" {
			t.Errorf("name = %q, want %q", got, "Ana Lima")
		}
	})

	t.Run("declared legacy encoding", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="ISO-8859-1"?><root><row><a>é</a></row></root>`
		if _, err := Parse(doc, FormatXML); err != nil {
			t.Errorf("Parse() error = %v", err)
		}
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"unclosed", `<root><row><a>1</a></row>`},
		{"mismatched", `<root><row></item></root>`},
		{"no root", `   `},
		{"two roots", `<a/><b/>`},
		{"no containers", `<root><entry><a>1</a></entry></root>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.doc, FormatXML); !errors.Is(err, ErrParse) {
				t.Errorf("Parse() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestParserRegistry(t *testing.T) {
	want := []Format{FormatCSV, FormatJSON, FormatTSV, FormatXML}
	if got := Formats(); !reflect.DeepEqual(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}

	if _, ok := ParserFor(FormatUnknown); ok {
		t.Error("ParserFor(unknown) should not find a parser")
	}

	if _, err := Parse("a,b", Format("xlsx")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Parse with unregistered format error = %v, want ErrUnsupportedFormat", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("registering a duplicate parser should panic")
		}
	}()
	RegisterParser(FormatCSV, ParserFunc(func(string) ([]RawRecord, error) { return nil, nil }))
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"dados.csv":         FormatCSV,
		"DADOS.CSV":         FormatCSV,
		"export.txt":        FormatTSV,
		"records.json":      FormatJSON,
		"feed.XML":          FormatXML,
		"sheet.xlsx":        FormatUnknown,
		"noextension":       FormatUnknown,
		"archive.csv.gz":    FormatUnknown,
		"/tmp/dir.json/a.x": FormatUnknown,
	}

	for name, want := range tests {
		if got := DetectFormat(name); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNormalizeHeaders(t *testing.T) {
	in := make([]string, 28)
	in[0] = "id"
	got := NormalizeHeaders(in)

	if got[0] != "id" {
		t.Errorf("got[0] = %q, want id", got[0])
	}
	if got[1] != "Unnamed_A" || got[26] != "Unnamed_Z" || got[27] != "Unnamed_AA" {
		t.Errorf("unexpected names: %q %q %q", got[1], got[26], got[27])
	}
}
