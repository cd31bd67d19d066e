package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldEntry declares a canonical field name and the labels that map to it.
type FieldEntry struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

// dictionaryFile is the YAML layout accepted by LoadDictionary:
//
//	fields:
//	  - canonical: data_registro
//	    aliases: [data, data_medicao, registro]
type dictionaryFile struct {
	Fields []FieldEntry `yaml:"fields"`
}

// defaultEntries is the built-in dictionary, in match priority order.
var defaultEntries = []FieldEntry{
	{Canonical: "data_registro", Aliases: []string{"data", "data_medicao", "registro"}},
	{Canonical: "metrica_a", Aliases: []string{"metrica a", "a", "valor_a"}},
	{Canonical: "metrica_b", Aliases: []string{"metrica b", "b", "valor_b"}},
	{Canonical: "indicador_x", Aliases: []string{"indicador x", "x", "ind_x"}},
	{Canonical: "indicador_y", Aliases: []string{"indicador y", "y", "ind_y"}},
}

var defaultDictionary = mustDictionary(defaultEntries)

// Dictionary resolves field labels to canonical names.
type Dictionary struct {
	entries []FieldEntry
	lookup  map[string]string // sanitized name or alias -> canonical
}

// NewDictionary builds a dictionary from entries in priority order.
//
// A sanitized form claimed by an earlier entry keeps that entry. It is an
// error for a canonical name to sanitize to a form already claimed by
// another entry, since canonicalizing it would not be idempotent.
func NewDictionary(entries []FieldEntry) (*Dictionary, error) {
	d := &Dictionary{
		entries: entries,
		lookup:  make(map[string]string),
	}

	for i, e := range entries {
		canonical := strings.TrimSpace(e.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("field dictionary entry %d: canonical name is empty", i+1)
		}

		key := SanitizeLabel(canonical)
		if owner, taken := d.lookup[key]; taken && owner != canonical {
			return nil, fmt.Errorf("field dictionary entry %q: name already maps to %q", canonical, owner)
		}
		d.claim(key, canonical)

		for _, alias := range e.Aliases {
			d.claim(SanitizeLabel(alias), canonical)
		}
	}

	return d, nil
}

func (d *Dictionary) claim(key, canonical string) {
	if _, taken := d.lookup[key]; !taken {
		d.lookup[key] = canonical
	}
}

func mustDictionary(entries []FieldEntry) *Dictionary {
	d, err := NewDictionary(entries)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultDictionary returns the built-in dictionary.
func DefaultDictionary() *Dictionary {
	return defaultDictionary
}

// LoadDictionary reads a YAML field dictionary from path.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field dictionary: %w", err)
	}

	var file dictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse field dictionary %s: %w", path, err)
	}
	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("field dictionary %s defines no fields", path)
	}

	return NewDictionary(file.Fields)
}

// Entries returns the dictionary entries in priority order.
func (d *Dictionary) Entries() []FieldEntry {
	return d.entries
}

// Canonicalize maps a label to its canonical field name.
//
// The label is sanitized (see SanitizeLabel) and looked up among each
// entry's canonical name and aliases, sanitized the same way. Unknown
// labels fall back to the sanitized label with spaces replaced by "_".
// The result may be empty for labels with no ASCII letters or digits.
func (d *Dictionary) Canonicalize(label string) string {
	s := SanitizeLabel(label)
	if canonical, ok := d.lookup[s]; ok {
		return canonical
	}
	return strings.ReplaceAll(s, " ", "_")
}
