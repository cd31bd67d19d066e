package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		// canonical names and aliases
		{"data_registro", "data_registro"},
		{"Data", "data_registro"},
		{"  DATA MEDICAO ", "data_registro"},
		{"Data_Medição", "data_registro"},
		{"Registro", "data_registro"},
		{"Métrica A", "metrica_a"},
		{"metrica_a", "metrica_a"},
		{"A", "metrica_a"},
		{"valor_a", "metrica_a"},
		{"Valor A", "metrica_a"},
		{"Métrica B", "metrica_b"},
		{"b", "metrica_b"},
		{"Indicador X", "indicador_x"},
		{"x", "indicador_x"},
		{"IND_X", "indicador_x"},
		{"Indicador-Y", "indicadory"},
		{"ind_y", "indicador_y"},

		// fallback
		{"Total Geral", "total_geral"},
		{"Preço (R$)", "preco_r"},
		{"  Cidade   Natal ", "cidade_natal"},
		{"Unnamed_A", "unnamed_a"},
		{"São_Paulo", "sao_paulo"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Canonicalize(tt.label); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Data", "Métrica A", "valor_b", "Indicador Y", "Preço (R$)", "a _",
		"_leading", "Ünïcödé Fïeld", "  x  ", "Coluna 1", "ÇÃO", "tab\there",
	}

	for _, in := range inputs {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Errorf("Canonicalize(Canonicalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestCanonicalize_AliasEquivalence(t *testing.T) {
	for _, e := range DefaultDictionary().Entries() {
		for _, alias := range e.Aliases {
			if got := Canonicalize(alias); got != e.Canonical {
				t.Errorf("Canonicalize(%q) = %q, want %q", alias, got, e.Canonical)
			}
			if got := Canonicalize(strings.ToUpper(alias)); got != e.Canonical {
				t.Errorf("Canonicalize(%q) = %q, want %q", strings.ToUpper(alias), got, e.Canonical)
			}
		}
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := map[string]string{
		"  Métrica_A  ": "metrica a",
		"Ação":          "acao",
		"a__b":          "a b",
		"x\t\ny":        "xy",
		"R$ 100,00":     "r 10000",
	}
	for in, want := range tests {
		if got := SanitizeLabel(in); got != want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewDictionary(t *testing.T) {
	t.Run("first entry wins shared alias", func(t *testing.T) {
		d, err := NewDictionary([]FieldEntry{
			{Canonical: "valor", Aliases: []string{"v", "total"}},
			{Canonical: "total_geral", Aliases: []string{"total"}},
		})
		if err != nil {
			t.Fatalf("NewDictionary() error = %v", err)
		}
		if got := d.Canonicalize("Total"); got != "valor" {
			t.Errorf("Canonicalize(Total) = %q, want valor", got)
		}
		if got := d.Canonicalize("Total Geral"); got != "total_geral" {
			t.Errorf("Canonicalize(Total Geral) = %q, want total_geral", got)
		}
	})

	t.Run("canonical shadowed by earlier alias", func(t *testing.T) {
		_, err := NewDictionary([]FieldEntry{
			{Canonical: "valor", Aliases: []string{"total"}},
			{Canonical: "total"},
		})
		if err == nil {
			t.Error("NewDictionary() expected error for shadowed canonical name")
		}
	})

	t.Run("empty canonical", func(t *testing.T) {
		if _, err := NewDictionary([]FieldEntry{{Canonical: " "}}); err == nil {
			t.Error("NewDictionary() expected error for empty canonical name")
		}
	})
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "fields.yaml")
	yaml := `fields:
  - canonical: cliente
    aliases: [nome, "nome do cliente"]
  - canonical: valor_total
    aliases:
      - total
      - valor
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	if got := d.Canonicalize("Nome do Cliente"); got != "cliente" {
		t.Errorf("Canonicalize = %q, want cliente", got)
	}
	if got := d.Canonicalize("Valor"); got != "valor_total" {
		t.Errorf("Canonicalize = %q, want valor_total", got)
	}
	if got := d.Canonicalize("Data"); got != "data" {
		t.Errorf("custom dictionary should replace the default, got %q", got)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("fields: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDictionary(empty); err == nil {
		t.Error("LoadDictionary() expected error for empty dictionary")
	}

	if _, err := LoadDictionary(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadDictionary() expected error for missing file")
	}
}
