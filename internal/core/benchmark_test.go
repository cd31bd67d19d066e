package core

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Normalization Benchmarks
// ============================================================================

// BenchmarkNormalize runs every value of every loaded record through here.
func BenchmarkNormalize(b *testing.B) {
	testCases := []RawValue{
		TextRaw("123"),
		TextRaw("1.234,56"),
		TextRaw("R$ 1.234,56"),
		TextRaw("  999,99  "),
		TextRaw("Nordeste"),
		TextRaw(""),
		NumberRaw(42),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			Normalize(tc)
		}
	}
}

// BenchmarkCanonicalize runs once per distinct label per record.
func BenchmarkCanonicalize(b *testing.B) {
	labels := []string{"Data", "Métrica A", "Região", "  Valor Total (R$) ", "cod_cliente"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, l := range labels {
			Canonicalize(l)
		}
	}
}

// ============================================================================
// Load Pipeline Benchmarks
// ============================================================================

func generateCSV(rows int) string {
	var b strings.Builder
	b.WriteString("Data,Métrica A,Região,Descrição\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%02d/01/2024,\"%d,%02d\",Sul,item %d\n", i%28+1, i*10, i%100, i)
	}
	return b.String()
}

func generateJSON(rows int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"Data":"2024-01-%02d","Métrica A":%d,"Região":"Sul"}`, i%28+1, i)
	}
	b.WriteString("]")
	return b.String()
}

// BenchmarkLoad_CSV benchmarks the full pipeline on a 10k-row CSV.
func BenchmarkLoad_CSV(b *testing.B) {
	content := generateCSV(10000)
	loader := NewLoader(0, nil)
	ctx := context.Background()

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := loader.Load(ctx, "bench.csv", strings.NewReader(content), int64(len(content))); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLoad_JSON benchmarks the full pipeline on a 10k-object JSON array.
func BenchmarkLoad_JSON(b *testing.B) {
	content := generateJSON(10000)
	loader := NewLoader(0, nil)
	ctx := context.Background()

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := loader.Load(ctx, "bench.json", strings.NewReader(content), int64(len(content))); err != nil {
			b.Fatal(err)
		}
	}
}
