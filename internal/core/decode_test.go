package core

import "testing"

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantEnc Encoding
	}{
		{
			name:    "plain utf-8",
			input:   []byte("data,valor\n2024-01-01,3"),
			want:    "data,valor\n2024-01-01,3",
			wantEnc: EncodingUTF8,
		},
		{
			name:    "utf-8 bom stripped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b")...),
			want:    "a,b",
			wantEnc: EncodingUTF8BOM,
		},
		{
			name:    "utf-16 little endian",
			input:   []byte{0xFF, 0xFE, 'a', 0, ',', 0, 0xE9, 0},
			want:    "a,é",
			wantEnc: EncodingUTF16LE,
		},
		{
			name:    "utf-16 big endian",
			input:   []byte{0xFE, 0xFF, 0, 'o', 0, 'k'},
			want:    "ok",
			wantEnc: EncodingUTF16BE,
		},
		{
			name:    "latin-1 fallback",
			input:   []byte("M\xe9trica A"),
			want:    "Métrica A",
			wantEnc: EncodingWindows1252,
		},
		{
			name:    "windows-1252 euro sign",
			input:   []byte("pre\x80o"),
			want:    "pre€o",
			wantEnc: EncodingWindows1252,
		},
		{
			name:    "multibyte utf-8 untouched",
			input:   []byte("Métrica"),
			want:    "Métrica",
			wantEnc: EncodingUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DecodeText(tt.input)
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
			if enc != tt.wantEnc {
				t.Errorf("encoding = %q, want %q", enc, tt.wantEnc)
			}
		})
	}
}
