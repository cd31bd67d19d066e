package core

// decode.go turns raw file bytes into UTF-8 text before parsing.
//
// Spreadsheet exports arrive in a handful of encodings:
//
//   - UTF-8 with a BOM (Excel "CSV UTF-8"): the BOM is stripped
//   - UTF-16 LE/BE with a BOM ("Unicode text" exports): transcoded
//   - plain UTF-8: passed through
//   - anything else: treated as Windows-1252, a superset of Latin-1

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the source encoding detected by DecodeText.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF8BOM     Encoding = "utf-8-bom"
	EncodingUTF16LE     Encoding = "utf-16le"
	EncodingUTF16BE     Encoding = "utf-16be"
	EncodingWindows1252 Encoding = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText converts data to a UTF-8 string and reports the encoding it
// was read as.
func DecodeText(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), EncodingUTF8BOM, nil

	case bytes.HasPrefix(data, bomUTF16LE):
		return transcode(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data, EncodingUTF16LE)

	case bytes.HasPrefix(data, bomUTF16BE):
		return transcode(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data, EncodingUTF16BE)

	case utf8.Valid(data):
		return string(data), EncodingUTF8, nil

	default:
		return transcode(charmap.Windows1252, data, EncodingWindows1252)
	}
}

func transcode(enc encoding.Encoding, data []byte, name Encoding) (string, Encoding, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", name, fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}
