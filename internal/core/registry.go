package core

import (
	"fmt"
	"sort"
	"sync"
)

// Parser tokenizes decoded text into raw records. Parsers never type values.
type Parser interface {
	Parse(content string) ([]RawRecord, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(content string) ([]RawRecord, error)

func (f ParserFunc) Parse(content string) ([]RawRecord, error) { return f(content) }

var (
	parsers   = make(map[Format]Parser)
	parsersMu sync.RWMutex
)

func init() {
	RegisterParser(FormatCSV, ParserFunc(func(s string) ([]RawRecord, error) {
		return parseDelimited(s, ',', FormatCSV)
	}))
	RegisterParser(FormatTSV, ParserFunc(func(s string) ([]RawRecord, error) {
		return parseDelimited(s, '\t', FormatTSV)
	}))
	RegisterParser(FormatJSON, ParserFunc(parseJSON))
	RegisterParser(FormatXML, ParserFunc(parseXML))
}

// RegisterParser adds a parser for format.
// Panics if a parser for the same format is already registered.
func RegisterParser(format Format, p Parser) {
	parsersMu.Lock()
	defer parsersMu.Unlock()

	if format == FormatUnknown {
		panic("parser registered for unknown format")
	}
	if _, exists := parsers[format]; exists {
		panic(fmt.Sprintf("parser already registered: %s", format))
	}
	parsers[format] = p
}

// ParserFor returns the parser registered for format.
func ParserFor(format Format) (Parser, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	p, ok := parsers[format]
	return p, ok
}

// Formats returns every registered format, sorted.
func Formats() []Format {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	out := make([]Format, 0, len(parsers))
	for f := range parsers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parse runs the parser registered for format over content.
func Parse(content string, format Format) ([]RawRecord, error) {
	p, ok := ParserFor(format)
	if !ok {
		return nil, &LoadError{Kind: ErrUnsupportedFormat, Detail: fmt.Sprintf("no parser for %q", format)}
	}
	return p.Parse(content)
}
