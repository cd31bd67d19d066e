// Package core turns one uploaded file into a uniform, typed record set.
//
// This package holds the ingestion pipeline independent of any UI or
// transport layer. The HTTP server and the terminal viewer both drive it
// through [Loader].
//
// # Pipeline
//
//  1. Validation: extension (csv, txt, json, xml), size ceiling, non-empty
//  2. Decoding: BOM stripping, UTF-16 and Windows-1252 transcoding ([DecodeText])
//  3. Parsing: a registered [Parser] per [Format] yields [RawRecord]s
//  4. Mapping: [Mapper] canonicalizes labels through a [Dictionary] and
//     normalizes values with a [Normalizer]; empty records are dropped
//
// The result is a [RecordSet] in parse order. Every [Record] keeps its
// canonical keys in first-seen order and never holds an absent value.
//
// # Parser Registry
//
// Parsers are registered at init time with [RegisterParser]:
//
//	core.RegisterParser(core.FormatCSV, core.ParserFunc(func(s string) ([]core.RawRecord, error) {
//	    return parseDelimited(s, ',', core.FormatCSV)
//	}))
//
// # Field Names
//
// Labels are folded to lowercase ASCII ("Métrica A" -> "metrica a") and
// matched against the dictionary's canonical names and aliases. The
// built-in dictionary can be replaced by a YAML file via [LoadDictionary].
//
// # Error Handling
//
// Every stage fails fast with a [*LoadError] whose kind is one of
// [ErrUnsupportedFormat], [ErrEmptyInput], [ErrOversize], [ErrParse] or
// [ErrEmptyDataset]. [MapError] turns any error into a [UserMessage] with
// a support code.
package core
