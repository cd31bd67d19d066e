package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JonMunkholm/dataview/internal/config"
	"github.com/JonMunkholm/dataview/internal/logging"
)

// DefaultMaxFileSize is the largest accepted input (10 MiB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Loader validates, decodes, parses and maps one input file.
type Loader struct {
	maxSize int64
	mapper  *Mapper
}

// LoadResult is the outcome of a successful load.
type LoadResult struct {
	FileName string
	Format   Format
	Encoding Encoding
	Bytes    int64
	Records  RecordSet // parse order
	RawCount int       // records produced by the parser
	Dropped  int       // records empty after normalization
	Duration time.Duration
}

// NewLoader returns a Loader accepting files up to maxSize bytes
// (DefaultMaxFileSize when maxSize <= 0). A nil mapper uses the defaults.
func NewLoader(maxSize int64, mapper *Mapper) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if mapper == nil {
		mapper = NewMapper(nil, nil)
	}
	return &Loader{maxSize: maxSize, mapper: mapper}
}

// NewLoaderFromConfig builds a Loader from the upload and normalization
// settings, reading the field dictionary file when one is configured.
func NewLoaderFromConfig(cfg *config.Config) (*Loader, error) {
	dict := DefaultDictionary()
	if path := cfg.Normalize.DictionaryPath; path != "" {
		d, err := LoadDictionary(path)
		if err != nil {
			return nil, fmt.Errorf("field dictionary: %w", err)
		}
		dict = d
	}

	norm := NewNormalizer(NormalizeOptions{
		PreserveLeadingZeros: cfg.Normalize.PreserveLeadingZeros,
	})
	return NewLoader(cfg.Upload.MaxFileSize, NewMapper(dict, norm)), nil
}

// MaxSize returns the size ceiling in bytes.
func (l *Loader) MaxSize() int64 { return l.maxSize }

// Load reads a file named name from r.
//
// size is the declared size in bytes, or -1 when unknown; a declared size
// over the ceiling fails before anything is read. Stages run in order
// (format check, size check, read, decode, parse, map) and the first
// failure is returned as a *LoadError. No partial RecordSet is returned.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader, size int64) (*LoadResult, error) {
	start := time.Now()
	logger := logging.WithFields(ctx, "file", name)

	format := DetectFormat(name)
	if format == FormatUnknown {
		return nil, unsupportedFormat(name)
	}
	if size > l.maxSize {
		return nil, l.oversize(size)
	}

	data, err := io.ReadAll(io.LimitReader(r, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, l.oversize(-1)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Kind: ErrEmptyInput}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, enc, err := DecodeText(data)
	if err != nil {
		return nil, parseError(format, "undecodable text", err)
	}
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return nil, &LoadError{Kind: ErrEmptyInput}
	}

	raws, err := Parse(text, format)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs, err := l.mapper.MapRecords(raws)
	if err != nil {
		return nil, err
	}

	res := &LoadResult{
		FileName: name,
		Format:   format,
		Encoding: enc,
		Bytes:    int64(len(data)),
		Records:  rs,
		RawCount: len(raws),
		Dropped:  len(raws) - len(rs),
		Duration: time.Since(start),
	}

	logger.Debug("file loaded",
		"format", format,
		"encoding", enc,
		"bytes", res.Bytes,
		"records", len(rs),
		"dropped", res.Dropped,
		"duration", res.Duration,
	)

	return res, nil
}

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return l.Load(ctx, path, f, size)
}

func (l *Loader) oversize(size int64) error {
	detail := fmt.Sprintf("limit is %s", formatBytes(l.maxSize))
	if size >= 0 {
		detail = fmt.Sprintf("%s exceeds the %s", formatBytes(size), detail)
	}
	return &LoadError{Kind: ErrOversize, Detail: detail}
}

func formatBytes(n int64) string {
	const mib = 1024 * 1024
	if n >= mib {
		return fmt.Sprintf("%.1f MiB", float64(n)/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
