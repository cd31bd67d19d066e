package core

import (
	"errors"
	"fmt"
)

// Load failure kinds. A *LoadError matches its kind with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyInput        = errors.New("empty file")
	ErrOversize          = errors.New("file too large")
	ErrParse             = errors.New("parse error")
	ErrEmptyDataset      = errors.New("no valid records")
)

// LoadError describes why a file could not be turned into a RecordSet.
type LoadError struct {
	Kind   error  // one of the Err* sentinels above
	Format Format // format being parsed, when known
	Detail string // human-readable specifics, e.g. "no data rows"
	Err    error  // underlying cause, if any
}

func (e *LoadError) Error() string {
	msg := e.Kind.Error()
	if e.Format != FormatUnknown {
		msg = string(e.Format) + " " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Is(target error) bool {
	return target == e.Kind
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func unsupportedFormat(name string) error {
	ext := Extension(name)
	if ext == "" {
		ext = "(none)"
	}
	return &LoadError{Kind: ErrUnsupportedFormat, Detail: fmt.Sprintf("extension %s", ext)}
}

func parseError(format Format, detail string, err error) error {
	return &LoadError{Kind: ErrParse, Format: format, Detail: detail, Err: err}
}

// IsLoadError reports whether err is a classified load failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
