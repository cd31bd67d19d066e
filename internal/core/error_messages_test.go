package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unsupported format",
			err:         unsupportedFormat("report.pdf"),
			wantCode:    "FILE001",
			wantMessage: "Unsupported file format",
		},
		{
			name:        "empty input",
			err:         &LoadError{Kind: ErrEmptyInput},
			wantCode:    "FILE002",
			wantMessage: "The file is empty",
		},
		{
			name:        "oversize",
			err:         &LoadError{Kind: ErrOversize, Detail: "11 MiB"},
			wantCode:    "FILE003",
			wantMessage: "The file is too large",
		},
		{
			name:        "request body too large text",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE003",
			wantMessage: "The file is too large",
		},
		{
			name:        "parse error wrapped",
			err:         fmt.Errorf("load: %w", parseError(FormatCSV, "no data rows", nil)),
			wantCode:    "PARSE001",
			wantMessage: "The file could not be read",
		},
		{
			name:        "empty dataset",
			err:         &LoadError{Kind: ErrEmptyDataset},
			wantCode:    "DATA001",
			wantMessage: "No valid data was found in the file",
		},
		{
			name:        "no dataset",
			err:         ErrNoDataset,
			wantCode:    "DATA002",
			wantMessage: "No data loaded",
		},
		{
			name:        "too many loads",
			err:         ErrTooManyLoads,
			wantCode:    "LOAD001",
			wantMessage: "The system is busy processing other files",
		},
		{
			name:        "context cancelled",
			err:         fmt.Errorf("read: %w", context.Canceled),
			wantCode:    "LOAD002",
			wantMessage: "The request was cancelled",
		},
		{
			name:        "deadline text only",
			err:         errors.New("upstream: Context Deadline Exceeded"),
			wantCode:    "LOAD003",
			wantMessage: "The request timed out",
		},
		{
			name:        "superseded load",
			err:         ErrLoadSuperseded,
			wantCode:    "LOAD004",
			wantMessage: "A newer file replaced this one",
		},
		{
			name:        "invalid page",
			err:         errors.New(`invalid page "abc"`),
			wantCode:    "VIEW001",
			wantMessage: "That page does not exist",
		},
		{
			name:        "invalid filter body",
			err:         errors.New("invalid filter body: unexpected EOF"),
			wantCode:    "VIEW002",
			wantMessage: "The filter could not be read",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&LoadError{Kind: ErrEmptyInput})
	want := "The file is empty. Choose a file that contains data (FILE002)"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestMapError_OversizeActionHasNoFixedLimit(t *testing.T) {
	// The limit is configurable, so the advice must not name a size.
	for _, err := range []error{
		&LoadError{Kind: ErrOversize, Detail: "2048 bytes exceeds 1024"},
		errors.New("http: request body too large"),
	} {
		got := MapError(err)
		if got.Code != "FILE003" {
			t.Fatalf("MapError(%v).Code = %q, want FILE003", err, got.Code)
		}
		if strings.ContainsAny(got.Action, "0123456789") {
			t.Errorf("Action = %q, want no fixed size", got.Action)
		}
	}
}

func TestLoadErrorMessage(t *testing.T) {
	err := parseError(FormatJSON, "invalid JSON", errors.New("unexpected end of JSON input"))

	want := "json parse error: invalid JSON: unexpected end of JSON input"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrParse) {
		t.Error("errors.Is(err, ErrParse) = false")
	}
	if errors.Is(err, ErrEmptyDataset) {
		t.Error("errors.Is(err, ErrEmptyDataset) = true")
	}
	if !IsLoadError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsLoadError on wrapped error = false")
	}
}
