package core

// error_messages.go maps load failures to user-facing messages.
//
// Every failure shown to a user carries a message, a suggested action and a
// code they can quote when asking for help.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unsupported format: extension is not csv, txt, json or xml
//	          Matches: ErrUnsupportedFormat
//
//	FILE002 - Empty file: the file has no content
//	          Matches: ErrEmptyInput
//
//	FILE003 - File too large: the file exceeds the size limit
//	          Matches: ErrOversize, "request body too large"
//
//	FILE004 - No file: nothing was selected
//	          Matches: "no file provided"
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Unreadable file: syntax error or no data rows/nodes
//	           Matches: ErrParse
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - No valid records: every record was empty after normalization
//	          Matches: ErrEmptyDataset
//
//	DATA002 - Nothing loaded: the session holds no dataset
//	          Matches: ErrNoDataset
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - System busy: every load slot is taken
//	          Matches: ErrTooManyLoads
//
//	LOAD002 - Request cancelled
//	          Matches: context.Canceled, "context canceled"
//
//	LOAD003 - Request timeout
//	          Matches: context.DeadlineExceeded, "context deadline exceeded"
//
//	LOAD004 - Superseded: a newer load or a clear replaced this one
//	          Matches: ErrLoadSuperseded
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - Invalid page: the page is not a number, "next" or "prev"
//	          Matches: "invalid page"
//
//	VIEW002 - Invalid filter: the filter body is not valid JSON
//	          Matches: "invalid filter body"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error; the technical error is in the server log.
//
// Sentinels are checked with errors.Is first, in table order. Plain-text
// patterns are then matched case-insensitively with strings.Contains, so
// wrapped errors from other layers still classify.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoDataset is returned by operations that need a loaded dataset.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrLoadSuperseded is returned for a load whose result was discarded
	// because a newer load or a clear happened first.
	ErrLoadSuperseded = errors.New("load superseded")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Reference for support
}

// errorRule matches an error by sentinel or by text.
type errorRule struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorRules = []errorRule{
	{
		target: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Unsupported file format",
			Action:  "Use a .csv, .txt (tab separated), .json or .xml file",
			Code:    "FILE001",
		},
	},
	{
		target: ErrEmptyInput,
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Choose a file that contains data",
			Code:    "FILE002",
		},
	},
	{
		target: ErrOversize,
		msg: UserMessage{
			Message: "The file is too large",
			Action:  "Use a file within the upload size limit or split it into smaller files",
			Code:    "FILE003",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The file is too large",
			Action:  "Use a file within the upload size limit or split it into smaller files",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a file to load",
			Code:    "FILE004",
		},
	},
	{
		target: ErrParse,
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file is valid for its extension and has a header and data rows",
			Code:    "PARSE001",
		},
	},
	{
		target: ErrEmptyDataset,
		msg: UserMessage{
			Message: "No valid data was found in the file",
			Action:  "Check that the records contain values",
			Code:    "DATA001",
		},
	},
	{
		target: ErrNoDataset,
		msg: UserMessage{
			Message: "No data loaded",
			Action:  "Load a file first",
			Code:    "DATA002",
		},
	},
	{
		target: ErrTooManyLoads,
		msg: UserMessage{
			Message: "The system is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "LOAD001",
		},
	},
	{
		target:  context.Canceled,
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "LOAD002",
		},
	},
	{
		target:  context.DeadlineExceeded,
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "LOAD003",
		},
	},
	{
		target: ErrLoadSuperseded,
		msg: UserMessage{
			Message: "A newer file replaced this one",
			Action:  "The most recently chosen file is shown",
			Code:    "LOAD004",
		},
	},
	{
		pattern: "invalid page",
		msg: UserMessage{
			Message: "That page does not exist",
			Action:  "Use a page number, next or prev",
			Code:    "VIEW001",
		},
	},
	{
		pattern: "invalid filter body",
		msg: UserMessage{
			Message: "The filter could not be read",
			Action:  `Send JSON such as {"filter": "text"}`,
			Code:    "VIEW002",
		},
	},
}

var defaultErrorMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error into a UserMessage. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, rule := range errorRules {
		if rule.target != nil && errors.Is(err, rule.target) {
			return rule.msg
		}
	}

	lower := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		if rule.pattern != "" && strings.Contains(lower, rule.pattern) {
			return rule.msg
		}
	}

	return defaultErrorMessage
}

// FormatUserError renders an error as "Message. Action (Code)".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s. %s (%s)", msg.Message, msg.Action, msg.Code)
}
