package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. Error is mapped via core.MapError and statusFor
//  4. Technical error is logged with request and session IDs
//  5. Browsers are redirected to the page with a notice; API callers get JSON

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/logging"
)

var (
	errNoFile    = errors.New("no file provided")
	errBadFilter = errors.New("invalid filter body")
)

// ErrorResponse is the JSON body of an API error.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and answers with its user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}

	if wantsHTML(r) {
		if sess := sessionFrom(r.Context()); sess != nil {
			sess.SetNotice(core.FormatUserError(err))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrOversize), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrEmptyInput), errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrParse), errors.Is(err, core.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyLoads):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrNoDataset):
		return http.StatusNotFound
	case errors.Is(err, core.ErrLoadSuperseded):
		return http.StatusConflict
	case errors.Is(err, errBadPage), errors.Is(err, errBadFilter):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// wantsHTML reports whether the caller is a browser form rather than an
// API client.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return false
	}
	return strings.Contains(accept, "text/html")
}
