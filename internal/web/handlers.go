package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/logging"
	"github.com/JonMunkholm/dataview/internal/view"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartOverhead is the body allowance above the file size ceiling
	// for multipart boundaries and headers.
	multipartOverhead = 64 << 10

	// multipartMemory is how much of a form ParseMultipartForm keeps in memory.
	multipartMemory = 1 << 20

	defaultHistoryPage = 20
)

var errBadPage = errors.New("invalid page")

// ViewResponse is the JSON body describing a session's view.
type ViewResponse struct {
	Dataset view.Info      `json:"dataset"`
	State   view.ViewState `json:"state"`
	Page    view.Page      `json:"page"`
	Summary string         `json:"summary"`
	Notice  string         `json:"notice,omitempty"`
}

// LoadResponse is the JSON body of a successful load.
type LoadResponse struct {
	FileName   string        `json:"file_name"`
	Format     core.Format   `json:"format"`
	Encoding   core.Encoding `json:"encoding"`
	Bytes      int64         `json:"bytes"`
	Records    int           `json:"records"`
	Dropped    int           `json:"dropped"`
	DurationMS int64         `json:"duration_ms"`
	View       ViewResponse  `json:"view"`
}

// handleLoad replaces the session's dataset with an uploaded file.
// A failed load clears the session.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	// Any attempt, including one rejected while reading the body, replaces
	// the current dataset.
	gen := sess.BeginLoad()
	fail := func(err error) {
		if sess.FailLoad(gen) {
			logging.WithFields(ctx, "generation", gen).Info("load failed, session cleared", "error", err)
		}
		s.respondError(w, r, err)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.loader.MaxSize()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(fmt.Errorf("read upload: %w", err))
			return
		}
		fail(errNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(errNoFile)
		return
	}
	defer file.Close()

	logger := logging.WithFields(ctx, "file", header.Filename, "generation", gen)

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer release()

	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.loader.Load(loadCtx, header.Filename, file, header.Size)
	s.recordHistory(ctx, header.Filename, res, err, time.Since(start))

	if err != nil {
		fail(err)
		return
	}

	if !sess.CommitLoad(gen, res) {
		logger.Info("discarding superseded load")
		s.respondError(w, r, core.ErrLoadSuperseded)
		return
	}

	if wantsHTML(r) {
		sess.SetNotice(fmt.Sprintf("Loaded %d records from %s", len(res.Records), header.Filename))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	writeJSON(w, http.StatusOK, LoadResponse{
		FileName:   res.FileName,
		Format:     res.Format,
		Encoding:   res.Encoding,
		Bytes:      res.Bytes,
		Records:    len(res.Records),
		Dropped:    res.Dropped,
		DurationMS: res.Duration.Milliseconds(),
		View:       viewResponse(sess),
	})
}

// recordHistory stores a load event. History failures are logged, never
// returned to the caller.
func (s *Server) recordHistory(ctx context.Context, name string, res *core.LoadResult, loadErr error, elapsed time.Duration) {
	ev := core.NewLoadEvent(logging.SessionID(ctx), name, res, loadErr, elapsed)
	if err := s.history.Record(context.WithoutCancel(ctx), ev); err != nil {
		logging.FromContext(ctx).Warn("failed to record load history", "error", err)
	}
}

// handleClear drops the session's dataset and any load in flight.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Clear()
	s.respondView(w, r, sess)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.respondView(w, r, sessionFrom(r.Context()))
}

// handleFilter sets the filter text from the form field "q" or a JSON body
// {"filter": "..."}.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	var text string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Filter string `json:"filter"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.respondError(w, r, fmt.Errorf("%w: %w", errBadFilter, err))
			return
		}
		text = body.Filter
	} else {
		text = r.FormValue("q")
	}

	sess.SetFilter(text)
	s.respondView(w, r, sess)
}

// handleSort toggles sorting on a column. Untyped or unknown columns leave
// the view unchanged.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.ToggleSort(chi.URLParam(r, "column"))
	s.respondView(w, r, sess)
}

// handlePage moves to a page number, or to "next" / "prev".
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	switch raw := chi.URLParam(r, "page"); raw {
	case "next":
		sess.NextPage()
	case "prev":
		sess.PrevPage()
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w %q", errBadPage, raw))
			return
		}
		sess.SetPage(n)
	}

	s.respondView(w, r, sess)
}

// handleExport downloads the dataset in parse order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := sessionFrom(r.Context()).Export()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.ExportFileName))
	w.Write(data)
}

// handleHistory lists recent loads, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", defaultHistoryPage)

	events, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("load history: %w", err))
		return
	}
	if events == nil {
		events = []core.LoadEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Loads    core.LoadLimiterStatus `json:"loads"`
	Sessions int                    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Loads:    s.limiter.Status(),
		Sessions: s.sessions.len(),
	})
}

// respondView redirects browsers back to the page and sends API callers
// the rendered view.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(sess))
}

func viewResponse(sess *view.Session) ViewResponse {
	page := sess.Render()
	return ViewResponse{
		Dataset: sess.Info(),
		State:   sess.State(),
		Page:    page,
		Summary: page.Summary(),
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
