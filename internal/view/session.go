package view

import (
	"sync"
	"time"

	"github.com/JonMunkholm/dataview/internal/core"
)

// Info describes the dataset held by a Session.
type Info struct {
	FileName string        `json:"file_name"`
	Format   core.Format   `json:"format"`
	Encoding core.Encoding `json:"encoding"`
	Records  int           `json:"records"`
	Columns  int           `json:"columns"`
	LoadedAt time.Time     `json:"loaded_at"`
}

// Session holds one user's working set and view state.
//
// Loads are tagged with a generation: BeginLoad starts one, and only the
// most recent generation may commit or fail. A load that finishes after a
// newer one started, or after Clear, is discarded.
type Session struct {
	mu sync.Mutex

	engine  Engine
	gen     uint64
	working core.RecordSet // sorted in place by ToggleSort
	loaded  core.RecordSet // parse order, for export
	state   ViewState
	info    Info
	notice  string

	lastUsed time.Time
}

// NewSession returns an empty session rendering with engine.
func NewSession(engine Engine) *Session {
	return &Session{
		engine:   engine,
		state:    Reset(),
		lastUsed: time.Now(),
	}
}

// BeginLoad starts a new load and returns its generation.
func (s *Session) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.lastUsed = time.Now()
	return s.gen
}

// CommitLoad replaces the dataset with res and resets the view. It reports
// false, changing nothing, when gen is no longer current.
func (s *Session) CommitLoad(gen uint64, res *core.LoadResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || res == nil {
		return false
	}

	s.loaded = res.Records
	s.working = res.Records.Clone()
	s.state = Reset()
	s.info = Info{
		FileName: res.FileName,
		Format:   res.Format,
		Encoding: res.Encoding,
		Records:  len(res.Records),
		Columns:  len(res.Records.Columns()),
		LoadedAt: time.Now(),
	}
	s.lastUsed = time.Now()
	return true
}

// FailLoad clears the dataset after a failed load. Stale generations are
// ignored and report false.
func (s *Session) FailLoad(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.clearLocked()
	return true
}

// Clear drops the dataset and invalidates any load in flight.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.loaded = nil
	s.working = nil
	s.state = Reset()
	s.info = Info{}
	s.lastUsed = time.Now()
}

// Loaded reports whether a dataset is held.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.working) > 0
}

// Info returns the current dataset description.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// State returns the current view state.
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFilter applies a filter text and returns to page 1.
func (s *Session) SetFilter(text string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.engine.SetFilter(s.state, text)
	s.lastUsed = time.Now()
	return s.state
}

// ToggleSort sorts the working set by key; see Engine.ToggleSort.
func (s *Session) ToggleSort(key string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.engine.ToggleSort(s.working, s.state, key)
	s.lastUsed = time.Now()
	return s.state
}

// SetPage moves to page n, clamped.
func (s *Session) SetPage(n int) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.engine.SetPage(s.working, s.state, n)
	s.lastUsed = time.Now()
	return s.state
}

func (s *Session) NextPage() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.engine.NextPage(s.working, s.state)
	s.lastUsed = time.Now()
	return s.state
}

func (s *Session) PrevPage() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.engine.PrevPage(s.working, s.state)
	s.lastUsed = time.Now()
	return s.state
}

// Render renders the current page.
func (s *Session) Render() Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, st := s.engine.Render(s.working, s.state)
	s.state = st
	return page
}

// Records returns the dataset in parse order, independent of sorting and
// filtering. It returns core.ErrNoDataset when nothing is loaded.
func (s *Session) Records() (core.RecordSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.loaded) == 0 {
		return nil, core.ErrNoDataset
	}
	return s.loaded.Clone(), nil
}

// Export serializes the dataset in parse order as indented JSON.
func (s *Session) Export() ([]byte, error) {
	rs, err := s.Records()
	if err != nil {
		return nil, err
	}
	return core.ExportJSON(rs)
}

// SetNotice stores a one-shot message for the next render.
func (s *Session) SetNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// TakeNotice returns and clears the pending notice.
func (s *Session) TakeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.notice
	s.notice = ""
	return msg
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

// LastUsed returns when the session was last used.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
