package core

// history.go records one entry per load attempt, successful or not.
//
// Datasets themselves are never persisted; history only keeps metadata
// (file name, format, size, record count, outcome) so operators can see
// what was loaded and why loads failed. With DATABASE_URL set entries go
// to Postgres, otherwise to a bounded in-memory ring.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// LoadOutcome is the result of a load attempt.
type LoadOutcome string

const (
	OutcomeLoaded LoadOutcome = "loaded"
	OutcomeFailed LoadOutcome = "failed"
)

// LoadEvent describes one load attempt.
type LoadEvent struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id,omitempty"`
	FileName   string      `json:"file_name"`
	Format     Format      `json:"format,omitempty"`
	Encoding   Encoding    `json:"encoding,omitempty"`
	Bytes      int64       `json:"bytes"`
	Records    int         `json:"records"`
	Outcome    LoadOutcome `json:"outcome"`
	ErrorCode  string      `json:"error_code,omitempty"`
	DurationMS int64       `json:"duration_ms"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewLoadEvent builds the history entry for a finished load. res is nil
// when err is not.
func NewLoadEvent(sessionID, fileName string, res *LoadResult, err error, elapsed time.Duration) LoadEvent {
	ev := LoadEvent{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		FileName:   fileName,
		Format:     DetectFormat(fileName),
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		ev.Outcome = OutcomeFailed
		ev.ErrorCode = MapError(err).Code
		return ev
	}
	ev.Outcome = OutcomeLoaded
	ev.Encoding = res.Encoding
	ev.Bytes = res.Bytes
	ev.Records = len(res.Records)
	return ev
}

// HistoryStore persists load events.
type HistoryStore interface {
	Record(ctx context.Context, ev LoadEvent) error
	Recent(ctx context.Context, limit int) ([]LoadEvent, error)
}

// DefaultHistoryLimit caps Recent results and the in-memory ring.
const DefaultHistoryLimit = 100

// MemoryHistory keeps the most recent events in memory.
type MemoryHistory struct {
	mu     sync.RWMutex
	events []LoadEvent
	max    int
}

// NewMemoryHistory keeps at most max events (DefaultHistoryLimit if max <= 0).
func NewMemoryHistory(max int) *MemoryHistory {
	if max <= 0 {
		max = DefaultHistoryLimit
	}
	return &MemoryHistory{max: max}
}

func (h *MemoryHistory) Record(_ context.Context, ev LoadEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, ev)
	if over := len(h.events) - h.max; over > 0 {
		h.events = append(h.events[:0:0], h.events[over:]...)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]LoadEvent, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	limit = clampHistoryLimit(limit)
	out := make([]LoadEvent, 0, min(limit, len(h.events)))
	for i := len(h.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.events[i])
	}
	return out, nil
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 || limit > DefaultHistoryLimit {
		return DefaultHistoryLimit
	}
	return limit
}

// DBTX is the subset of pgxpool.Pool used by PgHistory.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgHistory stores load events in the load_history table.
type PgHistory struct {
	db DBTX
}

// NewPgHistory returns a Postgres-backed store.
func NewPgHistory(db DBTX) *PgHistory {
	return &PgHistory{db: db}
}

const createLoadHistory = `CREATE TABLE IF NOT EXISTS load_history (
	id          UUID PRIMARY KEY,
	session_id  TEXT,
	file_name   TEXT NOT NULL,
	format      TEXT,
	encoding    TEXT,
	bytes       BIGINT NOT NULL DEFAULT 0,
	records     INTEGER NOT NULL DEFAULT 0,
	outcome     TEXT NOT NULL,
	error_code  TEXT,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createLoadHistoryIndex = `CREATE INDEX IF NOT EXISTS load_history_created_at_idx
	ON load_history (created_at DESC)`

// EnsureSchema creates the load_history table if it does not exist.
func (h *PgHistory) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createLoadHistory, createLoadHistoryIndex} {
		if _, err := h.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure load_history schema: %w", err)
		}
	}
	return nil
}

const insertLoadEvent = `INSERT INTO load_history
	(id, session_id, file_name, format, encoding, bytes, records, outcome, error_code, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (h *PgHistory) Record(ctx context.Context, ev LoadEvent) error {
	_, err := h.db.Exec(ctx, insertLoadEvent,
		toPgUUID(ev.ID),
		toPgText(ev.SessionID),
		ev.FileName,
		toPgText(string(ev.Format)),
		toPgText(string(ev.Encoding)),
		ev.Bytes,
		int32(ev.Records),
		string(ev.Outcome),
		toPgText(ev.ErrorCode),
		ev.DurationMS,
		pgtype.Timestamptz{Time: ev.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("record load event: %w", err)
	}
	return nil
}

const selectRecentLoads = `SELECT id, session_id, file_name, format, encoding, bytes, records,
	outcome, error_code, duration_ms, created_at
	FROM load_history ORDER BY created_at DESC LIMIT $1`

// Recent returns up to limit events, newest first.
func (h *PgHistory) Recent(ctx context.Context, limit int) ([]LoadEvent, error) {
	rows, err := h.db.Query(ctx, selectRecentLoads, clampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query load history: %w", err)
	}
	defer rows.Close()

	events := make([]LoadEvent, 0)
	for rows.Next() {
		ev, err := scanLoadEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func scanLoadEvent(rows pgx.Rows) (LoadEvent, error) {
	var (
		id         pgtype.UUID
		sessionID  pgtype.Text
		fileName   string
		format     pgtype.Text
		encoding   pgtype.Text
		size       int64
		records    int32
		outcome    string
		errorCode  pgtype.Text
		durationMS int64
		createdAt  pgtype.Timestamptz
	)

	if err := rows.Scan(&id, &sessionID, &fileName, &format, &encoding, &size, &records,
		&outcome, &errorCode, &durationMS, &createdAt); err != nil {
		return LoadEvent{}, fmt.Errorf("scan load event: %w", err)
	}

	return LoadEvent{
		ID:         uuidToString(id),
		SessionID:  sessionID.String,
		FileName:   fileName,
		Format:     Format(format.String),
		Encoding:   Encoding(encoding.String),
		Bytes:      size,
		Records:    int(records),
		Outcome:    LoadOutcome(outcome),
		ErrorCode:  errorCode.String,
		DurationMS: durationMS,
		CreatedAt:  createdAt.Time,
	}, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
