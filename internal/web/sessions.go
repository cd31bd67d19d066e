package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/dataview/internal/view"
	"github.com/google/uuid"
)

// sessionStore maps cookie IDs to viewer sessions. Sessions idle for longer
// than ttl are removed by the sweeper.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*view.Session

	engine view.Engine
	ttl    time.Duration
	cookie string

	stop     chan struct{}
	stopOnce sync.Once
}

func newSessionStore(engine view.Engine, ttl time.Duration, cookie string) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*view.Session),
		engine:   engine,
		ttl:      ttl,
		cookie:   cookie,
		stop:     make(chan struct{}),
	}
}

func (st *sessionStore) get(id string) (*view.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

func (st *sessionStore) create() (string, *view.Session) {
	id := uuid.NewString()
	sess := view.NewSession(st.engine)

	st.mu.Lock()
	st.sessions[id] = sess
	st.mu.Unlock()

	return id, sess
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep removes sessions idle since before now-ttl and returns how many
// were removed.
func (st *sessionStore) sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.LastUsed()) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// run sweeps every interval until close is called.
func (st *sessionStore) run(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case now := <-ticker.C:
			if n := st.sweep(now); n > 0 {
				slog.Debug("expired viewer sessions", "count", n)
			}
		}
	}
}

func (st *sessionStore) close() {
	st.stopOnce.Do(func() { close(st.stop) })
}

// middleware attaches the caller's session, creating one and setting the
// cookie when the request has none or an expired one.
func (st *sessionStore) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			id   string
			sess *view.Session
		)

		if c, err := r.Cookie(st.cookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				if s, ok := st.get(c.Value); ok {
					id, sess = c.Value, s
				}
			}
		}

		if sess == nil {
			id, sess = st.create()
			http.SetCookie(w, &http.Cookie{
				Name:     st.cookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(st.ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		sess.Touch()

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), id, sess)))
	})
}
