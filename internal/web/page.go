package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/dataview/internal/web/templates"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	params := templates.IndexParams{
		Notice:  sess.TakeNotice(),
		Dataset: sess.Info(),
		Loaded:  sess.Loaded(),
		Page:    sess.Render(),
		Filter:  sess.State().Filter,
		MaxSize: humanSize(s.loader.MaxSize()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		s.respondError(w, r, fmt.Errorf("render page: %w", err))
	}
}

func humanSize(n int64) string {
	const mib = 1024 * 1024
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%d MiB", n/mib)
	}
	if n >= mib {
		return fmt.Sprintf("%.1f MiB", float64(n)/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
