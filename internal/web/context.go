package web

import (
	"context"

	"github.com/JonMunkholm/dataview/internal/logging"
	"github.com/JonMunkholm/dataview/internal/view"
)

type sessionCtxKey struct{}

// withSession stores the viewer session for handlers and its ID for
// logging.FromContext.
func withSession(ctx context.Context, id string, sess *view.Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey{}, sess)
	return logging.WithSessionID(ctx, id)
}

// sessionFrom returns the session set by the session middleware.
func sessionFrom(ctx context.Context) *view.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(*view.Session)
	return sess
}
