package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/leanbb/leanbb/internal/database"
	"go.uber.org/zap"
)

type ctxKey int

const (
	sidKey ctxKey = iota
	userKey
)

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// normalizePath lower-cases the path and strips trailing slashes, so
// /Post/3/ matches the /post/{id} route.
func normalizePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.ToLower(r.URL.Path)
		if len(p) > 1 {
			p = strings.TrimRight(p, "/")
		}
		if p == "" {
			p = "/"
		}
		r.URL.Path = p
		next.ServeHTTP(w, r)
	})
}

// withSession starts the client's session and resolves the current user
// once per request into the context. A session pointing at a deleted user
// is cleared.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.sessions.Start(w, r)
		if err != nil {
			s.log.Error("start session", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), sidKey, sid)
		if userId, ok := s.sessions.UserId(sid); ok {
			user, err := database.GetUser(s.db, userId)
			switch {
			case err == nil:
				ctx = context.WithValue(ctx, userKey, user)
			case errors.Is(err, database.ErrNotFound):
				s.sessions.ClearUserId(sid)
			default:
				s.log.Error("resolve current user", zap.Int("user_id", userId), zap.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionId(ctx context.Context) string {
	sid, _ := ctx.Value(sidKey).(string)
	return sid
}

func currentUser(ctx context.Context) (database.User, bool) {
	user, ok := ctx.Value(userKey).(database.User)
	return user, ok
}
