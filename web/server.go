// Package web maps routes to page handlers and enforces authorization,
// CSRF and input validation before touching the database.
package web

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leanbb/leanbb/internal/session"
	"github.com/leanbb/leanbb/internal/settings"
	"go.uber.org/zap"
)

type Server struct {
	db       *sql.DB
	settings *settings.Store
	sessions *session.Store
	log      *zap.Logger
	perPage  int
}

func New(db *sql.DB, st *settings.Store, ss *session.Store, log *zap.Logger, perPage int) *Server {
	return &Server{
		db:       db,
		settings: st,
		sessions: ss,
		log:      log,
		perPage:  perPage,
	}
}

// Handler returns the root http.Handler with the full route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(normalizePath)
	r.Use(s.withSession)

	r.NotFound(s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return &httpError{Status: http.StatusNotFound, Title: "Page Not Found", Message: "An unexpected error occurred"}
	}))
	r.MethodNotAllowed(s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return &httpError{Status: http.StatusMethodNotAllowed, Title: "Invalid Request", Message: "Method not allowed"}
	}))

	r.Get("/", s.handle(s.handleHome))

	r.Get("/post/new", s.handle(s.handleNewPostForm))
	r.Get("/post/{id:[0-9]+}", s.handle(s.handleViewPost))
	r.Post("/post/submit", s.handle(s.handleSubmitPost))
	r.Post("/reply/submit", s.handle(s.handleSubmitReply))

	r.Get("/auth", s.handle(s.handleAuthForm))
	r.Post("/auth/submit", s.handle(s.handleAuthSubmit))
	r.Get("/auth/logout", s.handle(s.handleLogout))

	r.Get("/profile", s.handle(s.handleProfile))
	r.Get("/profile/{id:[0-9]+}", s.handle(s.handleProfile))

	r.Get("/search", s.handle(s.handleSearch))

	r.Get("/admin", s.handle(s.handleAdminDashboard))
	r.Get("/admin/users", s.handle(s.handleAdminUsers))
	r.Post("/admin/users/toggle_admin", s.handle(s.handleAdminToggleAdmin))
	r.Post("/admin/users/delete", s.handle(s.handleAdminDeleteUser))
	r.Get("/admin/boards", s.handle(s.handleAdminBoards))
	r.Post("/admin/boards/add", s.handle(s.handleAdminAddBoard))
	r.Post("/admin/boards/delete", s.handle(s.handleAdminDeleteBoard))
	r.Get("/admin/posts", s.handle(s.handleAdminPosts))
	r.Get("/admin/posts/edit/{id:[0-9]+}", s.handle(s.handleAdminEditPostForm))
	r.Post("/admin/posts/update", s.handle(s.handleAdminUpdatePost))
	r.Post("/admin/posts/delete", s.handle(s.handleAdminDeletePost))
	r.Get("/admin/settings", s.handle(s.handleAdminSettingsForm))
	r.Post("/admin/settings/update", s.handle(s.handleAdminSettingsUpdate))

	return r
}
