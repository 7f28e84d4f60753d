package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/leanbb/leanbb/internal/database"
	"github.com/leanbb/leanbb/web/views"
	"go.uber.org/zap"
)

// httpError aborts a handler with a rendered error page.
type httpError struct {
	Status  int
	Title   string
	Message string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Message)
}

func badRequest(message string) *httpError {
	return &httpError{Status: http.StatusBadRequest, Title: "Error", Message: message}
}

func notFound(title string) *httpError {
	return &httpError{Status: http.StatusNotFound, Title: title, Message: "An unexpected error occurred"}
}

// errHandled signals that the handler already wrote the response,
// typically a redirect.
var errHandled = errors.New("response already written")

// handle adapts a page handler to http.HandlerFunc. Any returned error
// terminates the request with a rendered error page; errors without a
// status are logged and surfaced as a generic 500.
func (s *Server) handle(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil || errors.Is(err, errHandled) {
			return
		}

		var herr *httpError
		if !errors.As(err, &herr) {
			s.log.Error("handler error",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			herr = &httpError{
				Status:  http.StatusInternalServerError,
				Title:   "Internal Server Error",
				Message: "An unexpected error occurred",
			}
		}
		s.renderError(w, r, herr)
	}
}

// render writes the named page, buffering so a template failure can still
// become a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := views.Render(&buf, name, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, herr *httpError) {
	data := views.ErrorData{
		Page:    s.page(r, herr.Title),
		Message: herr.Message,
	}
	if err := s.render(w, herr.Status, "error", data); err != nil {
		s.log.Error("render error page", zap.Error(err))
		http.Error(w, herr.Message, herr.Status)
	}
}

// page assembles the header/footer data every page needs.
func (s *Server) page(r *http.Request, title string) views.Page {
	p := views.Page{
		Title:     title,
		SiteTitle: s.settings.Get("site_title", "LeanBB"),
		LogoURL:   s.settings.Get("logo_url", ""),
		Copyright: s.settings.Get("copyright_info", ""),
	}
	if user, ok := currentUser(r.Context()); ok {
		p.User = &views.SessionUser{Id: user.Id, Username: user.Username, IsAdmin: user.IsAdmin}
	}
	return p
}

func (s *Server) csrfToken(r *http.Request) (string, error) {
	return s.sessions.CSRFToken(sessionId(r.Context()))
}

// verifyCSRF must run before a mutating handler reads any other field.
func (s *Server) verifyCSRF(r *http.Request) error {
	if !s.sessions.VerifyCSRF(sessionId(r.Context()), r.PostFormValue("csrf_token")) {
		return &httpError{Status: http.StatusForbidden, Title: "Invalid Request", Message: "CSRF token mismatch"}
	}
	return nil
}

// requireLogin redirects anonymous visitors to the login form, carrying
// the original path so they land back after logging in.
func (s *Server) requireLogin(w http.ResponseWriter, r *http.Request) (database.User, error) {
	user, ok := currentUser(r.Context())
	if !ok {
		http.Redirect(w, r, "/auth?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return database.User{}, errHandled
	}
	return user, nil
}

func (s *Server) requireAdmin(r *http.Request) (database.User, error) {
	user, ok := currentUser(r.Context())
	if !ok || !user.IsAdmin {
		return database.User{}, &httpError{
			Status:  http.StatusForbidden,
			Title:   "Access Denied",
			Message: "You do not have permission to access this page",
		}
	}
	return user, nil
}

// safeRedirect keeps post-auth redirects on this site.
func safeRedirect(target string) string {
	if target == "" || target[0] != '/' || (len(target) > 1 && target[1] == '/') {
		return "/"
	}
	return target
}

func queryInt(r *http.Request, name string, def int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

func formInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.PostFormValue(name))
	if err != nil {
		return 0
	}
	return n
}
