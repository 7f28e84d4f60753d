// Package session implements the per-client session store: an opaque
// session id carried in a cookie, mapped in process memory to the logged
// in user id and the CSRF token.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"sync"
)

const CookieName = "leanbb_session"

type data struct {
	userId    int
	csrfToken string
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*data
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*data)}
}

// GenToken returns 32 random bytes hex encoded, used for both session ids
// and CSRF tokens.
func GenToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func newCookie(sid string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Start returns the request's session id, creating a fresh session and
// setting its cookie when the client has none (or presents an unknown id).
func (s *Store) Start(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		s.mu.RLock()
		_, exists := s.sessions[cookie.Value]
		s.mu.RUnlock()
		if exists {
			return cookie.Value, nil
		}
	}

	sid, err := GenToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[sid] = &data{}
	s.mu.Unlock()

	http.SetCookie(w, newCookie(sid))
	return sid, nil
}

// UserId returns the logged in user id for the session, if any.
func (s *Store) UserId(sid string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[sid]
	if !exists || sess.userId == 0 {
		return 0, false
	}
	return sess.userId, true
}

func (s *Store) SetUserId(sid string, userId int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, exists := s.sessions[sid]; exists {
		sess.userId = userId
	}
}

// ClearUserId drops the user id but keeps the session alive. Used when a
// session references a user that no longer exists.
func (s *Store) ClearUserId(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, exists := s.sessions[sid]; exists {
		sess.userId = 0
	}
}

// Regenerate swaps the session onto a fresh id, keeping its data.
// Mitigates session fixation; called on login.
func (s *Store) Regenerate(sid string, w http.ResponseWriter) (string, error) {
	newSid, err := GenToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	sess, exists := s.sessions[sid]
	if !exists {
		sess = &data{}
	}
	delete(s.sessions, sid)
	s.sessions[newSid] = sess
	s.mu.Unlock()

	http.SetCookie(w, newCookie(newSid))
	return newSid, nil
}

// Destroy removes the session entirely and expires its cookie.
func (s *Store) Destroy(sid string, w http.ResponseWriter) {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()

	cookie := newCookie("")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

// CSRFToken returns the session's CSRF token, generating one lazily.
func (s *Store) CSRFToken(sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sid]
	if !exists {
		sess = &data{}
		s.sessions[sid] = sess
	}
	if sess.csrfToken == "" {
		token, err := GenToken()
		if err != nil {
			return "", err
		}
		sess.csrfToken = token
	}
	return sess.csrfToken, nil
}

// VerifyCSRF compares token against the session's stored token in
// constant time. On mismatch the stored token is invalidated so the next
// form render issues a fresh one.
func (s *Store) VerifyCSRF(sid, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sid]
	if !exists || sess.csrfToken == "" || token == "" ||
		subtle.ConstantTimeCompare([]byte(sess.csrfToken), []byte(token)) != 1 {
		if exists {
			sess.csrfToken = ""
		}
		return false
	}
	return true
}
