package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/leanbb/leanbb/internal/database"
	"github.com/leanbb/leanbb/web/views"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) error {
	page := max(1, queryInt(r, "page", 1))
	boardId := queryInt(r, "board", 0)

	title := "Latest Posts"
	if boardId > 0 {
		board, err := database.GetBoard(s.db, boardId)
		switch {
		case err == nil:
			title = "Board: " + board.Name
		case errors.Is(err, database.ErrNotFound):
			title = "Board: Unknown"
		default:
			return err
		}
	}

	posts, total, err := database.GetPostPage(s.db, boardId, page, s.perPage)
	if err != nil {
		return err
	}
	boards, err := database.GetBoards(s.db)
	if err != nil {
		return err
	}

	query := url.Values{}
	if boardId > 0 {
		query.Set("board", strconv.Itoa(boardId))
	}

	return s.render(w, http.StatusOK, "home", views.HomeData{
		Page:        s.page(r, title),
		Boards:      boards,
		Posts:       posts,
		ActiveBoard: boardId,
		Pagination:  views.Paginate(total, s.perPage, page, "/", query),
	})
}

func (s *Server) handleViewPost(w http.ResponseWriter, r *http.Request) error {
	postId, _ := strconv.Atoi(chi.URLParam(r, "id"))

	post, err := database.GetPost(s.db, postId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Post Not Found")
		}
		return err
	}

	replies, err := database.GetReplies(s.db, postId)
	if err != nil {
		return err
	}

	data := views.PostData{
		Page:    s.page(r, post.Title),
		Post:    post,
		Replies: replies,
	}
	if data.User != nil {
		if data.CSRFToken, err = s.csrfToken(r); err != nil {
			return err
		}
	}

	return s.render(w, http.StatusOK, "post", data)
}

func (s *Server) handleNewPostForm(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireLogin(w, r); err != nil {
		return err
	}

	boards, err := database.GetBoards(s.db)
	if err != nil {
		return err
	}
	if len(boards) == 0 {
		return &httpError{
			Status:  http.StatusInternalServerError,
			Title:   "Cannot Post",
			Message: "No boards available. Please create a board in the admin panel.",
		}
	}

	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "post_new", views.NewPostData{
		Page:      s.page(r, "New Post"),
		Boards:    boards,
		CSRFToken: token,
	})
}

func (s *Server) handleSubmitPost(w http.ResponseWriter, r *http.Request) error {
	user, err := s.requireLogin(w, r)
	if err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	title := strings.TrimSpace(r.PostFormValue("title"))
	content := strings.TrimSpace(r.PostFormValue("content"))
	boardId := formInt(r, "board_id")

	if title == "" || content == "" || boardId <= 0 {
		return badRequest("Title, content, and board cannot be empty")
	}
	if utf8.RuneCountInString(title) > 120 {
		return badRequest("Title cannot exceed 120 characters")
	}

	exists, err := database.BoardExists(s.db, boardId)
	if err != nil {
		return err
	}
	if !exists {
		return badRequest("Selected board does not exist")
	}

	postId, err := database.PutPost(s.db, boardId, user.Id, title, content)
	if err != nil {
		return err
	}

	http.Redirect(w, r, "/post/"+strconv.Itoa(postId), http.StatusSeeOther)
	return nil
}

func (s *Server) handleSubmitReply(w http.ResponseWriter, r *http.Request) error {
	user, err := s.requireLogin(w, r)
	if err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	postId := formInt(r, "post_id")
	content := strings.TrimSpace(r.PostFormValue("content"))

	if content == "" || postId <= 0 {
		return badRequest("Reply content cannot be empty and post ID must be specified")
	}

	exists, err := database.PostExists(s.db, postId)
	if err != nil {
		return err
	}
	if !exists {
		return &httpError{Status: http.StatusNotFound, Title: "Error", Message: "The post to reply to does not exist"}
	}

	if _, err := database.PutReply(s.db, postId, user.Id, content); err != nil {
		return err
	}

	http.Redirect(w, r, "/post/"+strconv.Itoa(postId), http.StatusSeeOther)
	return nil
}

func (s *Server) handleAuthForm(w http.ResponseWriter, r *http.Request) error {
	redirect := safeRedirect(r.URL.Query().Get("redirect"))

	if _, ok := currentUser(r.Context()); ok {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return nil
	}

	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "auth", views.AuthData{
		Page:              s.page(r, "Welcome! Login or Register"),
		Redirect:          redirect,
		CSRFToken:         token,
		AllowRegistration: s.settings.Get("allow_registration", "1") == "1",
	})
}

func (s *Server) handleAuthSubmit(w http.ResponseWriter, r *http.Request) error {
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	action := r.PostFormValue("action")
	redirect := safeRedirect(r.PostFormValue("redirect"))

	if username == "" || password == "" {
		return badRequest("Username and password cannot be empty")
	}
	if utf8.RuneCountInString(username) > 24 {
		return badRequest("Username cannot exceed 24 characters")
	}

	sid := sessionId(r.Context())

	user, err := database.GetUserByUsername(s.db, username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	exists := err == nil

	if action == "register" {
		if s.settings.Get("allow_registration", "1") != "1" {
			return &httpError{
				Status:  http.StatusForbidden,
				Title:   "Registration Closed",
				Message: "Sorry, new user registration is currently disabled",
			}
		}
		if exists {
			return badRequest("Username is already taken")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		userId, err := database.PutUser(s.db, username, string(hash), false)
		if err != nil {
			if errors.Is(err, database.ErrUsernameTaken) {
				return badRequest("Username is already taken")
			}
			return err
		}

		s.sessions.SetUserId(sid, userId)
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return nil
	}

	if !exists || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return &httpError{Status: http.StatusUnauthorized, Title: "Login Failed", Message: "Incorrect username or password"}
	}

	s.sessions.SetUserId(sid, user.Id)
	if _, err := s.sessions.Regenerate(sid, w); err != nil {
		return err
	}

	http.Redirect(w, r, redirect, http.StatusSeeOther)
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	s.sessions.Destroy(sessionId(r.Context()), w)

	page := s.page(r, "Logged Out")
	page.User = nil
	return s.render(w, http.StatusOK, "logout", page)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) error {
	targetId, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if targetId == 0 {
		user, err := s.requireLogin(w, r)
		if err != nil {
			return err
		}
		targetId = user.Id
	}

	profile, err := database.GetUser(s.db, targetId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("User Not Found")
		}
		return err
	}

	posts, err := database.GetUserPosts(s.db, profile.Id, 50)
	if err != nil {
		return err
	}
	replies, err := database.GetUserReplies(s.db, profile.Id, 50)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "profile", views.ProfileData{
		Page:    s.page(r, "Profile: "+profile.Username),
		Profile: profile,
		Posts:   posts,
		Replies: replies,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) error {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	page := max(1, queryInt(r, "page", 1))

	results, total, err := database.SearchPosts(s.db, keyword, page, s.perPage)
	if err != nil {
		return err
	}

	data := views.SearchData{
		Page:    s.page(r, "Search Posts"),
		Keyword: keyword,
		Results: results,
		Total:   total,
	}
	if keyword != "" {
		query := url.Values{}
		query.Set("q", keyword)
		data.Pagination = views.Paginate(total, s.perPage, page, "/search", query)
	}

	return s.render(w, http.StatusOK, "search", data)
}
