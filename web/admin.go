package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/leanbb/leanbb/internal/database"
	"github.com/leanbb/leanbb/web/views"
)

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}
	return s.render(w, http.StatusOK, "admin_dashboard", s.page(r, "Admin Dashboard"))
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}

	users, err := database.GetUsers(s.db)
	if err != nil {
		return err
	}
	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "admin_users", views.AdminUsersData{
		Page:      s.page(r, "User Management"),
		Users:     users,
		CSRFToken: token,
	})
}

func (s *Server) handleAdminToggleAdmin(w http.ResponseWriter, r *http.Request) error {
	admin, err := s.requireAdmin(r)
	if err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	userId := formInt(r, "user_id")
	if userId <= 0 {
		return badRequest("Invalid user ID")
	}
	if userId == admin.Id {
		return badRequest("Cannot modify your own admin status")
	}

	if err := database.ToggleAdmin(s.db, userId); err != nil {
		return err
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) error {
	admin, err := s.requireAdmin(r)
	if err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	userId := formInt(r, "user_id")
	if userId <= 0 {
		return badRequest("Invalid user ID")
	}
	if userId == admin.Id {
		return badRequest("Cannot delete your own account")
	}

	if err := database.DeleteUser(s.db, userId); err != nil {
		return err
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAdminBoards(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}

	boards, err := database.GetBoards(s.db)
	if err != nil {
		return err
	}
	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "admin_boards", views.AdminBoardsData{
		Page:      s.page(r, "Board Management"),
		Boards:    boards,
		CSRFToken: token,
	})
}

func (s *Server) handleAdminAddBoard(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	description := strings.TrimSpace(r.PostFormValue("description"))

	if name == "" {
		return badRequest("Board name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 50 {
		return badRequest("Board name cannot exceed 50 characters")
	}
	if utf8.RuneCountInString(description) > 200 {
		return badRequest("Description cannot exceed 200 characters")
	}

	if _, err := database.PutBoard(s.db, name, description); err != nil {
		if errors.Is(err, database.ErrBoardNameTaken) {
			return badRequest("This board name is already in use")
		}
		return err
	}

	http.Redirect(w, r, "/admin/boards", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAdminDeleteBoard(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	boardId := formInt(r, "board_id")
	if boardId <= 0 {
		return badRequest("Invalid board ID")
	}

	if err := database.DeleteBoard(s.db, boardId); err != nil {
		return err
	}

	http.Redirect(w, r, "/admin/boards", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAdminPosts(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}

	page := max(1, queryInt(r, "page", 1))
	posts, total, err := database.GetPostPage(s.db, 0, page, s.perPage)
	if err != nil {
		return err
	}
	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "admin_posts", views.AdminPostsData{
		Page:       s.page(r, "Post Management"),
		Posts:      posts,
		CSRFToken:  token,
		Pagination: views.Paginate(total, s.perPage, page, "/admin/posts", nil),
	})
}

func (s *Server) handleAdminEditPostForm(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}

	postId, _ := strconv.Atoi(chi.URLParam(r, "id"))
	post, err := database.GetPost(s.db, postId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Post Not Found")
		}
		return err
	}

	boards, err := database.GetBoards(s.db)
	if err != nil {
		return err
	}
	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "admin_post_edit", views.AdminPostEditData{
		Page:      s.page(r, "Edit Post: "+post.Title),
		Post:      post,
		Boards:    boards,
		CSRFToken: token,
	})
}

func (s *Server) handleAdminUpdatePost(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	postId := formInt(r, "post_id")
	title := strings.TrimSpace(r.PostFormValue("title"))
	content := strings.TrimSpace(r.PostFormValue("content"))
	boardId := formInt(r, "board_id")

	if postId <= 0 || title == "" || content == "" || boardId <= 0 {
		return badRequest("Invalid input")
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

	if err := database.UpdatePost(s.db, postId, boardId, title, content); err != nil {
		return err
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAdminDeletePost(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	postId := formInt(r, "post_id")
	if postId <= 0 {
		return badRequest("Invalid post ID")
	}

	if err := database.DeletePost(s.db, postId); err != nil {
		return err
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAdminSettingsForm(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}

	token, err := s.csrfToken(r)
	if err != nil {
		return err
	}

	return s.render(w, http.StatusOK, "admin_settings", views.AdminSettingsData{
		Page: s.page(r, "Settings"),
		Settings: views.SiteSettings{
			SiteTitle:         s.settings.Get("site_title", "LeanBB"),
			LogoURL:           s.settings.Get("logo_url", ""),
			Copyright:         s.settings.Get("copyright_info", ""),
			AllowRegistration: s.settings.Get("allow_registration", "1"),
		},
		CSRFToken: token,
	})
}

func (s *Server) handleAdminSettingsUpdate(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.requireAdmin(r); err != nil {
		return err
	}
	if err := s.verifyCSRF(r); err != nil {
		return err
	}

	siteTitle := r.PostFormValue("site_title")
	if siteTitle == "" {
		siteTitle = "LeanBB"
	}
	allowRegistration := "0"
	if r.PostFormValue("allow_registration") == "1" {
		allowRegistration = "1"
	}

	err := s.settings.SetAll(map[string]string{
		"site_title":         siteTitle,
		"logo_url":           r.PostFormValue("logo_url"),
		"copyright_info":     r.PostFormValue("copyright_info"),
		"allow_registration": allowRegistration,
	})
	if err != nil {
		return &httpError{
			Status:  http.StatusInternalServerError,
			Title:   "Failed to Save Settings",
			Message: "An unexpected error occurred",
		}
	}

	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
	return nil
}
