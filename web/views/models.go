package views

import "github.com/leanbb/leanbb/internal/database"

// SessionUser is the logged in user as needed by the page header.
type SessionUser struct {
	Id       int
	Username string
	IsAdmin  bool
}

// Page carries the data every rendered page needs: the header, the nav
// and the footer.
type Page struct {
	Title     string
	SiteTitle string
	LogoURL   string
	Copyright string
	User      *SessionUser
}

type HomeData struct {
	Page
	Boards      []database.Board
	Posts       []database.PostListItem
	ActiveBoard int
	Pagination  *Pagination
}

type PostData struct {
	Page
	Post      database.PostDetail
	Replies   []database.ReplyListItem
	CSRFToken string
}

type NewPostData struct {
	Page
	Boards    []database.Board
	CSRFToken string
}

type AuthData struct {
	Page
	Redirect          string
	CSRFToken         string
	AllowRegistration bool
}

type ProfileData struct {
	Page
	Profile database.User
	Posts   []database.PostListItem
	Replies []database.ProfileReply
}

type SearchData struct {
	Page
	Keyword    string
	Results    []database.PostListItem
	Total      int
	Pagination *Pagination
}

type ErrorData struct {
	Page
	Message string
}

type AdminUsersData struct {
	Page
	Users     []database.User
	CSRFToken string
}

type AdminBoardsData struct {
	Page
	Boards    []database.Board
	CSRFToken string
}

type AdminPostsData struct {
	Page
	Posts      []database.PostListItem
	CSRFToken  string
	Pagination *Pagination
}

type AdminPostEditData struct {
	Page
	Post      database.PostDetail
	Boards    []database.Board
	CSRFToken string
}

// SiteSettings mirrors the editable settings keys.
type SiteSettings struct {
	SiteTitle         string
	LogoURL           string
	Copyright         string
	AllowRegistration string
}

type AdminSettingsData struct {
	Page
	Settings  SiteSettings
	CSRFToken string
}
