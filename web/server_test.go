package web

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/leanbb/leanbb/internal/database"
	"github.com/leanbb/leanbb/internal/session"
	"github.com/leanbb/leanbb/internal/settings"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, database.Setup(db, string(hash)))

	server := New(db, settings.New(db), session.NewStore(), zaptest.NewLogger(t), 20)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return ts, client
}

func get(t *testing.T, client *http.Client, rawURL string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(rawURL, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

func csrfFrom(t *testing.T, body string) string {
	t.Helper()
	m := csrfPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "no csrf token in page")
	return m[1]
}

func register(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) *http.Response {
	t.Helper()
	_, body := get(t, client, ts.URL+"/auth")
	resp, _ := postForm(t, client, ts.URL+"/auth/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"action":     {"register"},
		"username":   {username},
		"password":   {password},
		"redirect":   {"/"},
	})
	return resp
}

func login(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) {
	t.Helper()
	_, body := get(t, client, ts.URL+"/auth")
	resp, _ := postForm(t, client, ts.URL+"/auth/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"action":     {"login"},
		"username":   {username},
		"password":   {password},
		"redirect":   {"/"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAnonymousNewPostRedirectsToLogin(t *testing.T) {
	ts, client := newTestServer(t)

	resp, _ := get(t, client, ts.URL+"/post/new")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth?redirect=%2Fpost%2Fnew", resp.Header.Get("Location"))
}

func TestRegisterPostReplySearchFlow(t *testing.T) {
	ts, client := newTestServer(t)

	resp := register(t, ts, client, "alice", "pw1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// the new-post form shows the seeded General board
	resp, body := get(t, client, ts.URL+"/post/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "General")

	resp, _ = postForm(t, client, ts.URL+"/post/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"board_id":   {"1"},
		"title":      {"Hello"},
		"content":    {"World"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/post/1", resp.Header.Get("Location"))

	resp, body = get(t, client, ts.URL+"/post/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "0 Replies")

	// reply and view again
	resp, _ = postForm(t, client, ts.URL+"/reply/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"post_id":    {"1"},
		"content":    {"Nice to meet you"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/post/1", resp.Header.Get("Location"))

	_, body = get(t, client, ts.URL+"/post/1")
	assert.Contains(t, body, "1 Replies")
	assert.Contains(t, body, "Nice to meet you")

	// search finds the post by content keyword
	resp, body = get(t, client, ts.URL+"/search?q=World")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "1 found")
	assert.Contains(t, body, `/post/1`)
	assert.Contains(t, body, "<mark>World</mark>")
}

func TestSearchWithoutKeywordShowsNoResults(t *testing.T) {
	ts, client := newTestServer(t)

	resp, body := get(t, client, ts.URL+"/search")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "found)")
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	ts, client := newTestServer(t)

	resp := register(t, ts, client, "bob", "pw1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// log out so the second attempt starts clean
	get(t, client, ts.URL+"/auth/logout")

	resp = register(t, ts, client, "bob", "pw2")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplyToMissingPostIs404(t *testing.T) {
	ts, client := newTestServer(t)

	resp := register(t, ts, client, "alice", "pw1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := get(t, client, ts.URL+"/post/new")
	resp, _ = postForm(t, client, ts.URL+"/reply/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"post_id":    {"999"},
		"content":    {"into the void"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCSRFMismatchRejectsAndInvalidates(t *testing.T) {
	ts, client := newTestServer(t)

	resp := register(t, ts, client, "alice", "pw1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := get(t, client, ts.URL+"/post/new")
	goodToken := csrfFrom(t, body)

	form := url.Values{
		"board_id": {"1"},
		"title":    {"Hello"},
		"content":  {"World"},
	}

	form.Set("csrf_token", "bogus")
	resp, _ = postForm(t, client, ts.URL+"/post/submit", form)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the mismatch invalidated the stored token, so the previously valid
	// one no longer passes either
	form.Set("csrf_token", goodToken)
	resp, _ = postForm(t, client, ts.URL+"/post/submit", form)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// a freshly rendered form carries a new working token
	_, body = get(t, client, ts.URL+"/post/new")
	freshToken := csrfFrom(t, body)
	assert.NotEqual(t, goodToken, freshToken)

	form.Set("csrf_token", freshToken)
	resp, _ = postForm(t, client, ts.URL+"/post/submit", form)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	ts, client := newTestServer(t)

	_, body := get(t, client, ts.URL+"/auth")
	resp, _ := postForm(t, client, ts.URL+"/auth/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"action":     {"login"},
		"username":   {"nobody"},
		"password":   {"pw"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, body = get(t, client, ts.URL+"/auth")
	resp, _ = postForm(t, client, ts.URL+"/auth/submit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"action":     {"login"},
		"username":   {"admin"},
		"password":   {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminPagesDeniedToNonAdmins(t *testing.T) {
	ts, client := newTestServer(t)

	// anonymous
	resp, _ := get(t, client, ts.URL+"/admin")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// regular user
	require.Equal(t, http.StatusSeeOther, register(t, ts, client, "alice", "pw1").StatusCode)
	resp, _ = get(t, client, ts.URL+"/admin")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminSelfProtection(t *testing.T) {
	ts, client := newTestServer(t)
	login(t, ts, client, "admin", "password")

	_, body := get(t, client, ts.URL+"/admin/users")
	token := csrfFrom(t, body)

	// seeded admin has id 1
	resp, _ := postForm(t, client, ts.URL+"/admin/users/toggle_admin", url.Values{
		"csrf_token": {token},
		"user_id":    {"1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// still an admin
	resp, _ = get(t, client, ts.URL+"/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = get(t, client, ts.URL+"/admin/users")
	resp, _ = postForm(t, client, ts.URL+"/admin/users/delete", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"user_id":    {"1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminBoardManagement(t *testing.T) {
	ts, client := newTestServer(t)
	login(t, ts, client, "admin", "password")

	_, body := get(t, client, ts.URL+"/admin/boards")
	resp, _ := postForm(t, client, ts.URL+"/admin/boards/add", url.Values{
		"csrf_token":  {csrfFrom(t, body)},
		"name":        {"Tech"},
		"description": {"Technology talk"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// duplicate name is a conflict
	_, body = get(t, client, ts.URL+"/admin/boards")
	resp, _ = postForm(t, client, ts.URL+"/admin/boards/add", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"name":       {"Tech"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = get(t, client, ts.URL+"/")
	assert.Contains(t, body, "Tech")
}

func TestRegistrationCanBeDisabled(t *testing.T) {
	ts, client := newTestServer(t)
	login(t, ts, client, "admin", "password")

	_, body := get(t, client, ts.URL+"/admin/settings")
	resp, _ := postForm(t, client, ts.URL+"/admin/settings/update", url.Values{
		"csrf_token":         {csrfFrom(t, body)},
		"site_title":         {"LeanBB"},
		"logo_url":           {""},
		"copyright_info":     {""},
		"allow_registration": {"0"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	get(t, client, ts.URL+"/auth/logout")

	resp = register(t, ts, client, "alice", "pw1")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProfilePages(t *testing.T) {
	ts, client := newTestServer(t)

	require.Equal(t, http.StatusSeeOther, register(t, ts, client, "alice", "pw1").StatusCode)

	resp, body := get(t, client, ts.URL+"/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Profile: alice")

	// admin was seeded with id 1
	resp, body = get(t, client, ts.URL+"/profile/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Profile: admin")

	resp, _ = get(t, client, ts.URL+"/profile/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownPathIs404(t *testing.T) {
	ts, client := newTestServer(t)

	resp, body := get(t, client, ts.URL+"/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page Not Found")
}

func TestWrongMethodIs405(t *testing.T) {
	ts, client := newTestServer(t)

	resp, _ := postForm(t, client, ts.URL+"/search", url.Values{})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPathNormalization(t *testing.T) {
	ts, client := newTestServer(t)

	resp, _ := get(t, client, ts.URL+"/Search/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutDestroysSession(t *testing.T) {
	ts, client := newTestServer(t)

	require.Equal(t, http.StatusSeeOther, register(t, ts, client, "alice", "pw1").StatusCode)

	resp, body := get(t, client, ts.URL+"/auth/logout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You have successfully logged out")

	// back to anonymous: new-post now bounces to login
	resp, _ = get(t, client, ts.URL+"/post/new")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/auth?redirect="))
}

func TestHomePagination(t *testing.T) {
	ts, client := newTestServer(t)

	require.Equal(t, http.StatusSeeOther, register(t, ts, client, "alice", "pw1").StatusCode)

	_, body := get(t, client, ts.URL+"/post/new")
	token := csrfFrom(t, body)
	for i := 0; i < 25; i++ {
		resp, _ := postForm(t, client, ts.URL+"/post/submit", url.Values{
			"csrf_token": {token},
			"board_id":   {"1"},
			"title":      {"post"},
			"content":    {"content"},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	// 25 posts at 20 per page yields two pages
	resp, body := get(t, client, ts.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/?page=2"`)

	// a page beyond the range still renders
	resp, body = get(t, client, ts.URL+"/?page=9")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This board has no posts yet")
}
