// Package views renders the site's HTML pages from explicit view models.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"reltime":  RelativeTime,
	"nl2br":    Nl2br,
	"truncate": Truncate,
	"excerpt":  Excerpt,
}

var pages = map[string]*template.Template{}

func init() {
	names := []string{
		"home", "post", "post_new", "auth", "logout", "profile", "search",
		"error", "admin_dashboard", "admin_users", "admin_boards",
		"admin_posts", "admin_post_edit", "admin_settings",
	}
	for _, name := range names {
		pages[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(files, "templates/layout.html", "templates/"+name+".html"))
	}
}

// Render writes the named page to w using the given view model.
func Render(w io.Writer, name string, data any) error {
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
