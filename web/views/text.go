package views

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// RelativeTime formats t as a human readable distance from now,
// e.g. "just now", "3 days ago".
func RelativeTime(t time.Time) string {
	diff := time.Since(t)
	if diff < 0 {
		return "in the future"
	}
	secs := int64(diff.Seconds())
	if secs < 10 {
		return "just now"
	}

	intervals := []struct {
		secs  int64
		label string
	}{
		{31536000, "year"},
		{2592000, "month"},
		{86400, "day"},
		{3600, "hour"},
		{60, "minute"},
		{1, "second"},
	}
	for _, iv := range intervals {
		if secs >= iv.secs {
			n := secs / iv.secs
			if n > 1 {
				return fmt.Sprintf("%d %ss ago", n, iv.label)
			}
			return fmt.Sprintf("%d %s ago", n, iv.label)
		}
	}
	return ""
}

// Nl2br escapes s and converts newlines into <br /> tags.
func Nl2br(s string) template.HTML {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(strings.TrimSuffix(line, "\r"))
	}
	return template.HTML(strings.Join(lines, "<br />"))
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Excerpt builds a search result snippet: the first 200 characters of
// content, escaped, with case-insensitive occurrences of keyword wrapped
// in <mark> tags.
func Excerpt(content, keyword string) template.HTML {
	runes := []rune(content)
	truncated := len(runes) > 200
	if truncated {
		runes = runes[:200]
	}

	escaped := template.HTMLEscapeString(string(runes))
	marked := highlight(escaped, template.HTMLEscapeString(keyword))
	if truncated {
		marked += "..."
	}
	return template.HTML(marked)
}

func highlight(escaped, keyword string) string {
	if keyword == "" {
		return escaped
	}
	lower := strings.ToLower(escaped)
	kw := strings.ToLower(keyword)
	// lowercasing must not shift byte offsets for the match positions to
	// carry over to the original string
	if len(lower) != len(escaped) || len(kw) != len(keyword) {
		return escaped
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, kw)
		if i < 0 {
			b.WriteString(escaped)
			return b.String()
		}
		b.WriteString(escaped[:i])
		b.WriteString("<mark>")
		b.WriteString(escaped[i : i+len(kw)])
		b.WriteString("</mark>")
		escaped = escaped[i+len(kw):]
		lower = lower[i+len(kw):]
	}
}
