package views

import (
	"net/url"
	"strconv"
)

type PageLink struct {
	Number int
	URL    string
	Active bool
}

// Pagination holds one numbered link per page plus previous/next links.
type Pagination struct {
	Links   []PageLink
	HasPrev bool
	PrevURL string
	HasNext bool
	NextURL string
}

// Paginate builds the pagination model for totalItems split into pages of
// perPage. Existing query parameters are preserved in every link. The
// number of links is always ceil(totalItems/perPage); templates hide the
// nav when there is at most one page.
func Paginate(totalItems, perPage, current int, baseURL string, query url.Values) *Pagination {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := (totalItems + perPage - 1) / perPage

	link := func(page int) string {
		params := url.Values{}
		for key, vals := range query {
			params[key] = vals
		}
		params.Set("page", strconv.Itoa(page))
		return baseURL + "?" + params.Encode()
	}

	p := &Pagination{}
	for i := 1; i <= totalPages; i++ {
		p.Links = append(p.Links, PageLink{Number: i, URL: link(i), Active: i == current})
	}
	if current > 1 {
		p.HasPrev = true
		p.PrevURL = link(current - 1)
	}
	if current < totalPages {
		p.HasNext = true
		p.NextURL = link(current + 1)
	}
	return p
}
