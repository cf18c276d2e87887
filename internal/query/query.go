// Package query filters, sorts and paginates a post collection according to
// a declarative Description, usually derived from a route's query string.
package query

import (
	"slices"
	"strconv"
	"strings"

	"devblog/internal/content"
	"devblog/internal/models"
)

// PageSize is the fixed number of posts per page.
const PageSize = 10

// Query keys understood by FromParams. Anything else is ignored.
const (
	KeySearch   = "search"
	KeyCategory = "cat"
	KeyTags     = "tags"
	KeySort     = "sort"
	KeyPage     = "page"
)

type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

// Description is a parsed query. Empty Search, Category and Tags disable
// their filter. Any Sort other than SortOldest sorts newest first.
type Description struct {
	Search   string
	Category string
	Tags     string
	Sort     Sort
	Page     int
}

// Result is one page of matches. Total and TotalPages describe the whole
// filtered set, not the page.
type Result struct {
	Items      []models.Post
	Page       int
	TotalPages int
	Total      int
}

// FromParams builds a Description from query parameters.
func FromParams(params map[string]string) Description {
	d := Description{
		Search:   params[KeySearch],
		Category: params[KeyCategory],
		Tags:     params[KeyTags],
		Sort:     SortNewest,
		Page:     parsePage(params[KeyPage]),
	}
	if s := Sort(params[KeySort]); s != "" {
		d.Sort = s
	}
	return d
}

// parsePage reads a leading integer the way browsers' parseInt does and
// clamps it to at least 1. Zero, garbage and overflow all become 1.
func parsePage(raw string) int {
	s := strings.TrimLeft(raw, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 1
	}
	return max(1, n)
}

// Params renders d back to query parameters, omitting empty filters.
func (d Description) Params() map[string]string {
	out := map[string]string{KeyPage: strconv.Itoa(max(1, d.Page))}
	if d.Search != "" {
		out[KeySearch] = d.Search
	}
	if d.Category != "" {
		out[KeyCategory] = d.Category
	}
	if d.Tags != "" {
		out[KeyTags] = d.Tags
	}
	if d.Sort != "" {
		out[KeySort] = string(d.Sort)
	}
	return out
}

// WithPage returns a copy of d pointing at page.
func (d Description) WithPage(page int) Description {
	d.Page = page
	return d
}

// Run applies search, category, tags, sort and pagination in that order.
// posts is not modified.
func Run(posts []models.Post, d Description) Result {
	list := make([]models.Post, 0, len(posts))

	needle := strings.ToLower(strings.TrimSpace(d.Search))
	tags := splitTags(d.Tags)

	for _, p := range posts {
		if needle != "" && !strings.Contains(haystack(&p), needle) {
			continue
		}
		if d.Category != "" && p.Category != d.Category {
			continue
		}
		if !hasAllTags(&p, tags) {
			continue
		}
		list = append(list, p)
	}

	if d.Sort == SortOldest {
		slices.SortStableFunc(list, func(a, b models.Post) int { return a.CreatedAt.Compare(b.CreatedAt) })
	} else {
		slices.SortStableFunc(list, func(a, b models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}

	page := max(1, d.Page)
	total := len(list)
	totalPages := max(1, (total+PageSize-1)/PageSize)

	items := []models.Post{}
	if page <= totalPages {
		start := (page - 1) * PageSize
		if start < total {
			items = list[start:min(start+PageSize, total)]
		}
	}

	return Result{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}

func haystack(p *models.Post) string {
	return strings.ToLower(p.Title + " " + content.StripHTML(p.Content) + " " + p.Excerpt)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func hasAllTags(p *models.Post, tags []string) bool {
	for _, t := range tags {
		if !p.HasTag(t) {
			return false
		}
	}
	return true
}
