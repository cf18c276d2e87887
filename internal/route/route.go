// Package route parses hash-style route strings such as
// "#/home?search=css&page=2" into a path, its segments and query parameters,
// and maps parsed routes onto the application's views.
package route

import (
	"net/url"
	"slices"
	"strings"
)

// Descriptor is a parsed route. The parser is purely syntactic: unknown
// query keys are kept.
type Descriptor struct {
	Path     string
	Segments []string
	Query    map[string]string
}

// Parse splits raw into path and query. A leading '#' is ignored, an empty
// path becomes "/", and a run of leading slashes collapses to one. Query
// pairs are split on the first '='; keys and values are percent-decoded,
// and input that fails to decode is kept as written. Pairs with an empty key
// are skipped and later duplicates overwrite earlier ones.
func Parse(raw string) Descriptor {
	raw = strings.TrimPrefix(raw, "#")
	pathPart, queryPart, _ := strings.Cut(raw, "?")

	path := pathPart
	if path == "" {
		path = "/"
	}
	if trimmed := strings.TrimLeft(path, "/"); len(trimmed) < len(path) {
		path = "/" + trimmed
	}

	segments := make([]string, 0, strings.Count(path, "/")+1)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	query := make(map[string]string)
	if queryPart != "" {
		for _, pair := range strings.Split(queryPart, "&") {
			k, v, _ := strings.Cut(pair, "=")
			if k == "" {
				continue
			}
			query[decode(k)] = decode(v)
		}
	}

	return Descriptor{Path: path, Segments: segments, Query: query}
}

func decode(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// String renders d as "#<path>?k=v&..." with keys sorted. Parse(d.String())
// yields d again.
func (d Descriptor) String() string {
	path := d.Path
	if path == "" {
		path = "/"
	}
	if len(d.Query) == 0 {
		return "#" + path
	}

	keys := make([]string, 0, len(d.Query))
	for k := range d.Query {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString("#")
	b.WriteString(path)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(encode(k))
		b.WriteByte('=')
		b.WriteString(encode(d.Query[k]))
	}
	return b.String()
}

// Build returns a descriptor for path with the given query. Empty values
// are dropped.
func Build(path string, query map[string]string) Descriptor {
	d := Parse(path)
	for k, v := range query {
		if k != "" && v != "" {
			d.Query[k] = v
		}
	}
	return d
}
