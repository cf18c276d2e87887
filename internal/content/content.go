// Package content holds the plain-text helpers used on post bodies.
package content

import (
	"math"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed behind EstimateReadTime.
const WordsPerMinute = 200

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`\s+`)
	scriptPattern = regexp.MustCompile(`(?i)<script[\s\S]*?>[\s\S]*?</script>`)
)

// StripHTML replaces every tag with a space, collapses whitespace and trims.
func StripHTML(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// StripScripts removes <script> elements together with their bodies.
func StripScripts(html string) string {
	return scriptPattern.ReplaceAllString(html, "")
}

// EstimateReadTime returns whole minutes to read html, never less than one.
func EstimateReadTime(html string) int {
	words := len(strings.Fields(StripHTML(html)))
	minutes := int(math.Round(float64(words) / WordsPerMinute))
	return max(1, minutes)
}

// Excerpt returns at most n runes of the plain text of html.
func Excerpt(html string, n int) string {
	text := []rune(StripHTML(html))
	if len(text) > n {
		text = text[:n]
	}
	return strings.TrimSpace(string(text))
}
