package models

import (
	"slices"
	"time"
)

// Author is a point-in-time snapshot of the user who created a post.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Post represents a blog post. Comments are embedded, so deleting a post
// deletes its comments with it.
type Post struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	CoverImage string    `json:"coverImage"`
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Published  bool      `json:"published"`
	Likes      int       `json:"likes"`
	Bookmarks  []string  `json:"bookmarks"`
	Comments   []Comment `json:"comments"`
}

// Comment is embedded in its post. A nil AuthorID marks an anonymous comment.
type Comment struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	AuthorID   *string   `json:"authorId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasTag reports whether the post carries tag (exact match).
func (p *Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// IsBookmarkedBy reports whether userID is in the post's bookmark set.
func (p *Post) IsBookmarkedBy(userID string) bool {
	return slices.Contains(p.Bookmarks, userID)
}

// IsAnonymous reports whether the comment has no owning user.
func (c *Comment) IsAnonymous() bool {
	return c.AuthorID == nil
}
