// Package seed writes demo and generated content into the store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"devblog/internal/clock"
	"devblog/internal/models"
	"devblog/internal/observability"
	"devblog/internal/service"
	"devblog/internal/storage"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

const day = 24 * time.Hour

type demoUser struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type demoComment struct {
	Author     string  `yaml:"author"`
	AuthorName string  `yaml:"authorName"`
	Content    string  `yaml:"content"`
	DaysAgo    float64 `yaml:"daysAgo"`
}

type demoPost struct {
	Slug           string        `yaml:"slug"`
	Title          string        `yaml:"title"`
	Category       string        `yaml:"category"`
	Tags           []string      `yaml:"tags"`
	Excerpt        string        `yaml:"excerpt"`
	Content        string        `yaml:"content"`
	CoverImage     string        `yaml:"coverImage"`
	Author         string        `yaml:"author"`
	CreatedDaysAgo float64       `yaml:"createdDaysAgo"`
	UpdatedDaysAgo float64       `yaml:"updatedDaysAgo"`
	Published      bool          `yaml:"published"`
	Likes          int           `yaml:"likes"`
	BookmarkedBy   []string      `yaml:"bookmarkedBy"`
	Comments       []demoComment `yaml:"comments"`
}

type demoData struct {
	Users []demoUser `yaml:"users"`
	Posts []demoPost `yaml:"posts"`
}

// Demo writes the demo users and posts and signs everyone out. Unless force
// is set it does nothing when the store already holds users and posts.
func Demo(ctx context.Context, store *storage.Store, clk clock.Clock, force bool) error {
	if !force && len(store.Users(ctx)) > 0 && len(store.Posts(ctx)) > 0 {
		return nil
	}

	users, posts, err := BuildDemo(clk.NowUtc())
	if err != nil {
		return err
	}

	store.SaveUsers(ctx, users)
	store.SavePosts(ctx, posts)
	store.SetSession(ctx, nil)

	observability.GlobalLogger.InfoContext(ctx, "demo data seeded",
		"users", len(users),
		"posts", len(posts),
		"forced", force,
	)
	return nil
}

// BuildDemo decodes the embedded demo content relative to now.
func BuildDemo(now time.Time) ([]models.User, []models.Post, error) {
	var data demoData
	if err := yaml.Unmarshal(demoYAML, &data); err != nil {
		return nil, nil, fmt.Errorf("decode demo.yaml: %w", err)
	}

	ago := func(days float64) time.Time {
		return now.Add(-time.Duration(days * float64(day)))
	}

	byKey := make(map[string]models.User, len(data.Users))
	users := make([]models.User, 0, len(data.Users))
	for _, u := range data.Users {
		user := models.User{
			ID:           "user-" + storage.NewID(),
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: service.HashPassword(u.Password, u.Email),
			CreatedAt:    now,
		}
		byKey[u.Key] = user
		users = append(users, user)
	}

	posts := make([]models.Post, 0, len(data.Posts))
	for _, p := range data.Posts {
		author, ok := byKey[p.Author]
		if !ok {
			return nil, nil, fmt.Errorf("demo post %q: unknown author %q", p.Slug, p.Author)
		}

		bookmarks := []string{}
		for _, key := range p.BookmarkedBy {
			u, ok := byKey[key]
			if !ok {
				return nil, nil, fmt.Errorf("demo post %q: unknown bookmark user %q", p.Slug, key)
			}
			bookmarks = append(bookmarks, u.ID)
		}

		comments := make([]models.Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			comment := models.Comment{
				ID:         "c-" + storage.NewID(),
				AuthorName: c.AuthorName,
				Content:    c.Content,
				CreatedAt:  ago(c.DaysAgo),
			}
			if c.Author != "" {
				u, ok := byKey[c.Author]
				if !ok {
					return nil, nil, fmt.Errorf("demo post %q: unknown comment author %q", p.Slug, c.Author)
				}
				id := u.ID
				comment.AuthorID = &id
			}
			comments = append(comments, comment)
		}

		posts = append(posts, models.Post{
			ID:         "post-" + storage.NewID(),
			Slug:       p.Slug,
			Title:      p.Title,
			Category:   p.Category,
			Tags:       p.Tags,
			Excerpt:    p.Excerpt,
			Content:    p.Content,
			CoverImage: p.CoverImage,
			Author:     models.Author{ID: author.ID, Name: author.Name},
			CreatedAt:  ago(p.CreatedDaysAgo),
			UpdatedAt:  ago(p.UpdatedDaysAgo),
			Published:  p.Published,
			Likes:      p.Likes,
			Bookmarks:  bookmarks,
			Comments:   comments,
		})
	}

	return users, posts, nil
}
