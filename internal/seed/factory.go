package seed

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"devblog/internal/clock"
	"devblog/internal/content"
	"devblog/internal/models"
	"devblog/internal/observability"
	"devblog/internal/service"
	"devblog/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

var (
	categories = []string{"JavaScript", "CSS", "Accessibility", "Go", "DevOps", "Testing"}
	tagPool    = []string{"javascript", "frontend", "css", "layout", "a11y", "ux", "go", "backend", "testing", "performance", "tooling", "basics"}
)

// Factory builds random users and posts. It never touches the store itself.
type Factory struct {
	faker   *gofakeit.Faker
	clock   clock.Clock
	MaxDays int
}

// NewFactory creates a Factory. A zero seed picks a random one; any other
// seed makes the generated content reproducible.
func NewFactory(seed int64, clk clock.Clock) *Factory {
	return &Factory{
		faker:   gofakeit.New(seed),
		clock:   clk,
		MaxDays: 90,
	}
}

// User builds a user whose password is DefaultPassword.
func (f *Factory) User(overrides ...func(*models.User)) models.User {
	name := f.faker.Name()
	email := strings.ToLower(fmt.Sprintf("%s.%d@%s", f.faker.Username(), f.faker.Number(100, 999), f.faker.DomainName()))
	user := models.User{
		ID:           "user-" + storage.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: service.HashPassword(DefaultPassword, email),
		CreatedAt:    f.clock.NowUtc(),
	}
	for _, override := range overrides {
		override(&user)
	}
	return user
}

// Post builds a post by author with a creation time spread over MaxDays.
func (f *Factory) Post(author models.User, overrides ...func(*models.Post)) models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), ".")
	paragraphs := make([]string, f.faker.Number(1, 4))
	for i := range paragraphs {
		paragraphs[i] = "<p>" + f.faker.Paragraph(1, f.faker.Number(2, 5), 12, " ") + "</p>"
	}
	body := strings.Join(paragraphs, "")

	maxDays := max(1, f.MaxDays)
	created := f.clock.NowUtc().
		Add(-time.Duration(f.faker.Number(0, maxDays-1)) * 24 * time.Hour).
		Add(-time.Duration(f.faker.Number(0, 24*60-1)) * time.Minute)

	tags := make([]string, 0, 3)
	for range f.faker.Number(0, 3) {
		t := f.faker.RandomString(tagPool)
		if !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}

	post := models.Post{
		ID:         "post-" + storage.NewID(),
		Slug:       service.Slugify(title),
		Title:      title,
		Category:   f.faker.RandomString(categories),
		Tags:       tags,
		Content:    body,
		CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/1400/700", f.faker.UUID()),
		Author:     models.Author{ID: author.ID, Name: author.Name},
		CreatedAt:  created,
		UpdatedAt:  created,
		Published:  f.faker.Number(1, 10) > 2,
		Likes:      f.faker.Number(0, 40),
		Bookmarks:  []string{},
		Comments:   []models.Comment{},
	}
	post.Excerpt = content.Excerpt(post.Content, service.ExcerptLength)

	for _, override := range overrides {
		override(&post)
	}
	return post
}

// Posts builds n posts, cycling through authors.
func (f *Factory) Posts(n int, authors []models.User) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := range n {
		posts = append(posts, f.Post(authors[i%len(authors)]))
	}
	return posts
}

// Bulk appends numUsers generated users and numPosts generated posts to the
// store, keeping slugs unique against what is already stored.
func Bulk(ctx context.Context, store *storage.Store, f *Factory, numUsers, numPosts int) error {
	users := store.Users(ctx)
	fresh := make([]models.User, 0, max(0, numUsers))
	for range numUsers {
		fresh = append(fresh, f.User())
	}
	users = append(users, fresh...)

	authors := fresh
	if len(authors) == 0 {
		authors = users
	}
	if len(authors) == 0 && numPosts > 0 {
		return fmt.Errorf("seed: %d posts need at least one user", numPosts)
	}

	posts := store.Posts(ctx)
	now := f.clock.NowUtc()
	for _, p := range f.Posts(numPosts, authors) {
		base := p.Slug
		if base == "" {
			base = "post"
		}
		p.Slug = service.UniqueSlug(base, posts, now)
		posts = append(posts, p)
	}

	store.SaveUsers(ctx, users)
	store.SavePosts(ctx, posts)

	observability.GlobalLogger.InfoContext(ctx, "bulk data seeded",
		"users", numUsers,
		"posts", numPosts,
	)
	return nil
}
