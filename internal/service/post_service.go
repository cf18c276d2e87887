package service

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"devblog/internal/clock"
	"devblog/internal/content"
	"devblog/internal/likes"
	"devblog/internal/models"
	"devblog/internal/observability"
	"devblog/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// ExcerptLength is the rune length of a generated excerpt.
const ExcerptLength = 140

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace   = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// PostService owns the post collection and everything embedded in it.
// Every mutation reads the whole collection, changes it and writes it back
// while holding mu.
type PostService struct {
	store *storage.Store
	likes likes.Tracker
	auth  *AuthService
	clock clock.Clock
	mu    sync.Mutex
}

// SavePostInput creates a post when ID is empty and updates it otherwise.
type SavePostInput struct {
	ID         string
	Title      string
	Category   string
	Tags       []string
	Excerpt    string
	Content    string
	CoverImage string
	Published  bool
}

func NewPostService(store *storage.Store, tracker likes.Tracker, auth *AuthService, clk clock.Clock) *PostService {
	return &PostService{
		store: store,
		likes: tracker,
		auth:  auth,
		clock: clk,
	}
}

// Slugify lowercases title, drops everything except letters, digits,
// whitespace and dashes, then joins words with single dashes. The result is
// empty when nothing survives.
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	return slugDashes.ReplaceAllString(s, "-")
}

// UniqueSlug returns base, or base-YYYYMMDD-n with the smallest n >= 1 that
// no post in posts already uses.
func UniqueSlug(base string, posts []models.Post, now time.Time) string {
	taken := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		taken[p.Slug] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	date := now.UTC().Format("20060102")
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%s-%d", base, date, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SavePost creates or updates a post and persists the collection.
func (s *PostService) SavePost(ctx context.Context, in SavePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "posts.save", attribute.String("post.id", in.ID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.save(ctx, in, nil)
	span.SetError(err)
	return post, err
}

// UpdatePostAs updates an existing post only when actorID owns it.
func (s *PostService) UpdatePostAs(ctx context.Context, actorID string, in SavePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "posts.update_as", attribute.String("post.id", in.ID))
	defer span.End()

	if in.ID == "" {
		return nil, models.NewValidationError("Post ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.save(ctx, in, func(p *models.Post) error {
		if !Authorize(actorID, p.Author.ID) {
			return models.NewAuthError("Not allowed to edit this post")
		}
		return nil
	})
	span.SetError(err)
	return post, err
}

func (s *PostService) save(ctx context.Context, in SavePostInput, check func(*models.Post) error) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}

	body := content.StripScripts(in.Content)
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = content.Excerpt(body, ExcerptLength)
	}
	tags := normalizeTags(in.Tags)
	now := s.clock.NowUtc()
	posts := s.store.Posts(ctx)

	if in.ID != "" {
		idx := slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == in.ID })
		if idx == -1 {
			return nil, models.NewNotFoundError("Post", in.ID)
		}
		p := &posts[idx]
		if check != nil {
			if err := check(p); err != nil {
				return nil, err
			}
		}
		p.Title = title
		p.Category = strings.TrimSpace(in.Category)
		p.Tags = tags
		p.Excerpt = excerpt
		p.Content = body
		p.CoverImage = strings.TrimSpace(in.CoverImage)
		p.Published = in.Published
		p.UpdatedAt = now

		s.store.SavePosts(ctx, posts)
		updated := *p
		return &updated, nil
	}

	current := s.auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, models.NewAuthError("Must be logged in")
	}

	base := Slugify(title)
	if base == "" {
		base = fmt.Sprintf("post-%d", now.UnixMilli())
	}

	post := models.Post{
		ID:         "post-" + storage.NewID(),
		Slug:       UniqueSlug(base, posts, now),
		Title:      title,
		Category:   strings.TrimSpace(in.Category),
		Tags:       tags,
		Excerpt:    excerpt,
		Content:    body,
		CoverImage: strings.TrimSpace(in.CoverImage),
		Author:     models.Author{ID: current.ID, Name: current.Name},
		CreatedAt:  now,
		UpdatedAt:  now,
		Published:  in.Published,
		Likes:      0,
		Bookmarks:  []string{},
		Comments:   []models.Comment{},
	}
	posts = append(posts, post)
	s.store.SavePosts(ctx, posts)
	return &post, nil
}

// DeletePost removes the post and its comments. It reports false when no
// such post exists.
func (s *PostService) DeletePost(ctx context.Context, id string) bool {
	return s.deleteWhere(ctx, id, nil)
}

// DeletePostAs removes the post only when actorID owns it.
func (s *PostService) DeletePostAs(ctx context.Context, actorID, id string) bool {
	return s.deleteWhere(ctx, id, func(p *models.Post) bool {
		return Authorize(actorID, p.Author.ID)
	})
}

func (s *PostService) deleteWhere(ctx context.Context, id string, allow func(*models.Post) bool) bool {
	span, ctx := observability.NewSpan(ctx, "posts.delete", attribute.String("post.id", id))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.store.Posts(ctx)
	idx := slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == id })
	if idx == -1 {
		return false
	}
	if allow != nil && !allow(&posts[idx]) {
		return false
	}
	posts = slices.Delete(posts, idx, idx+1)
	s.store.SavePosts(ctx, posts)
	return true
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string) *models.Post {
	return findPost(s.store.Posts(ctx), func(p *models.Post) bool { return p.Slug == slug })
}

func (s *PostService) GetPostByID(ctx context.Context, id string) *models.Post {
	return findPost(s.store.Posts(ctx), func(p *models.Post) bool { return p.ID == id })
}

func findPost(posts []models.Post, match func(*models.Post) bool) *models.Post {
	for i := range posts {
		if match(&posts[i]) {
			return &posts[i]
		}
	}
	return nil
}

// GetAllPosts returns every post, newest first. Equal timestamps keep
// their stored order.
func (s *PostService) GetAllPosts(ctx context.Context) []models.Post {
	posts := s.store.Posts(ctx)
	slices.SortStableFunc(posts, func(a, b models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return posts
}

// GetPublishedPosts returns published posts, newest first.
func (s *PostService) GetPublishedPosts(ctx context.Context) []models.Post {
	return slices.DeleteFunc(s.GetAllPosts(ctx), func(p models.Post) bool { return !p.Published })
}

// GetPostsByAuthor returns every post (drafts included) written by userID.
func (s *PostService) GetPostsByAuthor(ctx context.Context, userID string) []models.Post {
	return slices.DeleteFunc(s.GetAllPosts(ctx), func(p models.Post) bool { return p.Author.ID != userID })
}

// GetBookmarkedPosts returns the posts userID has bookmarked.
func (s *PostService) GetBookmarkedPosts(ctx context.Context, userID string) []models.Post {
	return slices.DeleteFunc(s.GetAllPosts(ctx), func(p models.Post) bool { return !p.IsBookmarkedBy(userID) })
}

// Categories lists the distinct non-empty categories of published posts in
// the order they first appear.
func (s *PostService) Categories(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.GetPublishedPosts(ctx) {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
