package service

import (
	"context"
	"slices"

	"devblog/internal/models"
	"devblog/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

type LikeResult struct {
	Liked bool
	Likes int
}

type BookmarkResult struct {
	Bookmarked bool
}

// ToggleLike flips whether this browsing session likes the post and moves
// the post's counter with it. The counter never drops below zero.
func (s *PostService) ToggleLike(ctx context.Context, postID string) (LikeResult, error) {
	span, ctx := observability.NewSpan(ctx, "posts.toggle_like", attribute.String("post.id", postID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.store.Posts(ctx)
	p := findPost(posts, func(p *models.Post) bool { return p.ID == postID })
	if p == nil {
		err := models.NewNotFoundError("Post", postID)
		span.SetError(err)
		return LikeResult{}, err
	}

	var res LikeResult
	if s.likes.Has(ctx, postID) {
		p.Likes = max(0, p.Likes-1)
		s.likes.Remove(ctx, postID)
		res = LikeResult{Liked: false, Likes: p.Likes}
	} else {
		p.Likes = max(0, p.Likes) + 1
		s.likes.Add(ctx, postID)
		res = LikeResult{Liked: true, Likes: p.Likes}
	}
	s.store.SavePosts(ctx, posts)

	observability.RecordToggle("like", res.Liked)
	return res, nil
}

// IsLiked reports whether this browsing session has liked the post.
func (s *PostService) IsLiked(ctx context.Context, postID string) bool {
	return s.likes.Has(ctx, postID)
}

// ToggleBookmark adds or removes userID from the post's bookmark set.
func (s *PostService) ToggleBookmark(ctx context.Context, postID, userID string) (BookmarkResult, error) {
	span, ctx := observability.NewSpan(ctx, "posts.toggle_bookmark", attribute.String("post.id", postID))
	defer span.End()

	if userID == "" {
		return BookmarkResult{}, models.NewAuthError("Must be logged in")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.store.Posts(ctx)
	p := findPost(posts, func(p *models.Post) bool { return p.ID == postID })
	if p == nil {
		err := models.NewNotFoundError("Post", postID)
		span.SetError(err)
		return BookmarkResult{}, err
	}

	var res BookmarkResult
	if p.IsBookmarkedBy(userID) {
		p.Bookmarks = slices.DeleteFunc(p.Bookmarks, func(id string) bool { return id == userID })
	} else {
		p.Bookmarks = append(p.Bookmarks, userID)
		res.Bookmarked = true
	}
	s.store.SavePosts(ctx, posts)

	observability.RecordToggle("bookmark", res.Bookmarked)
	return res, nil
}
