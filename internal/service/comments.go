package service

import (
	"context"
	"slices"
	"strings"

	"devblog/internal/models"
	"devblog/internal/observability"
	"devblog/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// CommentInput carries a new comment. A nil or blank AuthorID makes the
// comment anonymous, and anonymous comments can never be deleted.
type CommentInput struct {
	AuthorName string
	AuthorID   *string
	Content    string
}

func (s *PostService) AddComment(ctx context.Context, postID string, in CommentInput) (*models.Comment, error) {
	span, ctx := observability.NewSpan(ctx, "comments.add", attribute.String("post.id", postID))
	defer span.End()

	text := strings.TrimSpace(in.Content)
	if text == "" {
		return nil, models.NewValidationError("Empty comment")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.store.Posts(ctx)
	idx := slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == postID })
	if idx == -1 {
		err := models.NewNotFoundError("Post", postID)
		span.SetError(err)
		return nil, err
	}

	var authorID *string
	if in.AuthorID != nil {
		if id := strings.TrimSpace(*in.AuthorID); id != "" {
			authorID = &id
		}
	}

	comment := models.Comment{
		ID:         "c-" + storage.NewID(),
		AuthorName: strings.TrimSpace(in.AuthorName),
		AuthorID:   authorID,
		Content:    text,
		CreatedAt:  s.clock.NowUtc(),
	}
	posts[idx].Comments = append(posts[idx].Comments, comment)
	s.store.SavePosts(ctx, posts)
	return &comment, nil
}

// DeleteComment removes a comment owned by requesterID. Missing posts,
// missing comments, anonymous comments and foreign comments all report false.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, requesterID string) bool {
	span, ctx := observability.NewSpan(ctx, "comments.delete", attribute.String("post.id", postID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.store.Posts(ctx)
	p := findPost(posts, func(p *models.Post) bool { return p.ID == postID })
	if p == nil {
		return false
	}
	idx := slices.IndexFunc(p.Comments, func(c models.Comment) bool { return c.ID == commentID })
	if idx == -1 {
		return false
	}
	c := p.Comments[idx]
	if c.IsAnonymous() || !Authorize(requesterID, *c.AuthorID) {
		return false
	}

	p.Comments = slices.Delete(p.Comments, idx, idx+1)
	s.store.SavePosts(ctx, posts)
	return true
}

// SortedComments returns a copy of the post's comments, oldest first.
func SortedComments(post *models.Post) []models.Comment {
	out := slices.Clone(post.Comments)
	slices.SortStableFunc(out, func(a, b models.Comment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}
