package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"devblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_AddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedPost(t, f, models.Post{ID: "post-1", Comments: []models.Comment{}})

	t.Run("trims fields", func(t *testing.T) {
		c, err := f.posts.AddComment(ctx, "post-1", CommentInput{
			AuthorName: "  Ann ",
			AuthorID:   strPtr("user-1"),
			Content:    "  Nice post!  ",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(c.ID, "c-"))
		assert.Equal(t, "Ann", c.AuthorName)
		require.NotNil(t, c.AuthorID)
		assert.Equal(t, "user-1", *c.AuthorID)
		assert.Equal(t, "Nice post!", c.Content)
		assert.True(t, c.CreatedAt.Equal(testNow))
	})

	t.Run("blank author id is anonymous", func(t *testing.T) {
		c, err := f.posts.AddComment(ctx, "post-1", CommentInput{AuthorID: strPtr("  "), Content: "hi"})
		require.NoError(t, err)
		assert.Nil(t, c.AuthorID)
		assert.Equal(t, "", c.AuthorName)
		assert.True(t, c.IsAnonymous())
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := f.posts.AddComment(ctx, "post-1", CommentInput{Content: " \n\t "})
		assertCode(t, err, models.CodeValidation)
		assert.EqualError(t, err, "Empty comment")
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.posts.AddComment(ctx, "post-missing", CommentInput{Content: "hi"})
		assertCode(t, err, models.CodeNotFound)
	})

	assert.Len(t, f.posts.GetPostByID(ctx, "post-1").Comments, 2)
}

func TestPostService_DeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedPost(t, f, models.Post{ID: "post-1"})

	owned, err := f.posts.AddComment(ctx, "post-1", CommentInput{AuthorName: "Ann", AuthorID: strPtr("user-1"), Content: "mine"})
	require.NoError(t, err)
	anon, err := f.posts.AddComment(ctx, "post-1", CommentInput{AuthorName: "Guest", Content: "anonymous"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		postID    string
		commentID string
		requester string
	}{
		{"anonymous comment, any user", "post-1", anon.ID, "user-1"},
		{"anonymous comment, empty requester", "post-1", anon.ID, ""},
		{"foreign requester", "post-1", owned.ID, "user-2"},
		{"empty requester", "post-1", owned.ID, ""},
		{"missing comment", "post-1", "c-missing", "user-1"},
		{"missing post", "post-missing", owned.ID, "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, f.posts.DeleteComment(ctx, tt.postID, tt.commentID, tt.requester))
		})
	}
	require.Len(t, f.posts.GetPostByID(ctx, "post-1").Comments, 2)

	assert.True(t, f.posts.DeleteComment(ctx, "post-1", owned.ID, "user-1"))
	comments := f.posts.GetPostByID(ctx, "post-1").Comments
	require.Len(t, comments, 1)
	assert.Equal(t, anon.ID, comments[0].ID)
}

func TestPostService_DeletePostRemovesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedPost(t, f, models.Post{ID: "post-1"})

	_, err := f.posts.AddComment(ctx, "post-1", CommentInput{Content: "gone with the post"})
	require.NoError(t, err)

	require.True(t, f.posts.DeletePost(ctx, "post-1"))
	assert.Empty(t, f.store.Posts(ctx))
}

func TestSortedComments(t *testing.T) {
	post := &models.Post{Comments: []models.Comment{
		{ID: "c-3", CreatedAt: testNow.Add(2 * time.Minute)},
		{ID: "c-1", CreatedAt: testNow},
		{ID: "c-2", CreatedAt: testNow.Add(time.Minute)},
	}}

	sorted := SortedComments(post)
	require.Len(t, sorted, 3)
	assert.Equal(t, "c-1", sorted[0].ID)
	assert.Equal(t, "c-2", sorted[1].ID)
	assert.Equal(t, "c-3", sorted[2].ID)
	assert.Equal(t, "c-3", post.Comments[0].ID, "input is not reordered")
}
