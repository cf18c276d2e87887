package seed

import (
	"context"
	"testing"
	"time"

	"devblog/internal/clock"
	"devblog/internal/kv"
	"devblog/internal/likes"
	"devblog/internal/models"
	"devblog/internal/service"
	"devblog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func newStore() *storage.Store {
	return storage.New(kv.NewMemory(), "devblog_v1_", likes.NewMemory())
}

func TestBuildDemo(t *testing.T) {
	users, posts, err := BuildDemo(now)
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "Demo Author", users[0].Name)
	assert.Equal(t, "author@example.com", users[0].Email)
	assert.Equal(t, service.HashPassword("password123", "author@example.com"), users[0].PasswordHash)
	assert.Equal(t, "reader@example.com", users[1].Email)

	require.Len(t, posts, 3)
	slugs := []string{posts[0].Slug, posts[1].Slug, posts[2].Slug}
	assert.Equal(t, []string{
		"getting-started-with-vanilla-js",
		"css-tricks-for-clean-layouts",
		"writing-accessible-frontend",
	}, slugs)

	first := posts[0]
	assert.Equal(t, users[0].ID, first.Author.ID)
	assert.Equal(t, []string{"javascript", "frontend", "basics"}, first.Tags)
	assert.Equal(t, []string{users[1].ID}, first.Bookmarks)
	assert.Equal(t, 4, first.Likes)
	assert.True(t, first.CreatedAt.Equal(now.Add(-6*24*time.Hour)))
	assert.True(t, first.UpdatedAt.Equal(now.Add(-5*24*time.Hour)))

	require.Len(t, first.Comments, 2)
	require.NotNil(t, first.Comments[0].AuthorID)
	assert.Equal(t, users[1].ID, *first.Comments[0].AuthorID)
	assert.Nil(t, first.Comments[1].AuthorID)
	assert.True(t, first.Comments[0].CreatedAt.Equal(now.Add(-132*time.Hour)))

	assert.Equal(t, users[1].ID, posts[2].Author.ID)
	assert.NotNil(t, posts[1].Bookmarks)
	for _, p := range posts {
		assert.True(t, p.Published)
		assert.NotContains(t, p.Content, "\n")
	}
}

func TestDemo(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	clk := clock.NewStubClock(now)

	store.SetSession(ctx, &models.Session{UserID: "user-x"})
	require.NoError(t, Demo(ctx, store, clk, false))

	users := store.Users(ctx)
	require.Len(t, users, 2)
	assert.Len(t, store.Posts(ctx), 3)
	assert.Nil(t, store.Session(ctx))

	t.Run("no-op when populated", func(t *testing.T) {
		require.NoError(t, Demo(ctx, store, clk, false))
		assert.Equal(t, users[0].ID, store.Users(ctx)[0].ID)
	})

	t.Run("force rewrites", func(t *testing.T) {
		require.NoError(t, Demo(ctx, store, clk, true))
		assert.NotEqual(t, users[0].ID, store.Users(ctx)[0].ID)
		assert.Len(t, store.Posts(ctx), 3)
	})

	t.Run("seeds when only posts are missing", func(t *testing.T) {
		store.SavePosts(ctx, nil)
		require.NoError(t, Demo(ctx, store, clk, false))
		assert.Len(t, store.Posts(ctx), 3)
	})
}

func TestDemo_AccountsCanSignIn(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	clk := clock.NewStubClock(now)
	require.NoError(t, Demo(ctx, store, clk, false))

	auth := service.NewAuthService(store, clk)
	user, err := auth.Login(ctx, "author@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Demo Author", user.Name)

	_, err = auth.Login(ctx, "reader@example.com", "reader123")
	require.NoError(t, err)
}

func TestStoreResetAllReseeds(t *testing.T) {
	ctx := context.Background()
	tracker := likes.NewMemory()
	store := storage.New(kv.NewMemory(), "devblog_v1_", tracker)
	clk := clock.NewStubClock(now)
	store.SetReseeder(func(ctx context.Context, s *storage.Store, force bool) {
		require.NoError(t, Demo(ctx, s, clk, force))
	})

	store.SavePosts(ctx, []models.Post{{ID: "post-mine", Slug: "mine"}})
	tracker.Add(ctx, "post-mine")

	store.ResetAll(ctx)

	posts := store.Posts(ctx)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.NotEqual(t, "mine", p.Slug)
	}
	assert.Equal(t, 0, tracker.Len())
}

func TestFactory(t *testing.T) {
	clk := clock.NewStubClock(now)
	f := NewFactory(42, clk)
	f.MaxDays = 30

	author := f.User()
	assert.Regexp(t, `^user-[0-9a-f]{32}$`, author.ID)
	assert.NotEmpty(t, author.Name)
	assert.Equal(t, service.HashPassword(DefaultPassword, author.Email), author.PasswordHash)

	posts := f.Posts(25, []models.User{author})
	require.Len(t, posts, 25)
	for _, p := range posts {
		assert.NotEmpty(t, p.Title)
		assert.Equal(t, author.ID, p.Author.ID)
		assert.False(t, p.CreatedAt.After(now))
		assert.True(t, p.CreatedAt.After(now.Add(-31*24*time.Hour)))
		assert.LessOrEqual(t, len([]rune(p.Excerpt)), service.ExcerptLength)
		assert.GreaterOrEqual(t, p.Likes, 0)
		assert.LessOrEqual(t, len(p.Tags), 3)
	}

	custom := f.Post(author, func(p *models.Post) { p.Category = "Pinned" })
	assert.Equal(t, "Pinned", custom.Category)
}

func TestBulk(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	clk := clock.NewStubClock(now)
	require.NoError(t, Demo(ctx, store, clk, false))

	f := NewFactory(7, clk)
	require.NoError(t, Bulk(ctx, store, f, 3, 40))

	assert.Len(t, store.Users(ctx), 5)
	posts := store.Posts(ctx)
	require.Len(t, posts, 43)

	seen := make(map[string]struct{})
	for _, p := range posts {
		_, dup := seen[p.Slug]
		require.False(t, dup, "duplicate slug %s", p.Slug)
		seen[p.Slug] = struct{}{}
	}

	t.Run("reuses existing authors", func(t *testing.T) {
		require.NoError(t, Bulk(ctx, store, f, 0, 2))
		assert.Len(t, store.Users(ctx), 5)
		assert.Len(t, store.Posts(ctx), 45)
	})

	t.Run("needs an author", func(t *testing.T) {
		assert.Error(t, Bulk(ctx, newStore(), f, 0, 1))
	})
}
