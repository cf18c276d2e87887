package bootstrap

import (
	"context"
	"testing"
	"time"

	"devblog/internal/clock"
	"devblog/internal/config"
	"devblog/internal/kv"
	"devblog/internal/likes"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		StoreDriver:     config.DriverMemory,
		KeyPrefix:       "devblog_v1_",
		LikesTTLMinutes: 60,
		LogLevel:        "error",
		LogFormat:       "text",
		SeedOnStart:     true,
	}
}

func TestInitRuntime_MemorySeedsDemo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	rt, err := InitRuntime(ctx, testConfig(), Options{Clock: clock.NewStubClock(now)})
	require.NoError(t, err)
	defer rt.Close(ctx)

	assert.IsType(t, &kv.Memory{}, rt.Medium)
	assert.IsType(t, &likes.Memory{}, rt.Likes)
	assert.Len(t, rt.Posts.GetPublishedPosts(ctx), 3)
	assert.Nil(t, rt.Auth.GetCurrentUser(ctx))

	_, err = rt.Auth.Login(ctx, "author@example.com", "password123")
	require.NoError(t, err)

	first := rt.Posts.GetPostBySlug(ctx, "css-tricks-for-clean-layouts")
	require.NotNil(t, first)
	res, err := rt.Posts.ToggleLike(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	rt.Store.ResetAll(ctx)
	assert.Nil(t, rt.Auth.GetCurrentUser(ctx))
	assert.Len(t, rt.Posts.GetAllPosts(ctx), 3)
	assert.False(t, rt.Posts.IsLiked(ctx, first.ID))
}

func TestInitRuntime_NoSeed(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SeedOnStart = false

	rt, err := InitRuntime(ctx, cfg, Options{})
	require.NoError(t, err)
	defer rt.Close(ctx)

	assert.Empty(t, rt.Posts.GetAllPosts(ctx))
}

func TestInitRuntime_RedisStoreSharesClientWithTracker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.StoreDriver = config.DriverRedis
	cfg.RedisURL = mr.Addr()
	cfg.BrowsingSessionID = "tab-1"

	rt, err := InitRuntime(ctx, cfg, Options{})
	require.NoError(t, err)

	assert.IsType(t, &kv.Redis{}, rt.Medium)
	assert.IsType(t, &likes.Redis{}, rt.Likes)
	assert.False(t, rt.ownsRedisClient)
	assert.True(t, mr.Exists("devblog_v1_posts"))

	post := rt.Posts.GetPostBySlug(ctx, "writing-accessible-frontend")
	require.NotNil(t, post)
	_, err = rt.Posts.ToggleLike(ctx, post.ID)
	require.NoError(t, err)
	require.NoError(t, rt.Close(ctx))

	// A second process with the same browsing session sees the like.
	again, err := InitRuntime(ctx, cfg, Options{})
	require.NoError(t, err)
	defer again.Close(ctx)
	assert.True(t, again.Posts.IsLiked(ctx, post.ID))
	assert.Equal(t, 3, again.Posts.GetPostByID(ctx, post.ID).Likes)
}

func TestInitRuntime_MemoryStoreWithRedisLikes(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.BrowsingSessionID = "tab-2"

	rt, err := InitRuntime(ctx, cfg, Options{})
	require.NoError(t, err)
	defer rt.Close(ctx)

	assert.IsType(t, &likes.Redis{}, rt.Likes)
	assert.True(t, rt.ownsRedisClient)
}

func TestInitRuntime_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.StoreDriver = config.DriverRedis
	cfg.RedisURL = addr

	_, err := InitRuntime(context.Background(), cfg, Options{})
	assert.Error(t, err)
}
