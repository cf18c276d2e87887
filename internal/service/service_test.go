package service

import (
	"context"
	"testing"
	"time"

	"devblog/internal/clock"
	"devblog/internal/kv"
	"devblog/internal/likes"
	"devblog/internal/models"
	"devblog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store   *storage.Store
	medium  *kv.Memory
	tracker *likes.Memory
	clock   *clock.StubClock
	auth    *AuthService
	posts   *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	medium := kv.NewMemory()
	tracker := likes.NewMemory()
	store := storage.New(medium, "devblog_v1_", tracker)
	clk := clock.NewStubClock(testNow)
	auth := NewAuthService(store, clk)
	return &fixture{
		store:   store,
		medium:  medium,
		tracker: tracker,
		clock:   clk,
		auth:    auth,
		posts:   NewPostService(store, tracker, auth, clk),
	}
}

// signIn registers a user and leaves them signed in.
func (f *fixture) signIn(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := f.auth.Signup(context.Background(), SignupInput{Name: name, Email: email, Password: "pw-" + name})
	require.NoError(t, err)
	return user
}

func (f *fixture) createPost(t *testing.T, in SavePostInput) *models.Post {
	t.Helper()
	post, err := f.posts.SavePost(context.Background(), in)
	require.NoError(t, err)
	return post
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func strPtr(s string) *string { return &s }
