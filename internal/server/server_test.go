package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devblog/internal/bootstrap"
	"devblog/internal/clock"
	"devblog/internal/config"
	"devblog/internal/route"
	"devblog/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*Server, *bootstrap.Runtime) {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		Env:             "test",
		StoreDriver:     config.DriverMemory,
		KeyPrefix:       "devblog_v1_",
		LikesTTLMinutes: 60,
		LogLevel:        "error",
		LogFormat:       "text",
		SeedOnStart:     true,
	}
	clk := clock.NewStubClock(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Clock: clk})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	return New(rt.Posts, Options{ServiceName: "devblog", Version: "test"}), rt
}

func savePublished(title string) service.SavePostInput {
	return service.SavePostInput{Title: title, Content: "<p>Layout notes about css grid.</p>", Published: true}
}

func saveDraft(title string) service.SavePostInput {
	return service.SavePostInput{Title: title, Content: "<p>Not ready yet.</p>"}
}

func doGet(t *testing.T, s *Server, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestLivenessCheck(t *testing.T) {
	s, _ := setupServer(t)

	resp, body := doGet(t, s, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"up"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListPosts(t *testing.T) {
	s, _ := setupServer(t)

	tests := []struct {
		name      string
		target    string
		wantTotal int
		wantItems int
		wantPage  int
	}{
		{"all published", "/api/posts", 3, 3, 1},
		{"search", "/api/posts?search=CSS", 1, 1, 1},
		{"category", "/api/posts?cat=Accessibility", 1, 1, 1},
		{"garbage page", "/api/posts?page=abc", 3, 3, 1},
		{"page past the end", "/api/posts?page=9", 3, 0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doGet(t, s, tt.target)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var page PostPage
			require.NoError(t, json.Unmarshal(body, &page))
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Empty(t, page.Next)
		})
	}
}

func TestListPosts_NextLink(t *testing.T) {
	s, rt := setupServer(t)
	ctx := context.Background()

	_, err := rt.Auth.Login(ctx, "author@example.com", "password123")
	require.NoError(t, err)
	for range 10 {
		_, err := rt.Posts.SavePost(ctx, savePublished("Extra CSS Notes"))
		require.NoError(t, err)
	}

	resp, body := doGet(t, s, "/api/posts?search=css")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page PostPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "#/home?page=2&search=css&sort=newest", page.Next)
	assert.Empty(t, page.Prev)
}

func TestGetPost(t *testing.T) {
	s, rt := setupServer(t)
	ctx := context.Background()

	resp, body := doGet(t, s, "/api/posts/writing-accessible-frontend")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"slug":"writing-accessible-frontend"`)

	resp, body = doGet(t, s, "/api/posts/no-such-post")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)

	_, err := rt.Auth.Login(ctx, "author@example.com", "password123")
	require.NoError(t, err)
	draft, err := rt.Posts.SavePost(ctx, saveDraft("Unfinished Thoughts"))
	require.NoError(t, err)

	resp, _ = doGet(t, s, "/api/posts/"+draft.Slug)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCategories(t *testing.T) {
	s, _ := setupServer(t)

	resp, body := doGet(t, s, "/api/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cats []string
	require.NoError(t, json.Unmarshal(body, &cats))
	assert.Contains(t, cats, "CSS")
}

func TestResolveRoute(t *testing.T) {
	s, _ := setupServer(t)

	resp, body := doGet(t, s, "/api/route?hash="+"%23%2Fpost%2Fhello-world")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view RouteView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, route.KindPost, view.Kind)
	assert.Equal(t, "hello-world", view.Param)
	assert.Equal(t, "#/post/hello-world", view.Canonical)

	resp, _ = doGet(t, s, "/api/route")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	doGet(t, s, "/api/posts")

	resp, body := doGet(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "devblog_store_operations_total")
}
