package server

import (
	"errors"
	"log/slog"
	"time"

	"devblog/internal/models"
	"devblog/internal/observability"
	"devblog/internal/query"
	"devblog/internal/route"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// PostPage is one page of the home listing.
type PostPage struct {
	Items      []models.Post `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
	Next       string        `json:"next,omitempty"`
	Prev       string        `json:"prev,omitempty"`
}

// RouteView is a parsed and classified route descriptor.
type RouteView struct {
	Path      string            `json:"path"`
	Query     map[string]string `json:"query"`
	Kind      route.Kind        `json:"kind"`
	Param     string            `json:"param,omitempty"`
	Canonical string            `json:"canonical"`
}

func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeAuth:
		return fiber.StatusUnauthorized
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondWithError(c *fiber.Ctx, err error) error {
	response := ErrorResponse{Error: err.Error()}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{Error: appErr.Message, Code: appErr.Code}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	}
	return c.Status(statusFor(err)).JSON(response)
}

// LivenessCheck handles GET /health
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "up",
		"service": s.opts.ServiceName,
		"version": s.opts.Version,
		"time":    time.Now().UTC(),
	})
}

// ListPosts handles GET /api/posts?search=&cat=&tags=&sort=&page=
func (s *Server) ListPosts(c *fiber.Ctx) error {
	desc := query.FromParams(c.Queries())
	res := query.Run(s.posts.GetPublishedPosts(c.UserContext()), desc)

	page := PostPage{
		Items:      res.Items,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Total:      res.Total,
	}
	if res.Page < res.TotalPages {
		page.Next = route.Build("/home", desc.WithPage(res.Page+1).Params()).String()
	}
	if res.Page > 1 {
		page.Prev = route.Build("/home", desc.WithPage(res.Page-1).Params()).String()
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:slug. Drafts are not served.
func (s *Server) GetPost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post := s.posts.GetPostBySlug(c.UserContext(), slug)
	if post == nil || !post.Published {
		return respondWithError(c, models.NewNotFoundError("Post", slug))
	}
	return c.JSON(post)
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.JSON(s.posts.Categories(c.UserContext()))
}

// ResolveRoute handles GET /api/route?hash=#/post/some-slug
func (s *Server) ResolveRoute(c *fiber.Ctx) error {
	hash := c.Query("hash")
	if hash == "" {
		return respondWithError(c, models.NewValidationError("hash is required"))
	}

	d := route.Parse(hash)
	target := route.Classify(d)
	return c.JSON(RouteView{
		Path:      d.Path,
		Query:     d.Query,
		Kind:      target.Kind,
		Param:     target.Param,
		Canonical: d.String(),
	})
}

// requestLogger logs each request through the global slog logger.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Duration("latency", time.Since(start)),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, slog.String("request_id", rid))
		}

		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			observability.GlobalLogger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			observability.GlobalLogger.DebugContext(c.UserContext(), "request processed", fields...)
		}
		return err
	}
}
