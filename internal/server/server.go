// Package server exposes a read-only JSON view of the blog over HTTP.
package server

import (
	"context"
	"sync"
	"time"

	"devblog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Options configure a Server.
type Options struct {
	ServiceName    string
	Version        string
	AllowedOrigins string
}

// Server holds the services the handlers read from.
type Server struct {
	posts *service.PostService
	opts  Options
	app   *fiber.App
}

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// httpMetrics registers the HTTP collectors once per process; registering
// them twice on the default registry panics.
func httpMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}

// New builds a Server with middleware and routes in place.
func New(posts *service.PostService, opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "devblog"
	}
	if opts.AllowedOrigins == "" {
		opts.AllowedOrigins = "http://localhost:5173,http://localhost:3000"
	}

	s := &Server{posts: posts, opts: opts}
	s.app = fiber.New(fiber.Config{
		AppName:               opts.ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	s.setupMiddleware(s.app)
	s.setupRoutes(s.app)
	return s
}

// App returns the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpMetrics(s.opts.ServiceName).Middleware)
	app.Use(helmet.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: "GET,HEAD,OPTIONS",
		MaxAge:       86400,
	}))
}

func (s *Server) setupRoutes(app *fiber.App) {
	app.Get("/health", s.LivenessCheck)
	httpMetrics(s.opts.ServiceName).RegisterAt(app, "/metrics")

	api := app.Group("/api")
	api.Get("/route", s.ResolveRoute)
	api.Get("/categories", s.GetCategories)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Get("/:slug", s.GetPost)
}

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
