// Package bootstrap wires configuration, storage backends and services into
// a ready-to-use runtime.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"devblog/internal/clock"
	"devblog/internal/config"
	"devblog/internal/kv"
	"devblog/internal/likes"
	"devblog/internal/observability"
	"devblog/internal/seed"
	"devblog/internal/service"
	"devblog/internal/storage"

	"github.com/redis/go-redis/v9"
)

// ServiceName identifies this program in logs and traces.
const ServiceName = "devblog"

// Options control runtime initialization behavior.
type Options struct {
	// Clock overrides the wall clock, mainly for tests.
	Clock clock.Clock
	// Medium overrides the backend chosen by STORE_DRIVER.
	Medium kv.KV
	// Version is reported on traces.
	Version string
}

// Runtime holds the wired components. Close releases them.
type Runtime struct {
	Config *config.Config
	Clock  clock.Clock
	Medium kv.KV
	Store  *storage.Store
	Likes  likes.Tracker
	Auth   *service.AuthService
	Posts  *service.PostService

	redisClient     *redis.Client
	ownsRedisClient bool
	shutdownTracing func(context.Context) error
}

// InitRuntime sets up logging and tracing, opens the store backend, builds
// the services and seeds demo content when configured to.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	observability.InitLogging(observability.LoggingConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    ServiceName,
		ServiceVersion: opts.Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRatio:    cfg.TracingSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	rt := &Runtime{
		Config:          cfg,
		Clock:           opts.Clock,
		Medium:          opts.Medium,
		shutdownTracing: shutdown,
	}
	if rt.Clock == nil {
		rt.Clock = clock.NewRealClock()
	}

	if rt.Medium == nil {
		medium, err := kv.Open(ctx, cfg)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("store connection failed: %w", err)
		}
		rt.Medium = medium
	}

	tracker, err := rt.likeTracker(ctx)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	rt.Likes = tracker

	rt.Store = storage.New(rt.Medium, cfg.KeyPrefix, rt.Likes)
	rt.Store.SetReseeder(func(ctx context.Context, s *storage.Store, force bool) {
		if err := seed.Demo(ctx, s, rt.Clock, force); err != nil {
			observability.GlobalLogger.ErrorContext(ctx, "demo reseed failed", "error", err)
		}
	})

	rt.Auth = service.NewAuthService(rt.Store, rt.Clock)
	rt.Posts = service.NewPostService(rt.Store, rt.Likes, rt.Auth, rt.Clock)

	if cfg.SeedOnStart {
		if err := seed.Demo(ctx, rt.Store, rt.Clock, false); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo content: %w", err)
		}
	}

	observability.GlobalLogger.DebugContext(ctx, "runtime initialized",
		"driver", cfg.StoreDriver,
		"prefix", cfg.KeyPrefix,
	)
	return rt, nil
}

// likeTracker picks the Redis-backed tracker when a browsing session ID is
// configured, so likes survive between process runs, and an in-process set
// otherwise.
func (rt *Runtime) likeTracker(ctx context.Context) (likes.Tracker, error) {
	cfg := rt.Config
	if cfg.BrowsingSessionID == "" {
		return likes.NewMemory(), nil
	}

	if r, ok := rt.Medium.(*kv.Redis); ok {
		rt.redisClient = r.Client()
	} else {
		client, err := kv.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("like tracker: %w", err)
		}
		rt.redisClient = client
		rt.ownsRedisClient = true
	}

	return likes.NewRedis(rt.redisClient, cfg.KeyPrefix, cfg.BrowsingSessionID, cfg.LikesTTL()), nil
}

// Close releases the backend connections and flushes traces.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.ownsRedisClient && rt.redisClient != nil {
		errs = append(errs, rt.redisClient.Close())
	}
	if rt.Medium != nil {
		errs = append(errs, rt.Medium.Close())
	}
	if rt.shutdownTracing != nil {
		errs = append(errs, rt.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
