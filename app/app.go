package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jekabolt/grbpwr-analytics/config"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	httpapi "github.com/jekabolt/grbpwr-analytics/internal/api/http"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/admin"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/auth"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/frontend"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/ordercleanup"
	"github.com/jekabolt/grbpwr-analytics/internal/ratelimit"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
)

// App is the main application
type App struct {
	hs      *httpapi.Server
	db      dependency.Repository
	redis   *cache.Redis
	cleanup *ordercleanup.Worker
	c       *config.Config
	done    chan struct{}
	once    sync.Once
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// cacheStore dials redis when configured. The in-process cache is used
// otherwise and when redis is unreachable at startup.
func (a *App) cacheStore(ctx context.Context) dependency.CacheStore {
	if a.c.Redis.Addr == "" {
		slog.Default().InfoContext(ctx, "using in-memory analytics cache")
		return cache.NewMemory()
	}
	r, err := cache.DialRedis(ctx, a.c.Redis)
	if err != nil {
		slog.Default().WarnContext(ctx, "redis unavailable, using in-memory analytics cache",
			slog.String("err", err.Error()),
		)
		return cache.NewMemory()
	}
	a.redis = r
	slog.Default().InfoContext(ctx, "using redis analytics cache",
		slog.String("addr", a.c.Redis.Addr),
	)
	return r
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting sales analytics")

	repo, err := store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to database",
			slog.String("err", err.Error()),
		)
		return err
	}
	a.db = repo

	svc, err := analytics.New(&a.c.Analytics, repo.Analytics(), repo.Catalog(),
		cache.New(a.cacheStore(ctx), a.c.Analytics.CacheTTL))
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create analytics service",
			slog.String("err", err.Error()),
		)
		return err
	}

	authS, err := auth.New(&a.c.Auth)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create new auth server",
			slog.String("err", err.Error()),
		)
		return err
	}

	if a.c.OrderCleanup.Enabled {
		a.cleanup = ordercleanup.New(&a.c.OrderCleanup, repo.Order())
		if err := a.cleanup.Start(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "cannot start order cleanup worker",
				slog.String("err", err.Error()),
			)
			return err
		}
	}

	adminS := admin.New(svc, repo.Order())
	frontendS := frontend.New(repo.Order(), ratelimit.FromConfig(a.c.CheckoutRateLimit))

	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, adminS, frontendS, authS, repo); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	go func() {
		<-a.hs.Done()
		a.shutdown()
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown failed",
				slog.String("err", err.Error()),
			)
		}
		<-a.done
		return
	}
	a.shutdown()
}

func (a *App) shutdown() {
	a.once.Do(func() {
		if a.cleanup != nil {
			_ = a.cleanup.Stop()
		}
		if a.redis != nil {
			_ = a.redis.Close()
		}
		if a.db != nil {
			a.db.Close()
		}
		close(a.done)
	})
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
