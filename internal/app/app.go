// Package app wires all Teal subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithStore, WithProvider). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tealbot/teal/internal/config"
	"github.com/tealbot/teal/internal/health"
	"github.com/tealbot/teal/internal/httpapi"
	"github.com/tealbot/teal/internal/observe"
	"github.com/tealbot/teal/internal/prompt"
	"github.com/tealbot/teal/internal/tell"
	"github.com/tealbot/teal/internal/tellctx"
	"github.com/tealbot/teal/internal/users"
	"github.com/tealbot/teal/pkg/provider/reply"
	"github.com/tealbot/teal/pkg/store"
	"github.com/tealbot/teal/pkg/store/postgres"
)

const shutdownTimeout = 10 * time.Second

// App owns all subsystem lifetimes for the Teal server.
type App struct {
	cfg *config.Config

	store    store.Store
	provider reply.Provider
	tells    *tell.Service
	users    *users.Service
	srv      *http.Server

	// closers are called in reverse order during Shutdown.
	closers []func(context.Context) error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a store instead of connecting to PostgreSQL from config.
func WithStore(s store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithProvider injects a generative provider instead of building one from
// the config registry.
func WithProvider(p reply.Provider) Option {
	return func(a *App) { a.provider = p }
}

// New creates an App by wiring all subsystems together: telemetry, the
// document store, the generative provider, the tell pipeline, and the HTTP
// server. Use Option functions to inject test doubles.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	// ── 1. Telemetry ─────────────────────────────────────────────────────
	obsShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		return nil, fmt.Errorf("app: init telemetry: %w", err)
	}
	a.closers = append(a.closers, obsShutdown)
	metrics := observe.DefaultMetrics()

	// ── 2. Store ─────────────────────────────────────────────────────────
	if a.store == nil {
		pg, err := postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("app: connect store: %w", err)
		}
		a.store = pg
		a.closers = append(a.closers, func(context.Context) error {
			pg.Close()
			return nil
		})
		slog.Info("store connected")
	}

	// ── 3. Provider ──────────────────────────────────────────────────────
	if a.provider == nil {
		p, err := config.DefaultRegistry().Create(cfg.Provider)
		if err != nil {
			return nil, fmt.Errorf("app: create provider %q: %w", cfg.Provider.Name, err)
		}
		a.provider = p
		slog.Info("provider created", "name", cfg.Provider.Name, "model", cfg.Provider.Model)
	}

	// ── 4. Tell pipeline ─────────────────────────────────────────────────
	seed := tellctx.Context{
		Mood:    cfg.Context.SeedMood,
		Summary: cfg.Context.SeedSummary,
	}
	if seed.Mood == "" {
		seed.Mood = "neutral"
	}
	if seed.Summary == "" {
		seed.Summary = "This is our first conversation"
	}
	var asmOpts []tellctx.Option
	if cfg.Context.HistoryLimit > 0 {
		asmOpts = append(asmOpts, tellctx.WithHistoryLimit(cfg.Context.HistoryLimit))
	}
	assembler := tellctx.NewAssembler(a.store, tell.TellsCollection, seed, asmOpts...)

	a.tells = tell.NewService(a.store, a.provider, prompt.NewEngine(), assembler,
		tell.WithMetrics(metrics),
		tell.WithProviderName(cfg.Provider.Name),
	)
	a.users = users.NewService(a.store)

	// ── 5. HTTP server ───────────────────────────────────────────────────
	hc := health.New(health.Checker{Name: "database", Check: a.store.Ping})
	handler := httpapi.New(a.tells, a.users, a.provider, hc, metrics)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests and
// returns. A listener failure is returned immediately.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(drainCtx)
	})

	return g.Wait()
}

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires, remaining closers are skipped and the
// context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](ctx); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
