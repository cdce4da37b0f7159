package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/Jornada/internal/api"
	"github.com/soaringjerry/Jornada/internal/config"
	"github.com/soaringjerry/Jornada/internal/content"
	"github.com/soaringjerry/Jornada/internal/events"
	"github.com/soaringjerry/Jornada/internal/game"
	"github.com/soaringjerry/Jornada/internal/metrics"
	"github.com/soaringjerry/Jornada/internal/middleware"
	"github.com/soaringjerry/Jornada/internal/services"
	"github.com/soaringjerry/Jornada/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, log, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	catalog, err := content.Load()
	if err != nil {
		return err
	}
	pub, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, log.Named("events"))
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	reports, kvSlot, err := openReports(ctx, cfg, log, pub)
	if err != nil {
		return err
	}
	defer func() { _ = kvSlot.Close() }()

	m := metrics.New()
	store := api.NewSessionStore(m.SetActiveSessions)
	sched := game.NewScheduler()
	games := services.NewGameService(store, catalog, reports, sched, services.GameServiceOptions{
		Profile:  cfg.ProfileGame(),
		Quiz:     cfg.QuizGame(),
		Observer: m,
		Logger:   log.Named("game"),
	})
	// stop pending finish steps after the server and janitor are gone
	defer games.Close()

	secret := []byte(cfg.Admin.JWTSecret)
	if len(secret) == 0 {
		if secret, err = middleware.RandomSecret(); err != nil {
			return err
		}
	}
	jwt := middleware.NewJWTAuth(secret)
	auth, err := api.NewAdminAuth(cfg.Admin.Password, cfg.Admin.PasswordHash, jwt, cfg.Admin.TokenTTL)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	api.NewRouter(store, api.Options{
		Games:     games,
		Reports:   reports,
		Exports:   services.NewExportService(reports, cfg.Location()),
		Analytics: services.NewAnalyticsService(reports),
		Auth:      auth,
		JWT:       jwt,
		Catalog:   catalog,
		Logger:    log.Named("api"),
		OnLogin:   m.AdminLogin,
	}).Register(mux)
	registerOps(mux, cfg, kvSlot, m)
	registerFrontend(mux, cfg, log)

	handler := middleware.NoStore(middleware.CORS(middleware.SecureHeaders(
		middleware.Locale(cfg.DefaultLocale)(middleware.RequestLog(log.Named("http"), m)(mux)))))
	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("jornada server listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		runJanitor(gctx, games, cfg.Game.SweepInterval, cfg.Game.SessionTTL)
		return nil
	})
	return g.Wait()
}

// runJanitor drops sessions idle for longer than ttl until ctx ends.
func runJanitor(ctx context.Context, games *services.GameService, every, ttl time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			games.SweepIdle(now.Add(-ttl))
		}
	}
}

func registerOps(mux *http.ServeMux, cfg *config.Config, s slot, m *metrics.Collector) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		locale := middleware.LocaleFromContext(r.Context())
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		storeOK := true
		if err := s.Ping(ctx); err != nil {
			status, storeOK = http.StatusServiceUnavailable, false
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         storeOK,
			"name":       "Jornada API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"store":      cfg.Store.Driver,
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.Handle("GET /metrics", m.Handler())
}

// registerFrontend serves the board UI: static files when static_dir is set,
// otherwise a proxy to the dev server when dev_frontend_url is set.
func registerFrontend(mux *http.ServeMux, cfg *config.Config, log *zap.Logger) {
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
		return
	}
	if cfg.DevFrontendURL == "" {
		return
	}
	u, err := url.Parse(cfg.DevFrontendURL)
	if err != nil {
		log.Warn("invalid dev_frontend_url", zap.String("url", cfg.DevFrontendURL), zap.Error(err))
		return
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	// proxied responses bypass NoStore's headers otherwise
	rp.ModifyResponse = func(res *http.Response) error {
		res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		res.Header.Set("Pragma", "no-cache")
		res.Header.Set("Expires", "0")
		return nil
	}
	mux.Handle("/", rp)
}
